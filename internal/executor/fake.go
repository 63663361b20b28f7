package executor

import (
	"context"
	"sync"
)

// FakeEngine is an Engine for tests. It records every request and returns
// canned results without spawning processes.
type FakeEngine struct {
	mu       sync.Mutex
	requests []Request

	// Result is returned from every Run call.
	Result Result
	// Err, if non-nil, is returned from every Run call.
	Err error
}

// Run records the request and returns the canned result.
func (f *FakeEngine) Run(_ context.Context, req Request) (Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.Err != nil {
		return Result{}, f.Err
	}
	return f.Result, nil
}

// Calls returns how many times Run was invoked.
func (f *FakeEngine) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of the recorded requests.
func (f *FakeEngine) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}
