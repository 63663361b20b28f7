package gateway

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xdg/shellgate/internal/audit"
	"github.com/xdg/shellgate/internal/config"
	"github.com/xdg/shellgate/internal/executor"
)

func testGateway(t *testing.T, engine executor.Engine, names ...string) (*Gateway, *audit.Log) {
	t.Helper()
	log := audit.NewLog(nil)
	g := New(testStore(t, names...), engine, log, 30*time.Second, 5*time.Minute)
	return g, log
}

func TestHandleDeniedSpawnsNothing(t *testing.T) {
	fake := &executor.FakeEngine{}
	g, log := testGateway(t, fake, "echo")

	resp := g.Handle(context.Background(), Request{Command: "rm -rf /tmp/x"})

	if resp.Status != StatusRejected {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusRejected)
	}
	if !strings.Contains(resp.Reason, "rm") {
		t.Errorf("Reason should mention the offending token, got %q", resp.Reason)
	}
	if fake.Calls() != 0 {
		t.Errorf("no process may be spawned for a denied command, engine ran %d times", fake.Calls())
	}

	records := log.Recent(1)
	if len(records) != 1 || records[0].Outcome != audit.OutcomeDeny {
		t.Errorf("denial should be audited, got %+v", records)
	}
}

func TestHandleExecutedAuditsOutcome(t *testing.T) {
	fake := &executor.FakeEngine{
		Result: executor.Result{ExitCode: 0, Stdout: "hello\n", Duration: 10 * time.Millisecond},
	}
	g, log := testGateway(t, fake, "echo")

	resp := g.Handle(context.Background(), Request{Command: "echo hello", Timeout: 5 * time.Second})

	if resp.Status != StatusExecuted {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusExecuted)
	}
	if resp.Result.Stdout != "hello\n" {
		t.Errorf("Stdout: got %q", resp.Result.Stdout)
	}

	records := log.Recent(1)
	if len(records) != 1 {
		t.Fatalf("expected one audit record")
	}
	if records[0].Outcome != audit.OutcomeExec || records[0].ExitCode != 0 {
		t.Errorf("audit record: %+v", records[0])
	}
	if records[0].Command != "echo hello" {
		t.Errorf("audited command: got %q", records[0].Command)
	}
}

func TestHandleTimeoutAudited(t *testing.T) {
	fake := &executor.FakeEngine{
		Result: executor.Result{ExitCode: executor.TimeoutExitCode, TimedOut: true, Duration: time.Second},
	}
	g, log := testGateway(t, fake, "sleep")

	resp := g.Handle(context.Background(), Request{Command: "sleep 99", Timeout: time.Second})

	if resp.Status != StatusExecuted {
		t.Fatalf("Status: got %q, want %q (timeout is a result, not an error)", resp.Status, StatusExecuted)
	}
	if !resp.Result.TimedOut {
		t.Error("TimedOut should be preserved")
	}

	records := log.Recent(1)
	if len(records) != 1 || records[0].Outcome != audit.OutcomeTimeout {
		t.Errorf("timeout should be audited as such, got %+v", records)
	}
}

func TestHandleEngineErrorIsSystemError(t *testing.T) {
	fake := &executor.FakeEngine{Err: executor.ErrStartProcess}
	g, log := testGateway(t, fake, "echo")

	resp := g.Handle(context.Background(), Request{Command: "echo hi"})

	if resp.Status != StatusError {
		t.Fatalf("Status: got %q, want %q", resp.Status, StatusError)
	}
	records := log.Recent(1)
	if len(records) != 1 || records[0].Outcome != audit.OutcomeError {
		t.Errorf("system error should be audited, got %+v", records)
	}
}

func TestTimeoutDefaultingAndClamping(t *testing.T) {
	tests := []struct {
		name      string
		requested time.Duration
		want      time.Duration
	}{
		{"zero gets default", 0, 30 * time.Second},
		{"explicit value kept", 10 * time.Second, 10 * time.Second},
		{"above max clamped", time.Hour, 5 * time.Minute},
		{"exactly max kept", 5 * time.Minute, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &executor.FakeEngine{}
			g, _ := testGateway(t, fake, "echo")

			g.Handle(context.Background(), Request{Command: "echo hi", Timeout: tt.requested})

			reqs := fake.Requests()
			if len(reqs) != 1 {
				t.Fatalf("engine calls: got %d, want 1", len(reqs))
			}
			if reqs[0].Timeout != tt.want {
				t.Errorf("Timeout: got %v, want %v", reqs[0].Timeout, tt.want)
			}
		})
	}
}

func TestSecondaryOperationsNeverTouchEngine(t *testing.T) {
	fake := &executor.FakeEngine{}
	g, _ := testGateway(t, fake, "echo", "git")

	if got := g.Allowed(); len(got) != 2 || got[0] != "echo" || got[1] != "git" {
		t.Errorf("Allowed: got %v", got)
	}
	if _, err := g.Allow("jq"); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if got := g.Log(10); len(got) != 0 {
		t.Errorf("Log: got %d records, want 0", len(got))
	}
	if fake.Calls() != 0 {
		t.Errorf("secondary operations must not run the engine, ran %d times", fake.Calls())
	}
}

// TestConcurrentHandleNoSerialization runs a slow and a fast command through
// the real shell engine concurrently and checks the fast one does not wait
// for the slow one.
func TestConcurrentHandleNoSerialization(t *testing.T) {
	engine := executor.NewShellExecutor(config.DefaultCaptureLimit)
	g, _ := testGateway(t, engine, "sleep", "echo")

	var wg sync.WaitGroup
	fastDone := make(chan time.Time, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		g.Handle(context.Background(), Request{Command: "sleep 2", Timeout: 10 * time.Second})
	}()

	// Give the slow command a head start so both are in flight.
	time.Sleep(100 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		resp := g.Handle(context.Background(), Request{Command: "echo fast", Timeout: 10 * time.Second})
		if resp.Status != StatusExecuted || resp.Result.Stdout != "fast\n" {
			t.Errorf("fast command failed: %+v", resp)
		}
		fastDone <- time.Now()
	}()

	start := time.Now()
	select {
	case finished := <-fastDone:
		if elapsed := finished.Sub(start); elapsed > time.Second {
			t.Errorf("fast command waited %v; executions must not serialize", elapsed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fast command never completed")
	}
	wg.Wait()
}

// TestHandleConcurrentMixedRequests exercises concurrent denials and
// executions against the shared policy store and audit log.
func TestHandleConcurrentMixedRequests(t *testing.T) {
	fake := &executor.FakeEngine{Result: executor.Result{ExitCode: 0}}
	g, log := testGateway(t, fake, "echo")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				g.Handle(context.Background(), Request{Command: "echo hi"})
			} else {
				g.Handle(context.Background(), Request{Command: "rm -rf /"})
			}
		}(i)
	}
	wg.Wait()

	if fake.Calls() != 5 {
		t.Errorf("engine calls: got %d, want 5", fake.Calls())
	}
	records := log.Recent(audit.RingCapacity)
	if len(records) != 10 {
		t.Errorf("audit records: got %d, want 10", len(records))
	}
}
