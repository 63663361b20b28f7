package executor

import "bytes"

// capBuffer captures up to limit bytes and silently discards the rest.
// Writes always report success so the process keeps running and its pipe
// keeps draining; hitting the ceiling is a data-capture decision, not a
// reason to fail or kill the command.
type capBuffer struct {
	limit     int64
	buf       bytes.Buffer
	truncated bool
}

func newCapBuffer(limit int64) *capBuffer {
	return &capBuffer{limit: limit}
}

func (b *capBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - int64(b.buf.Len())
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *capBuffer) String() string { return b.buf.String() }

func (b *capBuffer) Truncated() bool { return b.truncated }
