package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xdg/shellgate/internal/clog"
)

// timeNow is swapped out in tests for deterministic timestamps.
var timeNow = time.Now

const (
	// RingCapacity bounds how many records Recent can return.
	RingCapacity = 100

	// DefaultRecentLimit is used when Recent is called with limit <= 0.
	DefaultRecentLimit = 10
)

// Log appends audit records to a writer and keeps an in-memory ring of the
// most recent entries for Recent. Appends serialize on a mutex so
// concurrent executions cannot interleave partial lines; the commands
// being logged still run concurrently.
//
// Recording is best-effort: a write failure is logged operationally and
// never surfaced to the caller, because the command's own result is
// authoritative.
type Log struct {
	mu   sync.Mutex
	w    io.Writer
	ring []Record
}

// NewLog creates a Log writing to w. A nil writer keeps the in-memory ring
// only, which is how tests and the stdio server without persistence run.
func NewLog(w io.Writer) *Log {
	return &Log{w: w}
}

// Open creates a file-backed Log at path, creating parent directories as
// needed. The file is opened append-only with 0600 permissions, and the
// in-memory ring is seeded from the newest persisted entries so Recent
// works across process restarts. Malformed lines are skipped, not fatal.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	l := NewLog(f)
	l.ring = readTail(path)
	return l, nil
}

// readTail parses up to RingCapacity records from the end of the file.
func readTail(path string) []Record {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var ring []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r, err := ParseRecord(line)
		if err != nil {
			clog.Debug("audit: skipping unparseable line: %v", err)
			continue
		}
		ring = append(ring, r)
		if len(ring) > RingCapacity {
			ring = ring[len(ring)-RingCapacity:]
		}
	}
	return ring
}

// Record appends one entry. Entries land in completion order: whichever
// request records first is written first, regardless of submission order.
// A zero timestamp is filled with the current time.
func (l *Log) Record(r Record) {
	if r.Timestamp.IsZero() {
		r.Timestamp = timeNow()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ring = append(l.ring, r)
	if len(l.ring) > RingCapacity {
		l.ring = l.ring[len(l.ring)-RingCapacity:]
	}

	if l.w == nil {
		return
	}
	if _, err := l.w.Write([]byte(r.Format() + "\n")); err != nil {
		clog.Warn("audit: write failed: %v", err)
	}
}

// Recent returns up to limit records, most recent first. A non-positive
// limit means DefaultRecentLimit; limits above RingCapacity are clamped.
func (l *Log) Recent(limit int) []Record {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > RingCapacity {
		limit = RingCapacity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limit > len(l.ring) {
		limit = len(l.ring)
	}
	out := make([]Record, limit)
	for i := 0; i < limit; i++ {
		out[i] = l.ring[len(l.ring)-1-i]
	}
	return out
}
