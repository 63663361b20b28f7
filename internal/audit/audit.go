// Package audit provides the append-only record of command execution
// attempts. Entries follow a key=value format suitable for parsing and
// analysis; once written they are never rewritten or compacted.
package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Outcome classifies what happened to a request.
type Outcome string

const (
	// OutcomeExec means the command ran to completion (any exit code).
	OutcomeExec Outcome = "EXEC"
	// OutcomeDeny means the command was rejected by policy; no process ran.
	OutcomeDeny Outcome = "DENY"
	// OutcomeTimeout means the command was killed on deadline.
	OutcomeTimeout Outcome = "TIMEOUT"
	// OutcomeError means the gateway itself failed to run the command.
	OutcomeError Outcome = "ERROR"
)

// Record is one immutable audit entry describing a single request.
type Record struct {
	// Timestamp is when the attempt finished.
	Timestamp time.Time

	// Command is the full requested command text.
	Command string

	// Outcome classifies the attempt.
	Outcome Outcome

	// ExitCode is the process exit code. Meaningful for OutcomeExec and
	// OutcomeTimeout (where it is the timeout sentinel).
	ExitCode int

	// Reason explains denials and system errors.
	Reason string

	// Duration is how long the attempt took.
	Duration time.Duration
}

// Format renders the record as one log line, for example:
//
//	2026-01-02T15:04:05Z EXEC cmd="git status" exit=0 duration=12.0ms
//	2026-01-02T15:04:06Z DENY cmd="shutdown -h now" reason="command not allowed: shutdown"
func (r *Record) Format() string {
	var b strings.Builder

	b.WriteString(r.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" ")
	b.WriteString(string(r.Outcome))
	b.WriteString(" cmd=")
	b.WriteString(strconv.Quote(r.Command))

	switch r.Outcome {
	case OutcomeExec, OutcomeTimeout:
		b.WriteString(" exit=")
		b.WriteString(strconv.Itoa(r.ExitCode))
		b.WriteString(" duration=")
		b.WriteString(formatDuration(r.Duration))
	case OutcomeDeny, OutcomeError:
		if r.Reason != "" {
			b.WriteString(" reason=")
			b.WriteString(strconv.Quote(r.Reason))
		}
	}

	return b.String()
}

// formatDuration formats a duration as a human-readable string
// (e.g., "2.3s", "1m30s").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return d.Round(time.Second).String()
}
