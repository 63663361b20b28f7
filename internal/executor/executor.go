// Package executor provides the interface and types for running shell
// commands under a wall-clock timeout with bounded output capture.
package executor

import (
	"context"
	"errors"
	"time"
)

// TimeoutExitCode is the sentinel exit code reported when a process is
// killed for exceeding its deadline. Real process exit codes are 0-255, so
// -1 is distinguishable from any of them.
const TimeoutExitCode = -1

// ErrStartProcess indicates the OS could not start the process at all
// (fork/pipe failure). This is distinct from a command that ran and failed,
// which is reported through Result, not as an error.
var ErrStartProcess = errors.New("start process")

// Request describes one command to run.
type Request struct {
	// Command is the full shell command text. It is passed to the shell
	// uninterpreted, so pipes and redirection work.
	Command string

	// Timeout is the wall-clock deadline for the run. Must be positive.
	Timeout time.Duration
}

// Result describes the outcome of a run. Expected failure modes (non-zero
// exit, timeout, truncated output) are all represented here rather than as
// errors.
type Result struct {
	// ExitCode is the process exit code, or TimeoutExitCode if the process
	// was killed on deadline.
	ExitCode int

	// Stdout and Stderr are the captured streams, each truncated at the
	// engine's capture ceiling. The streams are never merged.
	Stdout string
	Stderr string

	// Duration is the wall-clock time the run took.
	Duration time.Duration

	// TimedOut is true when the process was killed for exceeding Timeout.
	TimedOut bool

	// Truncated is true when either stream hit the capture ceiling.
	Truncated bool
}

// Engine runs commands. Implementations must be safe for concurrent use;
// the gateway runs one call per in-flight request.
type Engine interface {
	Run(ctx context.Context, req Request) (Result, error)
}
