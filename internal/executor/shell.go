package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// DefaultShell interprets the command text. Using the shell (rather than a
// literal argv split) preserves pipes and redirection, which is the
// long-standing contract of this gateway. It also means authorization of
// the first program token does not constrain later pipeline stages; see
// gateway.Authorizer for where that boundary is documented.
const DefaultShell = "/bin/sh"

// waitDelay bounds how long Wait blocks on lingering I/O pipes after the
// process group is killed, so a detached grandchild holding the pipe open
// cannot stall the gateway past the deadline.
const waitDelay = 2 * time.Second

// ShellExecutor runs commands through the shell with a per-stream capture
// ceiling. The zero value is not usable; use NewShellExecutor.
type ShellExecutor struct {
	shell        string
	captureLimit int64
}

// NewShellExecutor creates a ShellExecutor with the given per-stream
// capture ceiling in bytes.
func NewShellExecutor(captureLimit int64) *ShellExecutor {
	return &ShellExecutor{
		shell:        DefaultShell,
		captureLimit: captureLimit,
	}
}

// Run executes the request's command text as a single shell invocation.
//
// The child is started in its own process group; on deadline the whole
// group is killed (best-effort cleanup of the command's own children) and
// the result carries TimedOut=true, the timeout sentinel exit code, and
// whatever output was captured before the kill.
//
// Expected failures (non-zero exit, timeout, missing program under the
// shell, truncated output) are reported in Result. The returned error is
// non-nil only when the process could not be started at all, wrapped as
// ErrStartProcess.
func (e *ShellExecutor) Run(ctx context.Context, req Request) (Result, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.shell, "-c", req.Command)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the whole process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay

	stdout := newCapBuffer(e.captureLimit)
	stderr := newCapBuffer(e.captureLimit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrStartProcess, err)
	}
	err = cmd.Wait()
	duration := time.Since(start)

	res := Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  duration,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	if ctx.Err() != nil {
		res.TimedOut = true
		res.ExitCode = TimeoutExitCode
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitStatus(exitErr)
		case errors.Is(err, exec.ErrWaitDelay):
			// Pipes were closed forcibly after the process exited; the
			// process state is still valid.
			res.ExitCode = cmd.ProcessState.ExitCode()
		default:
			return Result{}, fmt.Errorf("%w: %v", ErrStartProcess, err)
		}
	}

	return res, nil
}

// exitStatus extracts the exit code from an ExitError. A process killed by
// a signal (other than our own deadline kill) reports 128+signal, the
// convention shells use.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
