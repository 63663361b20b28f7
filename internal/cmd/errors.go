package cmd

import "fmt"

// ExitCodeError carries a specific process exit code to main. It lets
// `shellgate execute` propagate the child's exit code (or 124 on timeout)
// through cobra's error return without printing a misleading message.
type ExitCodeError struct {
	Code int
}

// NewExitCodeError creates an ExitCodeError with the given code.
func NewExitCodeError(code int) *ExitCodeError {
	return &ExitCodeError{Code: code}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}
