package system

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no system is bound for an input type, or when
// an execution ID has been evicted from (or never existed in) the history.
var ErrNotFound = errors.New("system: not found")

// ErrTimeout is returned by Handle.Wait when the caller's context expires
// before the system body resolves. The body keeps running; only the wait is
// abandoned.
var ErrTimeout = errors.New("system: wait timed out")

// ErrCancelled is recorded as the failure reason when an invocation is
// cancelled through Executor.Cancel. The body is not preempted.
var ErrCancelled = errors.New("system: cancelled")

// ExecutionError wraps a failure returned by a system body, preserving the
// system name and execution ID for diagnostics.
type ExecutionError struct {
	System      string
	ExecutionID uint64
	Err         error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("system: %s execution %d failed: %v", e.System, e.ExecutionID, e.Err)
}

// Unwrap returns the underlying body failure.
func (e *ExecutionError) Unwrap() error { return e.Err }
