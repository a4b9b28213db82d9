package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning indicates Run was called while the agent is active.
	ErrAlreadyRunning = errors.New("agent: already running")

	// ErrNotRunning indicates an operation that requires an active run loop.
	ErrNotRunning = errors.New("agent: not running")

	// ErrNoSources indicates Run was called without any registered sources.
	ErrNoSources = errors.New("agent: no event sources registered")
)

// SourceError wraps a failure of a named event source. A source failure is
// fatal to the run loop and moves the agent to the Failed state.
type SourceError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("agent: source %q failed: %v", e.Source, e.Err)
}

// Unwrap returns the underlying source failure.
func (e *SourceError) Unwrap() error { return e.Err }
