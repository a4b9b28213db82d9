package strategy

import (
	"errors"
	"fmt"
)

// RecoverableError marks a strategy failure the agent loop can absorb: the
// failure is logged and the loop proceeds to the next envelope.
type RecoverableError struct {
	Err error
}

// Error implements the error interface.
func (e *RecoverableError) Error() string {
	return fmt.Sprintf("strategy: recoverable: %v", e.Err)
}

// Unwrap returns the underlying failure.
func (e *RecoverableError) Unwrap() error { return e.Err }

// FatalError marks a strategy failure that must stop the agent loop. The loop
// drains in-flight work and surfaces the error to its caller.
type FatalError struct {
	Err error
}

// Error implements the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("strategy: fatal: %v", e.Err)
}

// Unwrap returns the underlying failure.
func (e *FatalError) Unwrap() error { return e.Err }

// Recoverable wraps err as a RecoverableError. A nil err returns nil.
func Recoverable(err error) error {
	if err == nil {
		return nil
	}
	return &RecoverableError{Err: err}
}

// Fatal wraps err as a FatalError. A nil err returns nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err is classified fatal. Unclassified errors are
// treated as recoverable.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
