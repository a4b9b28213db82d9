package event

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHandler is returned when a targeted event is sent to an entity with no
// bound handler. Broadcast sends with zero handlers succeed vacuously instead.
var ErrNoHandler = errors.New("event: no handler bound")

// ErrDuplicateBinding is returned when a targeted registration collides with
// an existing binding for the same event type and entity.
var ErrDuplicateBinding = errors.New("event: duplicate handler binding")

// ErrResponseMismatch is returned when a registration or send declares a
// response type that differs from the one fixed by the first registration for
// that event type.
var ErrResponseMismatch = errors.New("event: response type mismatch")

// HandlerError reports the failure of a single handler invocation. For
// targeted events it is returned directly; for broadcast events it is
// collected into a PartialFailureError.
type HandlerError struct {
	EventType string    // event type the handler was bound to
	Target    *EntityID // set for targeted dispatch
	Index     int       // registration order index of the failing handler
	Err       error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	if e.Target != nil {
		return fmt.Sprintf("event: handler for %s (entity %d) failed: %v", e.EventType, *e.Target, e.Err)
	}
	return fmt.Sprintf("event: handler %d for %s failed: %v", e.Index, e.EventType, e.Err)
}

// Unwrap returns the underlying handler failure.
func (e *HandlerError) Unwrap() error { return e.Err }

// PartialFailureError aggregates sibling handler failures for one broadcast
// send. Succeeded counts the handlers that completed normally; Failures keeps
// the failing handlers in registration order.
type PartialFailureError struct {
	Succeeded int
	Failures  []*HandlerError
}

// Error implements the error interface.
func (e *PartialFailureError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Err.Error())
	}
	return fmt.Sprintf("event: %d of %d handlers failed: %s",
		len(e.Failures), e.Succeeded+len(e.Failures), strings.Join(msgs, "; "))
}
