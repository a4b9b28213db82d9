package event

import (
	"context"
	"sync/atomic"
	"time"
)

// HandlerFunc is a synchronous broadcast/targeted handler. It runs to
// completion inside Send before control returns to the caller.
type HandlerFunc[E, R any] func(ev E) (R, error)

// SuspendingHandlerFunc is a handler that may block on I/O, timers or other
// asynchronous work. It receives the dispatch context and must honor its
// cancellation. Send still returns only after the handler has completed or
// failed.
type SuspendingHandlerFunc[E, R any] func(ctx context.Context, ev E) (R, error)

// HandlerKind tags the capability of a registered handler.
type HandlerKind int

const (
	// HandlerSync marks a handler that runs to completion without suspending.
	HandlerSync HandlerKind = iota
	// HandlerSuspending marks a handler that may yield at I/O boundaries.
	HandlerSuspending
)

// String returns the string representation of the handler kind.
func (k HandlerKind) String() string {
	switch k {
	case HandlerSync:
		return "sync"
	case HandlerSuspending:
		return "suspending"
	default:
		return "unknown"
	}
}

// entry is one registered handler binding. The closure owns the handler's
// state; index records registration order and drives broadcast dispatch
// ordering. Entries are never mutated after registration apart from the
// last-invoked bookkeeping.
type entry struct {
	kind        HandlerKind
	index       int
	invoke      func(ctx context.Context, ev any) (any, error)
	lastInvoked atomic.Int64 // unix nanos, 0 until first call
}

func (e *entry) call(ctx context.Context, ev any) (any, error) {
	e.lastInvoked.Store(time.Now().UnixNano())
	return e.invoke(ctx, ev)
}
