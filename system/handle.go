package system

import (
	"context"
	"fmt"
)

// Handle references an in-flight or completed system invocation. Wait
// suspends the caller until the body resolves. Dropping a handle without
// waiting leaves the invocation running to completion; its result simply
// becomes unobservable.
type Handle[O any] struct {
	id     uint64
	system string
	done   chan struct{}
	out    O
	err    error
}

// ID returns the invocation's execution identifier.
func (h *Handle[O]) ID() uint64 { return h.id }

// System returns the name of the invoked system.
func (h *Handle[O]) System() string { return h.system }

// Done returns a channel closed when the body has resolved.
func (h *Handle[O]) Done() <-chan struct{} { return h.done }

// Resolved reports whether the body has already resolved, without blocking.
func (h *Handle[O]) Resolved() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the system body resolves or ctx expires. A context
// expiry yields ErrTimeout and does not stop the body.
func (h *Handle[O]) Wait(ctx context.Context) (O, error) {
	select {
	case <-h.done:
		return h.out, h.err
	case <-ctx.Done():
		var zero O
		return zero, fmt.Errorf("%w: %s execution %d: %v", ErrTimeout, h.system, h.id, ctx.Err())
	}
}

// resolve records the outcome and releases waiters. Called exactly once by
// the executor's body goroutine.
func (h *Handle[O]) resolve(out O, err error) {
	h.out = out
	h.err = err
	close(h.done)
}
