package event

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/agentcore/logging"
)

// EntityID is an opaque, process-unique routing key for targeted events.
// IDs are allocated monotonically by Bus.NewEntity and never reused within a
// process lifetime. An EntityID carries no ownership semantics.
type EntityID uint64

// targetKey indexes the single handler bound to (event type, entity).
type targetKey struct {
	typ    reflect.Type
	target EntityID
}

// BusOptions configures a Bus instance.
type BusOptions struct {
	// Logger receives dispatch diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Bus dispatches typed events to registered handlers. Broadcast handlers are
// invoked in registration order; targeted events resolve to exactly one
// handler per (type, entity). Registration is expected during setup, before
// the owning agent starts, but the Bus itself is safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	broadcast map[reflect.Type][]*entry
	targeted  map[targetKey]*entry
	responses map[reflect.Type]reflect.Type // response type fixed at first registration
	nextIndex int

	nextEntity atomic.Uint64

	logger logging.Logger
}

// NewBus constructs an empty Bus.
func NewBus(optFns ...func(o *BusOptions)) *Bus {
	opts := BusOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Bus{
		broadcast: make(map[reflect.Type][]*entry),
		targeted:  make(map[targetKey]*entry),
		responses: make(map[reflect.Type]reflect.Type),
		logger:    opts.Logger,
	}
}

// NewEntity allocates a fresh entity identifier. IDs are strictly increasing
// and never reused.
func (b *Bus) NewEntity() EntityID {
	return EntityID(b.nextEntity.Add(1))
}

// Register binds a synchronous broadcast handler to event type E. The first
// registration for E fixes its response type R; later registrations with a
// different R fail with ErrResponseMismatch. Multiple broadcast handlers per
// type are permitted and run in registration order.
func Register[E, R any](b *Bus, h HandlerFunc[E, R]) error {
	return registerBroadcast[E, R](b, HandlerSync, func(_ context.Context, ev E) (R, error) { return h(ev) })
}

// RegisterSuspending binds a suspending broadcast handler to event type E.
func RegisterSuspending[E, R any](b *Bus, h SuspendingHandlerFunc[E, R]) error {
	return registerBroadcast[E, R](b, HandlerSuspending, h)
}

// RegisterTargeted binds a synchronous handler to event type E for a single
// entity. A second binding for the same (type, entity) fails with
// ErrDuplicateBinding.
func RegisterTargeted[E, R any](b *Bus, target EntityID, h HandlerFunc[E, R]) error {
	return registerTargeted[E, R](b, target, HandlerSync, func(_ context.Context, ev E) (R, error) { return h(ev) })
}

// RegisterTargetedSuspending binds a suspending handler to event type E for a
// single entity.
func RegisterTargetedSuspending[E, R any](b *Bus, target EntityID, h SuspendingHandlerFunc[E, R]) error {
	return registerTargeted[E, R](b, target, HandlerSuspending, h)
}

func registerBroadcast[E, R any](b *Bus, kind HandlerKind, h func(ctx context.Context, ev E) (R, error)) error {
	et := reflect.TypeOf((*E)(nil)).Elem()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.bindResponseLocked(et, reflect.TypeOf((*R)(nil)).Elem()); err != nil {
		return err
	}

	b.broadcast[et] = append(b.broadcast[et], newEntryLocked(b, kind, h))

	return nil
}

func registerTargeted[E, R any](b *Bus, target EntityID, kind HandlerKind, h func(ctx context.Context, ev E) (R, error)) error {
	et := reflect.TypeOf((*E)(nil)).Elem()
	key := targetKey{typ: et, target: target}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.targeted[key]; exists {
		return fmt.Errorf("%w: %s already bound for entity %d", ErrDuplicateBinding, et, target)
	}

	if err := b.bindResponseLocked(et, reflect.TypeOf((*R)(nil)).Elem()); err != nil {
		return err
	}

	b.targeted[key] = newEntryLocked(b, kind, h)

	return nil
}

// newEntryLocked wraps the typed handler into a type-erased entry. The type
// assertion inside the closure is safe by construction: the storage key is
// derived from the static type parameter, never from payload inspection.
func newEntryLocked[E, R any](b *Bus, kind HandlerKind, h func(ctx context.Context, ev E) (R, error)) *entry {
	e := &entry{
		kind:  kind,
		index: b.nextIndex,
		invoke: func(ctx context.Context, ev any) (any, error) {
			return h(ctx, ev.(E))
		},
	}
	b.nextIndex++

	return e
}

// bindResponseLocked fixes (or verifies) the response type R for event type
// et. Caller must hold the write lock.
func (b *Bus) bindResponseLocked(et, rt reflect.Type) error {
	if bound, ok := b.responses[et]; ok {
		if bound != rt {
			return fmt.Errorf("%w: %s is bound to response %s, got %s", ErrResponseMismatch, et, bound, rt)
		}
		return nil
	}
	b.responses[et] = rt

	return nil
}

// Aggregate collects the responses of one broadcast send in handler
// registration order.
type Aggregate[R any] struct {
	Responses []R
}

// Empty reports whether no handler produced a response.
func (a *Aggregate[R]) Empty() bool { return len(a.Responses) == 0 }

// Send delivers a broadcast event to all handlers bound to its type, in
// registration order. Zero bound handlers is a vacuous success with an empty
// aggregate. A handler failure does not abort sibling execution; failures are
// aggregated into a *PartialFailureError alongside the successful responses.
func Send[E, R any](ctx context.Context, b *Bus, ev E) (*Aggregate[R], error) {
	et := reflect.TypeOf((*E)(nil)).Elem()

	b.mu.RLock()
	if err := b.checkResponseLocked(et, reflect.TypeOf((*R)(nil)).Elem()); err != nil {
		b.mu.RUnlock()
		return nil, err
	}
	entries := slices.Clone(b.broadcast[et])
	b.mu.RUnlock()

	agg := &Aggregate[R]{}

	var failures []*HandlerError
	for _, e := range entries {
		out, err := e.call(ctx, ev)
		if err != nil {
			b.logger.Warn("bus handler failed", "event_type", et.String(), "index", e.index, "error", err)
			failures = append(failures, &HandlerError{EventType: et.String(), Index: e.index, Err: err})
			continue
		}
		agg.Responses = append(agg.Responses, out.(R))
	}

	if len(failures) > 0 {
		return agg, &PartialFailureError{Succeeded: len(agg.Responses), Failures: failures}
	}

	return agg, nil
}

// SendTo delivers a targeted event to the single handler bound to (type,
// entity). A missing binding fails with ErrNoHandler; a handler failure
// propagates directly as a *HandlerError.
func SendTo[E, R any](ctx context.Context, b *Bus, target EntityID, ev E) (R, error) {
	var zero R

	et := reflect.TypeOf((*E)(nil)).Elem()

	b.mu.RLock()
	if err := b.checkResponseLocked(et, reflect.TypeOf((*R)(nil)).Elem()); err != nil {
		b.mu.RUnlock()
		return zero, err
	}
	e, ok := b.targeted[targetKey{typ: et, target: target}]
	b.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w: %s for entity %d", ErrNoHandler, et, target)
	}

	out, err := e.call(ctx, ev)
	if err != nil {
		return zero, &HandlerError{EventType: et.String(), Target: &target, Index: e.index, Err: err}
	}

	return out.(R), nil
}

// checkResponseLocked verifies the caller-declared response type against the
// one fixed at registration. Unbound event types pass; a broadcast send to an
// unbound type is a vacuous success and a targeted send reports ErrNoHandler
// downstream. Caller must hold at least the read lock.
func (b *Bus) checkResponseLocked(et, rt reflect.Type) error {
	bound, ok := b.responses[et]
	if !ok {
		return nil
	}
	if bound != rt {
		return fmt.Errorf("%w: %s is bound to response %s, got %s", ErrResponseMismatch, et, bound, rt)
	}

	return nil
}

// Dispatch delivers a broadcast event whose concrete type is only known at
// runtime. Handlers are resolved against bindings created through the typed
// registration API; responses are discarded. This is the path the agent loop
// uses to apply SendEvent actions.
func (b *Bus) Dispatch(ctx context.Context, ev any) error {
	et := reflect.TypeOf(ev)

	b.mu.RLock()
	entries := slices.Clone(b.broadcast[et])
	b.mu.RUnlock()

	var (
		failures  []*HandlerError
		succeeded int
	)

	for _, e := range entries {
		if _, err := e.call(ctx, ev); err != nil {
			b.logger.Warn("bus handler failed", "event_type", et.String(), "index", e.index, "error", err)
			failures = append(failures, &HandlerError{EventType: et.String(), Index: e.index, Err: err})
			continue
		}
		succeeded++
	}

	if len(failures) > 0 {
		return &PartialFailureError{Succeeded: succeeded, Failures: failures}
	}

	return nil
}

// DispatchTo delivers a targeted event whose concrete type is only known at
// runtime. The response is discarded.
func (b *Bus) DispatchTo(ctx context.Context, target EntityID, ev any) error {
	et := reflect.TypeOf(ev)

	b.mu.RLock()
	e, ok := b.targeted[targetKey{typ: et, target: target}]
	b.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s for entity %d", ErrNoHandler, et, target)
	}

	if _, err := e.call(ctx, ev); err != nil {
		return &HandlerError{EventType: et.String(), Target: &target, Index: e.index, Err: err}
	}

	return nil
}

// HandlerCount returns the number of broadcast handlers currently bound to
// the concrete type of ev. Intended for introspection and tests.
func (b *Bus) HandlerCount(ev any) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.broadcast[reflect.TypeOf(ev)])
}
