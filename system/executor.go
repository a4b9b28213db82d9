package system

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/agentcore/logging"
)

// System binds one side-effecting operation to a static input/output type
// pair. Implementations must respect context cancellation where their work
// allows it; the executor does not preempt running bodies.
type System[I, O any] interface {
	// Name identifies the system in status records, metrics and logs.
	Name() string
	// Execute performs the side effect for one input.
	Execute(ctx context.Context, in I) (O, error)
}

// Func adapts a plain function to the System interface.
type Func[I, O any] struct {
	name string
	fn   func(ctx context.Context, in I) (O, error)
}

// NewFunc constructs a function-backed system.
func NewFunc[I, O any](name string, fn func(ctx context.Context, in I) (O, error)) *Func[I, O] {
	return &Func[I, O]{name: name, fn: fn}
}

// Name returns the system name.
func (f *Func[I, O]) Name() string { return f.name }

// Execute invokes the wrapped function.
func (f *Func[I, O]) Execute(ctx context.Context, in I) (O, error) { return f.fn(ctx, in) }

// binding is the type-erased registration record for one system.
type binding struct {
	name   string
	input  reflect.Type
	output reflect.Type
	invoke func(ctx context.Context, in any) (any, error)
}

// Options configures an Executor instance.
type Options struct {
	// HistorySize bounds the retained execution history. Oldest records are
	// evicted first. Defaults to 256.
	HistorySize int
	// Logger receives execution diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Executor registers systems and tracks their asynchronous invocations.
// Registration is expected during setup; execution and status queries are
// safe for concurrent use.
type Executor struct {
	mu      sync.RWMutex
	systems map[reflect.Type]*binding

	nextID atomic.Uint64

	recMu       sync.Mutex
	records     map[uint64]*Invocation
	order       []uint64 // creation order, drives oldest-first eviction
	historySize int

	metricsMu sync.Mutex
	metrics   Metrics

	inflight sync.WaitGroup

	logger logging.Logger
}

// NewExecutor constructs an Executor with an empty registry.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{
		HistorySize: 256,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		systems:     make(map[reflect.Type]*binding),
		records:     make(map[uint64]*Invocation),
		historySize: opts.HistorySize,
		metrics:     Metrics{PerSystem: make(map[string]SystemMetrics)},
		logger:      opts.Logger,
	}
}

// Register binds a system to its input/output type pair. One system per pair;
// re-registration replaces the previous binding.
func Register[I, O any](x *Executor, s System[I, O]) {
	b := &binding{
		name:   s.Name(),
		input:  reflect.TypeOf((*I)(nil)).Elem(),
		output: reflect.TypeOf((*O)(nil)).Elem(),
		invoke: func(ctx context.Context, in any) (any, error) {
			return s.Execute(ctx, in.(I))
		},
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.systems[b.input] = b
}

// Execute starts one invocation of the system bound to input type I. The
// call never blocks on the system body: it returns a Handle whose Wait
// suspends the caller until the body resolves. ErrNotFound is returned when
// no system is bound for I (or its output type differs from O).
func Execute[I, O any](ctx context.Context, x *Executor, in I) (*Handle[O], error) {
	it := reflect.TypeOf((*I)(nil)).Elem()

	x.mu.RLock()
	b, ok := x.systems[it]
	x.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no system for input %s", ErrNotFound, it)
	}
	if ot := reflect.TypeOf((*O)(nil)).Elem(); b.output != ot {
		return nil, fmt.Errorf("%w: system %s produces %s, not %s", ErrNotFound, b.name, b.output, ot)
	}

	h := &Handle[O]{system: b.name, done: make(chan struct{})}
	h.id = x.run(ctx, b, in, func(out any, err error) {
		if err != nil {
			var zero O
			h.resolve(zero, err)
			return
		}
		h.resolve(out.(O), nil)
	})

	return h, nil
}

// Submit starts one invocation resolved dynamically from the concrete type
// of in. This is the path the agent loop uses for ExecuteSystem actions; the
// typed Execute function is preferred wherever the input type is static.
func (x *Executor) Submit(ctx context.Context, in any) (*Handle[any], error) {
	it := reflect.TypeOf(in)

	x.mu.RLock()
	b, ok := x.systems[it]
	x.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no system for input %s", ErrNotFound, it)
	}

	h := &Handle[any]{system: b.name, done: make(chan struct{})}
	h.id = x.run(ctx, b, in, h.resolve)

	return h, nil
}

// run creates the tracked invocation and spawns the body goroutine. The
// returned execution ID is already recorded with status Pending when run
// returns, so callers can query it immediately.
func (x *Executor) run(ctx context.Context, b *binding, in any, resolve func(out any, err error)) uint64 {
	id := x.nextID.Add(1)

	rec := &Invocation{
		ID:        id,
		System:    b.name,
		Status:    StatusPending,
		StartedAt: time.Now().UTC(),
	}
	x.track(rec)

	x.inflight.Add(1)

	go func() {
		defer x.inflight.Done()

		x.transition(id, StatusRunning, 0, "")
		start := time.Now()

		out, err := b.invoke(ctx, in)
		dur := time.Since(start)

		if err != nil {
			execErr := &ExecutionError{System: b.name, ExecutionID: id, Err: err}
			x.transition(id, StatusFailed, dur, err.Error())
			x.record(b.name, dur, false)
			x.logger.Warn("system execution failed", "system", b.name, "execution_id", id, "error", err)
			resolve(nil, execErr)
			return
		}

		x.transition(id, StatusCompleted, dur, "")
		x.record(b.name, dur, true)
		x.logger.Debug("system execution completed", "system", b.name, "execution_id", id, "duration", dur)
		resolve(out, nil)
	}()

	return id
}

// track inserts the record and evicts the oldest entries beyond the bounded
// history size.
func (x *Executor) track(rec *Invocation) {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	x.records[rec.ID] = rec
	x.order = append(x.order, rec.ID)

	for x.historySize > 0 && len(x.order) > x.historySize {
		oldest := x.order[0]
		x.order = x.order[1:]
		delete(x.records, oldest)
	}
}

// transition moves an invocation to a new status. The first terminal status
// wins: a cancellation recorded through Cancel is not overwritten when the
// body later resolves.
func (x *Executor) transition(id uint64, status Status, dur time.Duration, reason string) {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	rec, ok := x.records[id]
	if !ok || rec.Status.Terminal() {
		return
	}

	rec.Status = status
	rec.Duration = dur
	rec.Reason = reason
}

// record updates the cumulative metrics for one resolved invocation.
func (x *Executor) record(name string, dur time.Duration, success bool) {
	x.metricsMu.Lock()
	defer x.metricsMu.Unlock()

	x.metrics.Executions++
	sm := x.metrics.PerSystem[name]
	sm.Executions++
	sm.TotalDuration += dur
	if success {
		x.metrics.Succeeded++
		sm.Succeeded++
	} else {
		x.metrics.Failed++
		sm.Failed++
	}
	x.metrics.PerSystem[name] = sm
}

// Status returns a point-in-time snapshot of one invocation. Evicted or
// unknown IDs report false; IDs are never reused, so a stale lookup can never
// resolve to a wrong record.
func (x *Executor) Status(id uint64) (Invocation, bool) {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	rec, ok := x.records[id]
	if !ok {
		return Invocation{}, false
	}

	return *rec, true
}

// Cancel marks a non-terminal invocation as Failed("cancelled"). It does not
// stop the system body; side effects are assumed non-preemptible.
func (x *Executor) Cancel(id uint64) error {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	rec, ok := x.records[id]
	if !ok {
		return fmt.Errorf("%w: execution %d", ErrNotFound, id)
	}
	if rec.Status.Terminal() {
		return nil
	}

	rec.Status = StatusFailed
	rec.Reason = "cancelled"

	return nil
}

// Metrics returns a copy of the cumulative executor metrics.
func (x *Executor) Metrics() Metrics {
	x.metricsMu.Lock()
	defer x.metricsMu.Unlock()

	out := x.metrics
	out.PerSystem = make(map[string]SystemMetrics, len(x.metrics.PerSystem))
	for k, v := range x.metrics.PerSystem {
		out.PerSystem[k] = v
	}

	return out
}

// History returns snapshots of the retained invocations in creation order.
func (x *Executor) History() []Invocation {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	out := make([]Invocation, 0, len(x.order))
	for _, id := range x.order {
		if rec, ok := x.records[id]; ok {
			out = append(out, *rec)
		}
	}

	return out
}

// Clear drops the retained execution history. Execution IDs keep increasing.
func (x *Executor) Clear() {
	x.recMu.Lock()
	defer x.recMu.Unlock()

	x.records = make(map[uint64]*Invocation)
	x.order = nil
}

// Drain blocks until all in-flight bodies have resolved or ctx expires.
func (x *Executor) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		x.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: drain: %v", ErrTimeout, ctx.Err())
	}
}
