package agent

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentcore/event"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/strategy"
	"github.com/hupe1980/agentcore/system"
)

// RunState is the lifecycle phase of an agent.
type RunState int

const (
	// StateIdle means the agent has not been started or has fully stopped
	// and may be started again.
	StateIdle RunState = iota
	// StateRunning means the loop is consuming envelopes.
	StateRunning
	// StateDraining means no new envelopes are accepted while in-flight
	// system executions finish.
	StateDraining
	// StateStopped means the loop ended cleanly.
	StateStopped
	// StateFailed means the loop ended because an event source failed.
	StateFailed
)

// String returns the lowercase name of the state.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Responder receives the strategy's textual replies, paired with the envelope
// that produced them.
type Responder func(env event.Envelope, response string)

// Options configure an Agent.
type Options struct {
	// Name identifies the agent in logs.
	Name string
	// Bus is the event bus the agent dispatches to. A fresh bus is created
	// when nil.
	Bus *event.Bus
	// Executor runs registered systems. A fresh executor is created when nil.
	Executor *system.Executor
	// Logger receives loop diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
	// QueueSize bounds the envelope queue between sources and the loop.
	QueueSize int
	// DrainTimeout bounds how long shutdown waits for in-flight executions.
	DrainTimeout time.Duration
	// Responder receives strategy replies. Replies are dropped when nil.
	Responder Responder
}

// Agent owns the run loop tying event sources, a strategy and the system
// executor together. Envelopes flow from sources through a bounded queue into
// the strategy; the resulting actions are applied in emission order.
type Agent struct {
	name     string
	strat    strategy.Strategy
	bus      *event.Bus
	executor *system.Executor
	logger   logging.Logger
	opts     Options

	mu       sync.Mutex
	phase    RunState
	sources  []EventSource
	state    *strategy.State
	stop     chan struct{}
	stopOnce *sync.Once

	metrics metricsCollector
}

// New creates an agent driven by strat.
func New(strat strategy.Strategy, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Name:         "agent",
		QueueSize:    64,
		DrainTimeout: 30 * time.Second,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Bus == nil {
		opts.Bus = event.NewBus(func(o *event.BusOptions) { o.Logger = opts.Logger })
	}
	if opts.Executor == nil {
		opts.Executor = system.NewExecutor(func(o *system.Options) { o.Logger = opts.Logger })
	}

	return &Agent{
		name:     opts.Name,
		strat:    strat,
		bus:      opts.Bus,
		executor: opts.Executor,
		logger:   opts.Logger,
		opts:     opts,
		state:    strategy.NewState(),
	}
}

// Bus returns the agent's event bus for handler registration.
func (a *Agent) Bus() *event.Bus { return a.bus }

// Executor returns the agent's system executor for system registration.
func (a *Agent) Executor() *system.Executor { return a.executor }

// State returns the current lifecycle phase.
func (a *Agent) State() RunState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Metrics returns a snapshot of loop counters combined with the executor's
// cumulative system totals.
func (a *Agent) Metrics() Metrics {
	m := a.metrics.snapshot()
	xm := a.executor.Metrics()
	m.SystemsExecuted = xm.Executions
	m.SystemsSucceeded = xm.Succeeded
	m.SystemsFailed = xm.Failed
	return m
}

// SystemStatus reports the invocation record for a system execution id.
func (a *Agent) SystemStatus(id uint64) (system.Invocation, bool) {
	return a.executor.Status(id)
}

// AddSource registers an event source. Sources cannot be added while the
// agent is running.
func (a *Agent) AddSource(src EventSource) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.phase == StateRunning || a.phase == StateDraining {
		return ErrAlreadyRunning
	}
	a.sources = append(a.sources, src)
	return nil
}

// Shutdown requests a graceful stop: the loop stops accepting envelopes,
// drains in-flight executions and returns from Run. Safe to call multiple
// times and from any goroutine.
func (a *Agent) Shutdown() {
	a.mu.Lock()
	stop, once := a.stop, a.stopOnce
	a.mu.Unlock()
	if stop == nil || once == nil {
		return
	}
	once.Do(func() { close(stop) })
}

// Run starts the loop and blocks until the agent stops. It returns
// ErrAlreadyRunning when called concurrently, a *SourceError when an event
// source fails, or the fatal strategy error that ended the loop.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.phase == StateRunning || a.phase == StateDraining {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	if len(a.sources) == 0 {
		a.mu.Unlock()
		return ErrNoSources
	}
	a.phase = StateRunning
	stop := make(chan struct{})
	a.stop = stop
	a.stopOnce = &sync.Once{}
	sources := make([]EventSource, len(a.sources))
	copy(sources, a.sources)
	a.mu.Unlock()

	a.metrics.markStart(time.Now())
	a.logger.Info("agent started", "agent", a.name, "sources", len(sources))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan event.Envelope, a.opts.QueueSize)
	emit := func(env event.Envelope) error {
		select {
		case <-stop:
			return ErrNotRunning
		case <-runCtx.Done():
			return runCtx.Err()
		case queue <- env:
			a.metrics.received(time.Now())
			return nil
		}
	}

	g, srcCtx := errgroup.WithContext(runCtx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			if err := src.Run(srcCtx, emit); err != nil {
				return &SourceError{Source: src.Name(), Err: err}
			}
			return nil
		})
	}
	srcDone := make(chan error, 1)
	go func() { srcDone <- g.Wait() }()

	var runErr error
	sourceFailed := false

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-stop:
			break loop
		case err := <-srcDone:
			if err != nil {
				runErr = err
				sourceFailed = true
				break loop
			}
			// All sources finished cleanly. Process what is already
			// queued, then stop.
			for {
				select {
				case env := <-queue:
					stopReq, fatal := a.handle(runCtx, env)
					if fatal != nil {
						runErr = fatal
						break loop
					}
					if stopReq {
						break loop
					}
				default:
					break loop
				}
			}
		case env := <-queue:
			stopReq, fatal := a.handle(runCtx, env)
			if fatal != nil {
				runErr = fatal
				break loop
			}
			if stopReq {
				break loop
			}
		}
	}

	a.setPhase(StateDraining)
	a.logger.Info("agent draining", "agent", a.name)
	cancel()
	<-srcDone

	drainCtx, drainCancel := context.WithTimeout(context.Background(), a.opts.DrainTimeout)
	defer drainCancel()
	if err := a.executor.Drain(drainCtx); err != nil {
		a.logger.Warn("drain timed out", "agent", a.name, "error", err)
	}

	if sourceFailed {
		a.setPhase(StateFailed)
	} else {
		a.setPhase(StateStopped)
	}
	a.logger.Info("agent stopped", "agent", a.name, "state", a.State().String(), "error", runErr)

	return runErr
}

// handle processes one envelope. It returns stop=true when the loop should
// drain, and a non-nil error only for fatal strategy failures.
func (a *Agent) handle(ctx context.Context, env event.Envelope) (bool, error) {
	if env.Expired(time.Now()) {
		a.metrics.expired()
		a.logger.Debug("envelope expired", "event", env.Name, "source", env.Source)
		return false, nil
	}
	if env.Instruction == event.InstructionTerminate {
		a.logger.Info("terminate instruction received", "source", env.Source)
		return true, nil
	}

	tk := &strategy.Toolkit{Bus: a.bus, Executor: a.executor}
	start := time.Now()
	result, err := a.strat.ProcessEvent(ctx, env, a.state, tk)
	dur := time.Since(start)

	if err != nil {
		if strategy.IsFatal(err) {
			a.logger.Error("strategy failed fatally", "event", env.Name, "error", err)
			return true, err
		}
		a.metrics.strategyFailure()
		a.logger.Warn("strategy failed, skipping envelope", "event", env.Name, "error", err)
		return false, nil
	}

	a.logger.Debug("strategy decision", "event", env.Name, "actions", len(result.Actions), "continue", result.Continue, "duration", dur)

	if result.Response != "" && a.opts.Responder != nil {
		a.opts.Responder(env, result.Response)
	}

	a.apply(ctx, result.Actions)
	a.metrics.actions(len(result.Actions))
	a.metrics.processed()

	return !result.Continue, nil
}

// apply executes the strategy's actions strictly in emission order.
func (a *Agent) apply(ctx context.Context, actions []strategy.Action) {
	for _, action := range actions {
		switch act := action.(type) {
		case strategy.ExecuteSystem:
			handle, err := a.executor.Submit(ctx, act.Input)
			if err != nil {
				a.logger.Warn("system submission failed", "error", err)
				continue
			}
			if act.Await {
				if _, err := handle.Wait(ctx); err != nil {
					a.logger.Warn("system execution failed", "system", handle.System(), "id", handle.ID(), "error", err)
				}
			}
		case strategy.SendEvent:
			var err error
			if act.Target != nil {
				err = a.bus.DispatchTo(ctx, *act.Target, act.Event)
			} else {
				err = a.bus.Dispatch(ctx, act.Event)
			}
			if err != nil {
				a.logger.Warn("event dispatch failed", "error", err)
			}
		case strategy.UpdateContext:
			a.state.Set(act.Key, act.Value)
		}
	}
}

func (a *Agent) setPhase(p RunState) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}
