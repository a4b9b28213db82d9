// Package agentcore provides a high-level façade over the agent run loop and
// its collaborators (event bus, system executor, strategies & logging)
// enabling rapid construction of autonomous agents. Most applications
// interact with this package by:
//  1. Creating a Core via New() with a strategy (optionally overriding the
//     default bus, executor and logger)
//  2. Registering systems and event handlers
//  3. Adding one or more event sources and calling Run
//
// The façade delegates orchestration to agent.Agent while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and
// tuned queue / drain settings.
package agentcore

import (
	"context"
	"time"

	"github.com/hupe1980/agentcore/agent"
	"github.com/hupe1980/agentcore/event"
	"github.com/hupe1980/agentcore/logging"
	"github.com/hupe1980/agentcore/strategy"
	"github.com/hupe1980/agentcore/system"
)

// Options configures the Core instance.
type Options struct {
	// Name identifies the agent in logs.
	Name string

	// QueueSize sets the envelope queue capacity between sources and the
	// run loop. Larger buffers reduce source blocking but increase memory
	// usage and shutdown latency.
	QueueSize int

	// DrainTimeout bounds how long shutdown waits for in-flight system
	// executions before giving up.
	DrainTimeout time.Duration

	// Bus and Executor default to fresh instances if not provided.
	Bus      *event.Bus
	Executor *system.Executor

	// Responder receives the strategy's textual replies. Replies are
	// dropped when nil.
	Responder agent.Responder

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Core is the high-level façade aggregating the run loop and its services.
type Core struct {
	opts  Options
	agent *agent.Agent
}

// New creates a new Core driven by strat with optional overrides. Any unset
// collaborator is initialized with an in-memory implementation.
func New(strat strategy.Strategy, optFns ...func(o *Options)) *Core {
	opts := Options{
		Name:         "agent",
		QueueSize:    64,
		DrainTimeout: 30 * time.Second,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := agent.New(strat, func(o *agent.Options) {
		o.Name = opts.Name
		o.QueueSize = opts.QueueSize
		o.DrainTimeout = opts.DrainTimeout
		o.Bus = opts.Bus
		o.Executor = opts.Executor
		o.Responder = opts.Responder
		o.Logger = opts.Logger
	})

	return &Core{opts: opts, agent: a}
}

// Agent exposes the underlying run loop.
func (c *Core) Agent() *agent.Agent { return c.agent }

// Bus returns the event bus for handler registration.
func (c *Core) Bus() *event.Bus { return c.agent.Bus() }

// Executor returns the system executor for system registration.
func (c *Core) Executor() *system.Executor { return c.agent.Executor() }

// AddSource registers an event source.
func (c *Core) AddSource(src agent.EventSource) error { return c.agent.AddSource(src) }

// Run starts the loop and blocks until the agent stops.
func (c *Core) Run(ctx context.Context) error { return c.agent.Run(ctx) }

// Shutdown requests a graceful stop of a running agent.
func (c *Core) Shutdown() { c.agent.Shutdown() }
