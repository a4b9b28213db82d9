package strategy

import (
	"context"

	"github.com/hupe1980/agentcore/event"
	"github.com/hupe1980/agentcore/system"
)

// Result is the decision output of one strategy invocation. It is transient
// and consumed immediately by the agent loop.
type Result struct {
	// Response is an optional human-readable reply. Empty means the strategy
	// chose not to reply.
	Response string
	// Actions are applied by the agent loop strictly in emission order.
	Actions []Action
	// Continue keeps the loop alive; false requests a drain-and-stop.
	Continue bool
}

// Toolkit borrows the agent's bus and executor for the duration of one
// strategy invocation. Strategies must not store the toolkit or either
// capability beyond the call. Effects triggered through the toolkit execute
// immediately; a strategy should not additionally return an action for the
// same effect.
type Toolkit struct {
	Bus      *event.Bus
	Executor *system.Executor
}

// Strategy is the pure decision component of an agent: one envelope in, one
// result out. All mutable state lives in the caller-supplied State.
type Strategy interface {
	ProcessEvent(ctx context.Context, env event.Envelope, state *State, tk *Toolkit) (*Result, error)
}

// Func adapts a plain function to the Strategy interface.
type Func func(ctx context.Context, env event.Envelope, state *State, tk *Toolkit) (*Result, error)

// ProcessEvent implements Strategy.
func (f Func) ProcessEvent(ctx context.Context, env event.Envelope, state *State, tk *Toolkit) (*Result, error) {
	return f(ctx, env, state, tk)
}
