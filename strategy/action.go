package strategy

import "github.com/hupe1980/agentcore/event"

// Action is one decision output applied by the agent loop in emission order.
// The set of variants is closed: ExecuteSystem, SendEvent and UpdateContext.
type Action interface {
	isAction()
}

// ExecuteSystem invokes the system bound to the concrete type of Input.
// When Await is set the loop waits for the invocation to resolve before
// applying the next action; otherwise the invocation is fire-and-track and
// only drained on shutdown. Priority is advisory metadata for executors that
// schedule work; the bundled executor starts every body immediately, and
// actions are always applied in emission order regardless of priority.
type ExecuteSystem struct {
	Input    any
	Priority int
	Await    bool
}

func (ExecuteSystem) isAction() {}

// SendEvent dispatches a bus event. A nil Target broadcasts to all handlers
// bound to the event's type; a non-nil Target routes to the single handler
// bound to that entity.
type SendEvent struct {
	Event  any
	Target *event.EntityID
}

func (SendEvent) isAction() {}

// UpdateContext mutates one key of the agent-owned State.
type UpdateContext struct {
	Key   string
	Value any
}

func (UpdateContext) isAction() {}
