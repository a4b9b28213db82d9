package strategy

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agentcore/event"
	"github.com/hupe1980/agentcore/model"
)

// ActionParser converts function call parts emitted by a model into concrete
// actions. Returning a nil action skips the call; returning an error aborts
// the invocation with a recoverable failure.
type ActionParser func(call model.FunctionCall) (Action, error)

// ModelOptions configure a ModelStrategy.
type ModelOptions struct {
	// Instructions is the system prompt prefixed to every request.
	Instructions string
	// Tools are forwarded to the model verbatim.
	Tools []model.ToolDefinition
	// ActionParser maps function calls in the model reply to actions. When
	// nil, function calls are ignored.
	ActionParser ActionParser
	// HistoryKey is the state key under which conversation history is kept.
	HistoryKey string
	// MaxHistory bounds the number of retained conversation turns. Older
	// turns are discarded first. Zero means unbounded.
	MaxHistory int
}

// ModelStrategy drives decisions through a language model. Each envelope is
// rendered into a user message, appended to the rolling conversation history
// in State, and submitted together with the configured instructions and
// tools. Text output becomes the Result response; function calls are mapped
// to actions via the configured parser.
type ModelStrategy struct {
	model model.Model
	opts  ModelOptions
}

// NewModelStrategy creates a ModelStrategy backed by m.
func NewModelStrategy(m model.Model, optFns ...func(o *ModelOptions)) *ModelStrategy {
	opts := ModelOptions{
		Instructions: "You are the decision core of an autonomous agent. Decide how to react to incoming events.",
		HistoryKey:   "conversation",
		MaxHistory:   32,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelStrategy{model: m, opts: opts}
}

// ProcessEvent implements Strategy.
func (s *ModelStrategy) ProcessEvent(ctx context.Context, env event.Envelope, state *State, tk *Toolkit) (*Result, error) {
	history := s.loadHistory(state)

	userMsg := model.TextContent("user", renderEnvelope(env))
	history = append(history, userMsg)

	req := model.Request{
		Instructions: s.opts.Instructions,
		Contents:     history,
		Tools:        s.opts.Tools,
	}

	out, errCh := s.model.Generate(ctx, req)

	var final *model.Response
	for resp := range out {
		if !resp.Partial {
			r := resp
			final = &r
		}
	}
	if err := <-errCh; err != nil {
		return nil, Recoverable(fmt.Errorf("model generation: %w", err))
	}
	if final == nil {
		return nil, Recoverable(fmt.Errorf("model produced no final response"))
	}

	result := &Result{
		Response: final.Content.Text(),
		Continue: true,
	}

	if s.opts.ActionParser != nil {
		for _, call := range final.Content.FunctionCalls() {
			action, err := s.opts.ActionParser(call)
			if err != nil {
				return nil, Recoverable(fmt.Errorf("parse action %q: %w", call.Name, err))
			}
			if action != nil {
				result.Actions = append(result.Actions, action)
			}
		}
	}

	history = append(history, final.Content)
	s.storeHistory(state, history)

	return result, nil
}

func (s *ModelStrategy) loadHistory(state *State) []model.Content {
	v, ok := state.Get(s.opts.HistoryKey)
	if !ok {
		return nil
	}
	history, ok := v.([]model.Content)
	if !ok {
		return nil
	}
	return history
}

func (s *ModelStrategy) storeHistory(state *State, history []model.Content) {
	if s.opts.MaxHistory > 0 && len(history) > s.opts.MaxHistory {
		history = history[len(history)-s.opts.MaxHistory:]
	}
	state.Set(s.opts.HistoryKey, history)
}

// renderEnvelope flattens an envelope into a prompt line the model can act on.
func renderEnvelope(env event.Envelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event %q from %q", env.Name, env.Source)
	if env.Content != nil {
		fmt.Fprintf(&b, ": %v", env.Content)
	}
	return b.String()
}
