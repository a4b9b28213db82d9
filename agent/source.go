package agent

import (
	"context"
	"time"

	"github.com/hupe1980/agentcore/event"
)

// EventSource produces envelopes for the agent loop. Run blocks until the
// context is cancelled or the source fails; envelopes are handed to emit,
// which returns an error once the agent is draining and no longer accepts
// input.
type EventSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Run pumps envelopes into emit until ctx is cancelled. A nil return
	// means the source finished cleanly; any other error fails the agent.
	Run(ctx context.Context, emit func(event.Envelope) error) error
}

// TickerSource emits an envelope at a fixed interval. The payload is produced
// by the configured generator on every tick.
type TickerSource struct {
	name     string
	interval time.Duration
	maxTicks int
	generate func(t time.Time) event.Envelope
}

// NewTickerSource creates a source that fires every interval. When generate
// is nil a plain "tick" envelope carrying the tick time is emitted.
func NewTickerSource(name string, interval time.Duration, generate func(t time.Time) event.Envelope) *TickerSource {
	if generate == nil {
		generate = func(t time.Time) event.Envelope {
			return event.NewEnvelope("tick", name, t)
		}
	}
	return &TickerSource{name: name, interval: interval, generate: generate}
}

// WithMaxTicks bounds the number of emitted ticks; the source finishes
// cleanly after n emissions. Zero means unbounded.
func (s *TickerSource) WithMaxTicks(n int) *TickerSource {
	s.maxTicks = n
	return s
}

// Name implements EventSource.
func (s *TickerSource) Name() string { return s.name }

// Run implements EventSource.
func (s *TickerSource) Run(ctx context.Context, emit func(event.Envelope) error) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	emitted := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			if err := emit(s.generate(t)); err != nil {
				return nil
			}
			emitted++
			if s.maxTicks > 0 && emitted >= s.maxTicks {
				return nil
			}
		}
	}
}

// ChannelSource adapts a caller-owned envelope channel into an EventSource.
// The source finishes cleanly when the channel is closed.
type ChannelSource struct {
	name string
	ch   <-chan event.Envelope
}

// NewChannelSource wraps ch as an event source.
func NewChannelSource(name string, ch <-chan event.Envelope) *ChannelSource {
	return &ChannelSource{name: name, ch: ch}
}

// Name implements EventSource.
func (s *ChannelSource) Name() string { return s.name }

// Run implements EventSource.
func (s *ChannelSource) Run(ctx context.Context, emit func(event.Envelope) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-s.ch:
			if !ok {
				return nil
			}
			if err := emit(env); err != nil {
				return nil
			}
		}
	}
}
