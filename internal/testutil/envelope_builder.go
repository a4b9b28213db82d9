package testutil

import (
	"time"

	"github.com/hupe1980/agentcore/event"
)

// EnvelopeBuilder provides a fluent helper for constructing envelopes in
// tests. Example:
//
//	env := NewEnvelopeBuilder().Name("temperature").Source("sensor").Content(21.5).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EnvelopeBuilder struct {
	name        string
	source      string
	content     any
	instruction event.Instruction
	lifetime    *time.Duration
	timestamp   *time.Time
}

// NewEnvelopeBuilder creates a builder with default name "test" and source "test".
func NewEnvelopeBuilder() *EnvelopeBuilder {
	return &EnvelopeBuilder{name: "test", source: "test"}
}

// Name sets the event name (chainable).
func (b *EnvelopeBuilder) Name(n string) *EnvelopeBuilder { b.name = n; return b }

// Source sets the producing source (chainable).
func (b *EnvelopeBuilder) Source(s string) *EnvelopeBuilder { b.source = s; return b }

// Content sets the payload (chainable).
func (b *EnvelopeBuilder) Content(c any) *EnvelopeBuilder { b.content = c; return b }

// Terminate marks the envelope as a terminate instruction (chainable).
func (b *EnvelopeBuilder) Terminate() *EnvelopeBuilder {
	b.instruction = event.InstructionTerminate
	return b
}

// Lifetime bounds envelope validity to d from creation (chainable).
func (b *EnvelopeBuilder) Lifetime(d time.Duration) *EnvelopeBuilder {
	b.lifetime = &d
	return b
}

// Timestamp overrides the creation time, useful for expiry tests (chainable).
func (b *EnvelopeBuilder) Timestamp(t time.Time) *EnvelopeBuilder {
	b.timestamp = &t
	return b
}

// Build materializes the envelope.
func (b *EnvelopeBuilder) Build() event.Envelope {
	env := event.NewEnvelope(b.name, b.source, b.content)
	env.Instruction = b.instruction
	if b.timestamp != nil {
		env.Timestamp = *b.timestamp
	}
	if b.lifetime != nil {
		exp := env.Timestamp.Add(*b.lifetime)
		env.ExpiresAt = &exp
	}
	return env
}
