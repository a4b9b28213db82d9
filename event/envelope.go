package event

import (
	"time"

	"github.com/google/uuid"
)

// Instruction is a control directive carried by an Envelope instead of
// regular content. Instructions are interpreted by the agent loop itself and
// are never handed to the strategy.
type Instruction int

const (
	// InstructionNone marks an ordinary content-bearing envelope.
	InstructionNone Instruction = iota
	// InstructionTerminate signals the agent loop to drain and stop.
	InstructionTerminate
)

// String returns the string representation of the instruction.
func (i Instruction) String() string {
	switch i {
	case InstructionNone:
		return "none"
	case InstructionTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Envelope is the external agent event pulled from an EventSource and fed to
// the strategy. After creation it should be treated as immutable. It captures
// correlation (ID), provenance (Name, Source), an arbitrary payload, an
// optional control instruction and an optional expiry.
type Envelope struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Source      string      `json:"source"`
	Content     any         `json:"content,omitempty"`
	Instruction Instruction `json:"instruction,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
}

// NewEnvelope creates an envelope authored by 'source' carrying the given
// content. The ID is a fresh UUID and the timestamp is UTC now.
func NewEnvelope(name, source string, content any) Envelope {
	return Envelope{
		ID:        NewID(),
		Name:      name,
		Source:    source,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewTerminateEnvelope creates a control envelope instructing the agent loop
// to drain in-flight work and stop.
func NewTerminateEnvelope(source string) Envelope {
	e := NewEnvelope("Terminate", source, nil)
	e.Instruction = InstructionTerminate
	return e
}

// WithLifetime returns a copy of the envelope that expires after d.
func (e Envelope) WithLifetime(d time.Duration) Envelope {
	expiry := e.Timestamp.Add(d)
	e.ExpiresAt = &expiry
	return e
}

// Expired reports whether the envelope's lifetime has elapsed at the given
// instant. Envelopes without an expiry never expire.
func (e Envelope) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt)
}

// IsInstruction reports whether the envelope carries a control instruction
// rather than regular content.
func (e Envelope) IsInstruction() bool { return e.Instruction != InstructionNone }

// NewID generates a new unique identifier for envelopes.
func NewID() string { return uuid.NewString() }
