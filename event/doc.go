// Package event implements the typed publish/dispatch substrate of agentcore.
//
// Two kinds of dispatch are supported:
//
//   - Broadcast events are delivered to every handler registered for their
//     type, in registration order. Dispatch order is a contract, not an
//     implementation artifact.
//   - Targeted events carry a destination EntityID and are delivered only to
//     the single handler bound to that entity.
//
// Handlers are bound through generic registration functions (Register,
// RegisterSuspending, RegisterTargeted, ...) keyed by the static event type,
// so type identity and the response type are fixed when the binding is
// created, never inferred from payload contents at dispatch time. The Bus
// additionally offers a dynamic Dispatch path used by the agent loop to apply
// SendEvent actions whose payload type is only known at runtime; that path
// still resolves against bindings created through the typed API.
//
// The package also defines Envelope, the external agent event produced by
// event sources and consumed by strategies. Envelopes are deliberately
// untyped records (name, source, arbitrary content, optional instruction);
// the typed bus events are the internal currency between handlers.
package event
