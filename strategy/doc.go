// Package strategy defines the decision contract of agentcore.
//
// A Strategy maps one external envelope plus the agent's mutable state to a
// Result: an optional human-readable response, an ordered list of actions and
// a continue/terminate flag. Strategies must be free of hidden global state;
// everything mutable lives in the caller-supplied State.
//
// The ordered Actions slice returned in Result is the authoritative channel
// for triggering systems and events: the agent loop applies each action in
// emission order. The Toolkit passed to ProcessEvent borrows the bus and
// executor for the duration of one invocation only, for strategies that must
// observe a system result mid-decision; effects triggered through it execute
// immediately, before the returned actions. A strategy should trigger a given
// effect through exactly one of the two channels.
//
// Errors are classified: Recoverable errors let the loop proceed to the next
// envelope, Fatal errors stop the loop and surface to its caller.
package strategy
