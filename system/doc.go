// Package system implements registration and asynchronous execution of named
// side-effecting operations ("systems") with per-invocation status tracking.
//
// A System binds one implementation to a static input/output type pair.
// Executing an input does not block the caller: Execute returns a Handle
// immediately and the body runs on its own goroutine while the Executor
// tracks its status through Pending -> Running -> {Completed | Failed}.
// Execution IDs are strictly increasing and never reused, so lookups against
// the bounded, oldest-first-evicted history either find the right record or
// nothing at all.
//
// The core is agnostic to what a system actually does; completion-model
// calls, network transactions and hardware actuation all plug in through the
// same contract.
package system
