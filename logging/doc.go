// Package logging provides a minimal logging interface and adapters for agentcore.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the agent loop, event bus and system executor use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentLogger with contextual helpers for agents, systems and dispatch
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	ag := agent.New(myStrategy, func(o *agent.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
