// Package model defines the provider‑agnostic abstractions and concrete
// helpers for invoking language / reasoning models from agentcore strategies
// and system bodies.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the core stays decoupled from vendor SDKs; the agent execution
// core treats every completion call as an opaque external capability.
package model
