// Package agent provides the strong-typed agent identifier shared across
// the engine, orchestration, and run-state packages.
package agent

// Ident is the strong type for agent names. Engines key handoff targets and
// router destinations by Ident rather than free-form strings so an agent
// reference cannot be accidentally confused with a tool name or a model
// identifier.
type Ident string
