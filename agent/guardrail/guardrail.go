// Package guardrail defines the input/output validation contracts an Agent
// carries. Guardrails are passed explicitly to engine.New as part of an
// Agent's configuration; there is no process-wide registry, per the core's
// no-global-state design.
package guardrail

import "context"

// Violation describes why a guardrail rejected input or output.
type Violation struct {
	// Name identifies the guardrail that failed, for telemetry and error
	// messages.
	Name string
	// Reason is a human-readable explanation surfaced on the resulting
	// engine error.
	Reason string
}

// InputGuardrail validates the concatenated user text before the agentic
// loop begins. A non-nil Violation aborts the call before any transport
// call is made and before any history item is appended.
type InputGuardrail func(ctx context.Context, userText string) *Violation

// OutputGuardrail validates the final assistant text once the loop exits
// with no further tool calls. A non-nil Violation aborts the call after the
// loop has already run to completion, so history still reflects every turn.
type OutputGuardrail func(ctx context.Context, outputText string) *Violation

// RunInput runs every guardrail in order, returning the first violation
// encountered, or nil if all guardrails pass.
func RunInput(ctx context.Context, guardrails []InputGuardrail, userText string) *Violation {
	for _, g := range guardrails {
		if g == nil {
			continue
		}
		if v := g(ctx, userText); v != nil {
			return v
		}
	}
	return nil
}

// RunOutput runs every guardrail in order, returning the first violation
// encountered, or nil if all guardrails pass.
func RunOutput(ctx context.Context, guardrails []OutputGuardrail, outputText string) *Violation {
	for _, g := range guardrails {
		if g == nil {
			continue
		}
		if v := g(ctx, outputText); v != nil {
			return v
		}
	}
	return nil
}
