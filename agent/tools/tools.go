// Package tools implements the tool catalogue, registry, and dispatcher
// consumed by the agent execution engine. A Tool is a stable, named catalogue
// entry with a JSON-schema-shaped parameter description and a decode/invoke
// pair; the Registry rejects duplicate names at registration time and the
// Dispatcher resolves a model-issued call into a decoded invocation and a
// wire-ready ToolCallOutput.
package tools

import (
	"context"
	"encoding/json"
)

// Ident is the strong type for tool names, kept distinct from free-form
// strings so callers cannot accidentally mix tool identifiers with other
// string-keyed maps.
type Ident string

// JSONCodec serializes and deserializes strongly typed values to and from
// JSON. Tools carry an explicit Decode closure instead of relying on
// reflection to locate their parameter type; the Dispatcher falls back to
// AnyJSONCodec for a tool without one.
type JSONCodec[T any] struct {
	ToJSON   func(T) ([]byte, error)
	FromJSON func([]byte) (T, error)
}

// AnyJSONCodec is a pre-built codec for untyped tool parameters, suitable
// when a tool's concrete parameter type is not known at compile time.
var AnyJSONCodec = JSONCodec[any]{
	ToJSON: json.Marshal,
	FromJSON: func(data []byte) (any, error) {
		if len(data) == 0 {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	},
}

// FieldIssue represents a single validation issue surfaced when a tool's
// decode closure rejects a model-supplied payload.
type FieldIssue struct {
	Field      string
	Constraint string
	Allowed    []string
	Pattern    string
}

// Invoker performs the tool's side effect. It receives the decoded parameter
// record (as produced by the tool's Decode closure) and returns a
// ToolCallOutput. Invoker must not retain ctx or meta past return.
type Invoker func(ctx context.Context, meta CallMeta, params any) (ToolCallOutput, error)

// CallMeta carries run-scoped identifiers an Invoker needs without forcing
// tools to depend on the engine or convctx packages.
type CallMeta struct {
	// RunID, SessionID, TurnID identify the owning run for logging/telemetry.
	RunID, SessionID, TurnID string
	// CallID uniquely identifies this specific invocation, correlating the
	// eventual ToolCallOutput back to the model's tool-call item.
	CallID string
	// ParentState is a snapshot of the calling context's user-keyed state
	// map, available to tools that coordinate with the parent (e.g. a
	// sub-agent-as-tool that inherits selected keys). Nil when the caller
	// does not supply one.
	ParentState map[string]any
}

// Tool is a catalogue entry: a stable name, optional human-readable
// description, a parameter schema, a decode closure from raw JSON to a
// parameter record, and the invocation capability itself.
type Tool struct {
	// Name is the stable, unique-within-one-agent tool identifier.
	Name Ident
	// Description is presented to the model to decide when to call the tool.
	Description string
	// ParameterSchema is a JSON-schema-shaped mapping describing the
	// tool's input payload, forwarded to the model verbatim.
	ParameterSchema map[string]any
	// Decode converts the model's raw JSON arguments into the parameter
	// record the Invoke closure expects. The Dispatcher turns a Decode
	// failure into an error ToolCallOutput fed back to the model.
	Decode func(raw json.RawMessage) (any, error)
	// Invoke performs the tool's operation given the decoded parameters.
	Invoke Invoker
	// RequiresConfirmation gates execution behind the pause/resume protocol:
	// a non-streaming Interact call returns Paused instead of invoking the
	// tool directly; a streaming call emits engine.ToolCallPendingEvent.
	RequiresConfirmation bool
}

// ToolCallOutput is the wire-ready result of a tool invocation: either
// Success or Error, keyed by the originating call ID so it can be appended
// to history as the counterpart of the model's tool-call item.
type ToolCallOutput struct {
	CallID  string
	Text    string
	IsError bool
}

// Success builds a successful ToolCallOutput.
func Success(callID, text string) ToolCallOutput {
	return ToolCallOutput{CallID: callID, Text: text}
}

// Failure builds an error ToolCallOutput. The text is what the model sees on
// its next turn, so it should be actionable (e.g. "tool X is not available").
func Failure(callID, text string) ToolCallOutput {
	return ToolCallOutput{CallID: callID, Text: text, IsError: true}
}
