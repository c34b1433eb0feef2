// Package runstate implements AgentRunState: the serializable pause point an
// Agent returns when a tool requiring confirmation is about to run. A
// RunState carries everything interact needs to continue the loop once the
// caller has approved or rejected the pending call: the owning agent's
// name, a full context snapshot, the pending tool call, the last response,
// every tool execution recorded so far, and the current turn number.
package runstate

import (
	"encoding/json"
	"fmt"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// Decision records the caller's resolution of a pending tool call. It is
// empty until ApproveToolCall or RejectToolCall is invoked, and resume
// requires a non-empty decision before it will proceed.
type Decision struct {
	// Resolved is true once the caller has approved or rejected the call.
	Resolved bool
	// Approved is true when the caller approved execution.
	Approved bool
	// Output is the caller-supplied output to use instead of invoking the
	// tool, when Approved is true and the caller wants to substitute a
	// result directly (e.g. a previously cached answer). When empty, resume
	// dispatches the tool call normally.
	Output tools.ToolCallOutput
	// RejectReason explains why the caller rejected the call, fed back to
	// the model as the tool's output when Approved is false.
	RejectReason string
}

// PendingCall is the tool call awaiting a confirmation decision.
type PendingCall struct {
	ToolName tools.Ident
	CallID   string
	RawArgs  json.RawMessage
}

// RunState is the serializable pause point returned as AgentResult's Paused
// variant. Marshal/Unmarshal round-trip it to a durable medium; Resume on
// the engine reloads one and continues the loop.
type RunState struct {
	AgentName       string
	Context         *convctx.Context
	Pending         PendingCall
	LastResponse    *model.Response
	ToolExecutions  []tools.ToolExecution
	Turn            int
	Decision        Decision
}

// ApproveToolCall marks the pending call approved. If output is the zero
// ToolCallOutput, resume dispatches the tool normally; otherwise resume uses
// output directly without invoking the tool.
func (s *RunState) ApproveToolCall(output tools.ToolCallOutput) {
	s.Decision = Decision{Resolved: true, Approved: true, Output: output}
}

// RejectToolCall marks the pending call rejected with reason, which is fed
// back to the model as the tool's output text on resume.
func (s *RunState) RejectToolCall(reason string) {
	s.Decision = Decision{Resolved: true, Approved: false, RejectReason: reason}
}

// Marshal serializes s to JSON for storage on a durable medium.
func (s *RunState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal reloads a RunState previously produced by Marshal.
func Unmarshal(data []byte) (*RunState, error) {
	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("runstate: unmarshal: %w", err)
	}
	return &s, nil
}
