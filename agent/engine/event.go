package engine

import (
	baseagent "github.com/paragon-intelligence/agentle4j-sub007/agent"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/guardrail"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/runstate"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// Event is the closed set of events the Stream Adapter emits. AgentStream
// (see stream_interact.go) is a stream.Stream[Event].
type Event interface {
	isEvent()
}

// TurnStartEvent precedes every delta and tool event for the given turn.
type TurnStartEvent struct{ Turn int }

// TextDeltaEvent carries one incremental text fragment as it arrives from
// the transport's SSE decoder.
type TextDeltaEvent struct{ Chunk string }

// TurnCompleteEvent follows every delta for its turn and precedes the next
// turn's TurnStartEvent.
type TurnCompleteEvent struct {
	Turn     int
	Response *model.Response
}

// toolDecision is the caller's resolution of a ToolCallPendingEvent.
type toolDecision struct {
	approve      bool
	output       tools.ToolCallOutput
	rejectReason string
}

// ToolCallPendingEvent is emitted for a tool call that declares
// requiresConfirmation. The producer blocks until Decide is called or the
// stream is cancelled; a cancellation is treated as "did not respond" and
// results in a PauseEvent followed by stream termination.
type ToolCallPendingEvent struct {
	Call       model.ToolCall
	decisionCh chan toolDecision
}

// Decide resolves the pending call. Call it at most once. approve=true with
// a zero-valued output dispatches the tool normally; approve=true with a
// non-zero output substitutes it directly without invoking the tool;
// approve=false ends the stream with a PauseEvent whose RunState already
// records the rejection, so ResumeStream on it feeds reason back to the
// model as the tool's output.
func (e ToolCallPendingEvent) Decide(approve bool, output tools.ToolCallOutput, reason string) {
	e.decisionCh <- toolDecision{approve: approve, output: output, rejectReason: reason}
}

func (ToolCallPendingEvent) isEvent() {}

// ToolExecutedEvent is emitted once a tool call has been dispatched (for a
// confirmation-gated call, once it was approved), in tool-call declaration
// order.
type ToolExecutedEvent struct{ Execution tools.ToolExecution }

// HandoffEvent is emitted when a tool call matched a configured handoff,
// just before the target agent's own Interact runs.
type HandoffEvent struct{ TargetAgent baseagent.Ident }

// GuardrailFailedEvent is emitted when an input or output guardrail rejects
// the call.
type GuardrailFailedEvent struct{ Detail guardrail.Violation }

// CompleteEvent is emitted exactly once on a natural, successful exit.
// Mutually exclusive with ErrorEvent and PauseEvent.
type CompleteEvent struct{ Result Success }

// ParsedCompleteEvent follows CompleteEvent when the agent carries an
// output schema and parsing succeeded.
type ParsedCompleteEvent struct{ Parsed any }

// ErrorEvent is emitted exactly once on a terminal failure. Mutually
// exclusive with CompleteEvent and PauseEvent.
type ErrorEvent struct{ Err *Error }

// PauseEvent is emitted when the stream pauses on a confirmation-gated tool
// call, either because the caller rejected it or did not respond before
// cancellation. Mutually exclusive with CompleteEvent and ErrorEvent.
type PauseEvent struct{ RunState *runstate.RunState }

func (TurnStartEvent) isEvent()       {}
func (TextDeltaEvent) isEvent()       {}
func (TurnCompleteEvent) isEvent()    {}
func (ToolExecutedEvent) isEvent()    {}
func (HandoffEvent) isEvent()         {}
func (GuardrailFailedEvent) isEvent() {}
func (CompleteEvent) isEvent()        {}
func (ParsedCompleteEvent) isEvent()  {}
func (ErrorEvent) isEvent()           {}
func (PauseEvent) isEvent()           {}
