package engine

import (
	"github.com/paragon-intelligence/agentle4j-sub007/agent"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/runstate"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// Result is the tagged union returned by Interact and Resume. Exactly one of
// Success, HandoffOutcome, Paused, or Error is produced per call.
type Result interface {
	isResult()
}

// Success is the terminal result of a natural exit: the model stopped
// requesting tool calls, output guardrails passed, and (if configured) the
// output schema parsed successfully.
type Success struct {
	// Output is the final assistant text.
	Output string
	// Parsed holds the decoded structured output when the agent carries an
	// output schema, nil otherwise. StructuredAgent[T] type-asserts this.
	Parsed any
	// FinalResponse is the last model.Response received from the transport.
	FinalResponse *model.Response
	// History is the full history at the end of the call.
	History []convctx.InputItem
	// ToolExecutions lists every tool call dispatched during the call, in
	// execution order.
	ToolExecutions []tools.ToolExecution
	// TurnsUsed is the number of turns consumed.
	TurnsUsed int
}

func (Success) isResult() {}

// HandoffOutcome is returned when a tool call matched a configured handoff.
// The parent agent's interact terminates; control (and the result) belongs
// to the target agent's own interact call.
type HandoffOutcome struct {
	// TargetAgent is the name of the agent control was handed off to.
	TargetAgent agent.Ident
	// Inner is the target agent's own Result.
	Inner Result
	// History is the parent's history at the moment of handoff, before the
	// child's context fork.
	History []convctx.InputItem
}

func (HandoffOutcome) isResult() {}

// Paused is returned when a tool requiring confirmation is about to run
// under a non-streaming call. RunState carries everything needed to resume.
type Paused struct {
	RunState *runstate.RunState
}

func (Paused) isResult() {}

// isResult makes *Error (engine/errors.go) satisfy Result, so a terminal
// failure is returned through the same Result interface as any other
// outcome.
func (*Error) isResult() {}
