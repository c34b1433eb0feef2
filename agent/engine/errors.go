package engine

import (
	"fmt"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
)

// ErrorKind classifies why interact terminated with an Error result.
type ErrorKind string

const (
	// ErrorGuardrailInputViolation means an input guardrail rejected the
	// concatenated user text before any transport call was made.
	ErrorGuardrailInputViolation ErrorKind = "guardrail_input_violation"
	// ErrorGuardrailOutputViolation means an output guardrail rejected the
	// final assistant text.
	ErrorGuardrailOutputViolation ErrorKind = "guardrail_output_violation"
	// ErrorLlmCallFailed means the transport returned an error after its own
	// retry policy was exhausted.
	ErrorLlmCallFailed ErrorKind = "llm_call_failed"
	// ErrorMaxTurnsExceeded means the loop exceeded the agent's maxTurns.
	ErrorMaxTurnsExceeded ErrorKind = "max_turns_exceeded"
	// ErrorHandoffFailed means the target agent's interact call returned a
	// terminal error during a handoff. Resume/ResumeStream also report it for
	// a run state of another agent or one with no decision, and Router.Route
	// for a route that matches no agent when no fallback is set.
	ErrorHandoffFailed ErrorKind = "handoff_failed"
	// ErrorParsingFailed means a configured output schema could not parse
	// the final assistant text.
	ErrorParsingFailed ErrorKind = "parsing_failed"
	// ErrorCancelled means a stream's cancel handle was pulled.
	ErrorCancelled ErrorKind = "cancelled"
)

// Error is the terminal failure type returned as AgentResult's Error
// variant. It is never used for tool-level failures, which are recovered
// locally and fed back to the model instead.
type Error struct {
	Kind      ErrorKind
	Message   string
	Cause     error
	History   []convctx.InputItem
	TurnsUsed int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("engine: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, message string, cause error, history []convctx.InputItem, turnsUsed int) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, History: history, TurnsUsed: turnsUsed}
}
