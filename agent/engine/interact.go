package engine

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/guardrail"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/runstate"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/telemetry"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// Interact runs the agentic loop to completion against cctx: call the
// model, extract tool calls, dispatch or pause on them, detect handoffs,
// and return a terminal Result. cctx is mutated in place; the caller
// retains ownership once Interact returns.
func (a *Agent) Interact(ctx context.Context, cctx *convctx.Context) Result {
	cctx.EnsureTraceIDs()

	userText := cctx.ConcatenatedUserText()
	if v := guardrail.RunInput(ctx, a.inputGuardrails, userText); v != nil {
		return a.fail(ctx, cctx, ErrorGuardrailInputViolation, v.Reason, nil)
	}

	return a.loop(ctx, cctx, nil)
}

// Resume reloads a paused run, applies the caller's confirmation decision,
// and continues the loop from the pending tool call.
func (a *Agent) Resume(ctx context.Context, state *runstate.RunState) Result {
	if state.AgentName != string(a.name) {
		return a.fail(ctx, state.Context, ErrorHandoffFailed,
			fmt.Sprintf("run state belongs to agent %q, not %q", state.AgentName, a.name), nil)
	}
	if !state.Decision.Resolved {
		return a.fail(ctx, state.Context, ErrorHandoffFailed, "run state has no confirmation decision", nil)
	}

	cctx := state.Context
	var exec tools.ToolExecution
	if state.Decision.Approved {
		if state.Decision.Output.CallID != "" || state.Decision.Output.Text != "" {
			exec = tools.ToolExecution{
				ToolName: state.Pending.ToolName,
				CallID:   state.Pending.CallID,
				RawArguments: state.Pending.RawArgs,
				Output:   state.Decision.Output,
			}
		} else {
			meta := tools.CallMeta{RunID: cctx.RequestID(), CallID: state.Pending.CallID, ParentState: cctx.StateSnapshot()}
			var err error
			exec, err = a.dispatcher.Dispatch(ctx, meta, state.Pending.ToolName, state.Pending.RawArgs)
			if err != nil {
				return a.fail(ctx, cctx, ErrorCancelled, "resume dispatch cancelled", err)
			}
		}
	} else {
		exec = tools.ToolExecution{
			ToolName:     state.Pending.ToolName,
			CallID:       state.Pending.CallID,
			RawArguments: state.Pending.RawArgs,
			Output:       tools.Failure(state.Pending.CallID, state.Decision.RejectReason),
		}
	}

	cctx.AddToolResult(exec.ToolName, exec.Output)
	executions := append(append([]tools.ToolExecution(nil), state.ToolExecutions...), exec)

	return a.loop(ctx, cctx, executions)
}

// loop drives turns until a terminal condition is reached. cctx's turn
// counter already reflects where a resumed run left off, since Context
// carries its own counter through Copy/Marshal; previousExecutions carries
// forward any tool executions recorded before a pause so resume never drops
// them.
func (a *Agent) loop(ctx context.Context, cctx *convctx.Context, previousExecutions []tools.ToolExecution) Result {
	executions := append([]tools.ToolExecution(nil), previousExecutions...)

	for {
		turn := cctx.IncrementTurn()
		if turn > a.maxTurns {
			return a.fail(ctx, cctx, ErrorMaxTurnsExceeded,
				fmt.Sprintf("exceeded maxTurns=%d", a.maxTurns), nil)
		}

		spanCtx, span := a.tracer.Start(ctx, fmt.Sprintf("%s.turn-%d", a.name, turn))

		history := cctx.HistoryMutable()
		if a.contextWindow != nil {
			trimmed, err := a.contextWindow.Trim(spanCtx, history)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "context window trim failed")
				span.End()
				return a.fail(ctx, cctx, ErrorLlmCallFailed, "context window manager failed", err)
			}
			history = trimmed
		}

		req := a.buildRequest(history)
		resp, err := a.responder.Respond(spanCtx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "transport call failed")
			span.End()
			return a.fail(ctx, cctx, ErrorLlmCallFailed, "transport call failed", err)
		}
		span.End()

		for _, msg := range resp.Output {
			cctx.AddMessage(msg)
		}

		if len(resp.ToolCalls) == 0 {
			return a.finalize(ctx, cctx, resp, executions, turn)
		}

		if h, call, ok := a.detectHandoff(resp.ToolCalls); ok {
			return a.handoff(ctx, cctx, h, call)
		}

		for _, call := range resp.ToolCalls {
			tool, isRealTool := a.tools.Lookup(tools.Ident(call.Name))
			if isRealTool && tool.RequiresConfirmation {
				state := &runstate.RunState{
					AgentName: string(a.name),
					Context:   cctx,
					Pending: runstate.PendingCall{
						ToolName: tools.Ident(call.Name),
						CallID:   call.ID,
						RawArgs:  call.Arguments,
					},
					LastResponse:   resp,
					ToolExecutions: executions,
					Turn:           turn,
				}
				return Paused{RunState: state}
			}

			meta := tools.CallMeta{RunID: cctx.RequestID(), TurnID: fmt.Sprint(turn), CallID: call.ID, ParentState: cctx.StateSnapshot()}
			exec, derr := a.dispatcher.Dispatch(spanCtx, meta, tools.Ident(call.Name), call.Arguments)
			if derr != nil {
				return a.fail(ctx, cctx, ErrorCancelled, "tool dispatch cancelled", derr)
			}
			cctx.AddToolResult(exec.ToolName, exec.Output)
			executions = append(executions, exec)
		}
	}
}

func (a *Agent) fail(ctx context.Context, cctx *convctx.Context, kind ErrorKind, message string, cause error) *Error {
	var history []convctx.InputItem
	turns := 0
	if cctx != nil {
		history = cctx.History()
		turns = cctx.TurnCount()
	}
	err := newError(kind, message, cause, history, turns)
	a.broadcastFailure(ctx, cctx, err)
	return err
}

func (a *Agent) broadcastFailure(ctx context.Context, cctx *convctx.Context, err *Error) {
	if a.telemetry == nil {
		return
	}
	event := telemetry.FailureEvent{
		AgentName: string(a.name),
		Kind:      string(err.Kind),
		Message:   err.Message,
		TurnsUsed: err.TurnsUsed,
	}
	if cctx != nil {
		event.RunID = cctx.RequestID()
	}
	a.telemetry.Broadcast(ctx, event)
}
