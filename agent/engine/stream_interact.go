package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/guardrail"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/runstate"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/stream"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// AgentStream is the Stream Adapter's event source.
type AgentStream = stream.Stream[Event]

// streamEventBuffer bounds how far a fast producer can run ahead of a slow
// consumer before backpressure kicks in.
const streamEventBuffer = 16

// InteractStream runs the same agentic loop as Interact but emits an Event
// for every observable step instead of blocking until a terminal Result.
// The stream terminates after at most one of CompleteEvent, ErrorEvent, or
// PauseEvent; a handoff whose target ends Paused or hands off again ends
// the stream with none of them.
func (a *Agent) InteractStream(ctx context.Context, cctx *convctx.Context) *AgentStream {
	return stream.Run(ctx, streamEventBuffer, func(ctx context.Context, emit stream.Emitter[Event]) {
		cctx.EnsureTraceIDs()

		userText := cctx.ConcatenatedUserText()
		if v := guardrail.RunInput(ctx, a.inputGuardrails, userText); v != nil {
			emit(GuardrailFailedEvent{Detail: *v})
			emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorGuardrailInputViolation, v.Reason, nil)})
			return
		}

		a.streamLoop(ctx, cctx, nil, emit)
	})
}

// ResumeStream reloads a paused run and continues the loop as a stream,
// mirroring Resume.
func (a *Agent) ResumeStream(ctx context.Context, state *runstate.RunState) *AgentStream {
	return stream.Run(ctx, streamEventBuffer, func(ctx context.Context, emit stream.Emitter[Event]) {
		if state.AgentName != string(a.name) {
			emit(ErrorEvent{Err: a.fail(ctx, state.Context, ErrorHandoffFailed,
				fmt.Sprintf("run state belongs to agent %q, not %q", state.AgentName, a.name), nil)})
			return
		}
		if !state.Decision.Resolved {
			emit(ErrorEvent{Err: a.fail(ctx, state.Context, ErrorHandoffFailed, "run state has no confirmation decision", nil)})
			return
		}

		cctx := state.Context
		var exec tools.ToolExecution
		if state.Decision.Approved {
			if state.Decision.Output.CallID != "" || state.Decision.Output.Text != "" {
				exec = tools.ToolExecution{
					ToolName:     state.Pending.ToolName,
					CallID:       state.Pending.CallID,
					RawArguments: state.Pending.RawArgs,
					Output:       state.Decision.Output,
				}
			} else {
				meta := tools.CallMeta{RunID: cctx.RequestID(), CallID: state.Pending.CallID, ParentState: cctx.StateSnapshot()}
				var err error
				exec, err = a.dispatcher.Dispatch(ctx, meta, state.Pending.ToolName, state.Pending.RawArgs)
				if err != nil {
					emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorCancelled, "resume dispatch cancelled", err)})
					return
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
		emit(ToolExecutedEvent{Execution: exec})

		cctx.AddToolResult(exec.ToolName, exec.Output)
		executions := append(append([]tools.ToolExecution(nil), state.ToolExecutions...), exec)

		a.streamLoop(ctx, cctx, executions, emit)
	})
}

// streamLoop mirrors loop (interact.go) turn for turn, but emits an Event
// for every step a blocking caller cannot otherwise observe, instead of
// only returning a single terminal Result.
func (a *Agent) streamLoop(ctx context.Context, cctx *convctx.Context, previousExecutions []tools.ToolExecution, emit stream.Emitter[Event]) {
	executions := append([]tools.ToolExecution(nil), previousExecutions...)

	for {
		turn := cctx.IncrementTurn()
		if turn > a.maxTurns {
			emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorMaxTurnsExceeded,
				fmt.Sprintf("exceeded maxTurns=%d", a.maxTurns), nil)})
			return
		}
		emit(TurnStartEvent{Turn: turn})

		spanCtx, span := a.tracer.Start(ctx, fmt.Sprintf("%s.turn-%d", a.name, turn))

		history := cctx.HistoryMutable()
		if a.contextWindow != nil {
			trimmed, err := a.contextWindow.Trim(spanCtx, history)
			if err != nil {
				span.RecordError(err)
				span.End()
				emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorLlmCallFailed, "context window manager failed", err)})
				return
			}
			history = trimmed
		}

		req := a.buildRequest(history)
		resp, err := a.respondStreaming(spanCtx, req, emit)
		if err != nil {
			span.RecordError(err)
			span.End()
			emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorLlmCallFailed, "transport call failed", err)})
			return
		}
		span.End()

		for _, msg := range resp.Output {
			cctx.AddMessage(msg)
		}
		emit(TurnCompleteEvent{Turn: turn, Response: resp})

		if len(resp.ToolCalls) == 0 {
			a.streamFinalize(ctx, cctx, resp, executions, turn, emit)
			return
		}

		if h, call, ok := a.detectHandoff(resp.ToolCalls); ok {
			emit(HandoffEvent{TargetAgent: h.Target.Name()})
			result := a.handoff(ctx, cctx, h, call)
			switch v := result.(type) {
			case *Error:
				emit(ErrorEvent{Err: v})
			case Success:
				emit(CompleteEvent{Result: v})
			case HandoffOutcome:
				// The child itself completed successfully; project its
				// output as this stream's terminal event so every stream
				// still ends in exactly one of Complete/Error/Pause. A
				// child that paused or handed off again has no event of
				// its own kind to project here and the stream simply ends.
				if innerSuccess, ok := v.Inner.(Success); ok {
					emit(CompleteEvent{Result: innerSuccess})
				}
			}
			return
		}

		for _, call := range resp.ToolCalls {
			tool, isRealTool := a.tools.Lookup(tools.Ident(call.Name))
			if isRealTool && tool.RequiresConfirmation {
				if !a.awaitToolDecision(ctx, cctx, call, turn, &executions, emit) {
					return
				}
				continue
			}

			meta := tools.CallMeta{RunID: cctx.RequestID(), TurnID: fmt.Sprint(turn), CallID: call.ID, ParentState: cctx.StateSnapshot()}
			exec, derr := a.dispatcher.Dispatch(ctx, meta, tools.Ident(call.Name), call.Arguments)
			if derr != nil {
				emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorCancelled, "tool dispatch cancelled", derr)})
				return
			}
			cctx.AddToolResult(exec.ToolName, exec.Output)
			executions = append(executions, exec)
			emit(ToolExecutedEvent{Execution: exec})
		}
	}
}

// awaitToolDecision emits a ToolCallPendingEvent and blocks until the
// caller decides or the stream is cancelled. It reports whether the loop
// should continue (true) or has already emitted a terminal PauseEvent and
// the caller should return (false).
func (a *Agent) awaitToolDecision(ctx context.Context, cctx *convctx.Context, call model.ToolCall, turn int, executions *[]tools.ToolExecution, emit stream.Emitter[Event]) bool {
	decisionCh := make(chan toolDecision, 1)
	emit(ToolCallPendingEvent{Call: call, decisionCh: decisionCh})

	state := &runstate.RunState{
		AgentName: string(a.name),
		Context:   cctx,
		Pending: runstate.PendingCall{
			ToolName: tools.Ident(call.Name),
			CallID:   call.ID,
			RawArgs:  call.Arguments,
		},
		ToolExecutions: *executions,
		Turn:           turn,
	}

	select {
	case dec := <-decisionCh:
		if !dec.approve {
			state.RejectToolCall(dec.rejectReason)
			emit(PauseEvent{RunState: state})
			return false
		}
		var exec tools.ToolExecution
		if dec.output.CallID != "" || dec.output.Text != "" {
			exec = tools.ToolExecution{
				ToolName:     tools.Ident(call.Name),
				CallID:       call.ID,
				RawArguments: call.Arguments,
				Output:       dec.output,
			}
		} else {
			meta := tools.CallMeta{RunID: cctx.RequestID(), TurnID: fmt.Sprint(turn), CallID: call.ID, ParentState: cctx.StateSnapshot()}
			var derr error
			exec, derr = a.dispatcher.Dispatch(ctx, meta, tools.Ident(call.Name), call.Arguments)
			if derr != nil {
				emit(ErrorEvent{Err: a.fail(ctx, cctx, ErrorCancelled, "tool dispatch cancelled", derr)})
				return false
			}
		}
		cctx.AddToolResult(exec.ToolName, exec.Output)
		*executions = append(*executions, exec)
		emit(ToolExecutedEvent{Execution: exec})
		return true

	case <-ctx.Done():
		emit(PauseEvent{RunState: state})
		return false
	}
}

// streamFinalize runs output guardrails and (if configured) structured
// parsing exactly as finalize does, projecting the result onto
// GuardrailFailedEvent/ErrorEvent/CompleteEvent/ParsedCompleteEvent.
func (a *Agent) streamFinalize(ctx context.Context, cctx *convctx.Context, resp *model.Response, executions []tools.ToolExecution, turn int, emit stream.Emitter[Event]) {
	result := a.finalize(ctx, cctx, resp, executions, turn)
	switch v := result.(type) {
	case Success:
		emit(CompleteEvent{Result: v})
		if v.Parsed != nil {
			emit(ParsedCompleteEvent{Parsed: v.Parsed})
		}
	case *Error:
		if v.Kind == ErrorGuardrailOutputViolation {
			emit(GuardrailFailedEvent{Detail: guardrail.Violation{Reason: v.Message}})
		}
		emit(ErrorEvent{Err: v})
	}
}

// respondStreaming drains a Streamer, emitting TextDeltaEvent for every
// incremental fragment, and returns the final assembled Response once the
// transport signals completion.
func (a *Agent) respondStreaming(ctx context.Context, req *model.Request, emit stream.Emitter[Event]) (*model.Response, error) {
	req.Stream = true
	streamer, err := a.responder.RespondStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var toolCalls []model.ToolCall
	for {
		chunk, err := streamer.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("engine: stream ended before a response_completed chunk")
			}
			return nil, err
		}
		switch chunk.Type {
		case model.ChunkTypeTextDelta:
			if chunk.TextDelta != "" {
				emit(TextDeltaEvent{Chunk: chunk.TextDelta})
			}
		case model.ChunkTypeToolCall:
			if chunk.ToolCall != nil {
				toolCalls = append(toolCalls, *chunk.ToolCall)
			}
		case model.ChunkTypeResponseCompleted:
			resp := chunk.Response
			if resp == nil {
				resp = &model.Response{}
			}
			resp.ToolCalls = append(resp.ToolCalls, toolCalls...)
			return resp, nil
		case model.ChunkTypeError:
			return nil, chunk.Err
		}
	}
}
