package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/toolerrors"
)

// ToolExecution records a single completed tool invocation for post-hoc
// inspection and telemetry: the call that was made, the output it produced,
// and how long it took.
type ToolExecution struct {
	ToolName          Ident
	CallID            string
	RawArguments      json.RawMessage
	Output            ToolCallOutput
	WallClockDuration time.Duration
}

// FailurePhase classifies where a tool execution failed, for
// ExecutionFailedError.
type FailurePhase string

const (
	// PhaseParse indicates the raw JSON arguments could not be decoded into
	// the tool's parameter record.
	PhaseParse FailurePhase = "parse"
	// PhaseInvoke indicates the tool's Invoke closure returned an error.
	PhaseInvoke FailurePhase = "invoke"
)

// ExecutionFailedError reports a tool-level failure. Per the error handling
// design, this error is recovered locally: the dispatcher still returns a
// ToolExecution (with an error ToolCallOutput) rather than propagating a Go
// error to the caller, so the surrounding loop never fails on a tool error.
// Dispatch never returns this type as its error: when the registry has no
// tool by the called name, it formats one (with PhaseInvoke) into the
// ToolExecution's error Output; decode and invoke failures are formatted into
// that Output through toolerrors instead (see Dispatch doc).
type ExecutionFailedError struct {
	Phase    FailurePhase
	ToolName Ident
	CallID   string
	RawArgs  json.RawMessage
	Cause    error
}

func (e *ExecutionFailedError) Error() string {
	return fmt.Sprintf("tools: %s failed for %q (call %s): %v", e.Phase, e.ToolName, e.CallID, e.Cause)
}

func (e *ExecutionFailedError) Unwrap() error { return e.Cause }

// Dispatcher resolves and executes tool calls against a Registry.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher builds a Dispatcher bound to registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch looks up name, decodes rawArgs, invokes the tool, and wraps the
// result in a ToolExecution. It never returns a Go error for a missing tool
// or a tool-level failure — those are folded into the ToolExecution's Output
// as an error string so the model can recover on its next turn, per the
// propagation policy in the error handling design. Dispatch only returns a
// non-nil error when ctx is canceled before invocation begins.
func (d *Dispatcher) Dispatch(ctx context.Context, meta CallMeta, name Ident, rawArgs json.RawMessage) (ToolExecution, error) {
	if err := ctx.Err(); err != nil {
		return ToolExecution{}, err
	}

	exec := ToolExecution{ToolName: name, CallID: meta.CallID, RawArguments: rawArgs}

	tool, ok := d.registry.Lookup(name)
	if !ok {
		fail := &ExecutionFailedError{Phase: PhaseInvoke, ToolName: name, CallID: meta.CallID, RawArgs: rawArgs,
			Cause: fmt.Errorf("no tool registered with name %q", name)}
		exec.Output = Failure(meta.CallID, fail.Error())
		return exec, nil
	}

	start := time.Now()

	params, err := decode(tool, rawArgs)
	if err != nil {
		fail := toolerrors.NewWithCause(fmt.Sprintf("invalid arguments for tool %q", name), err)
		exec.Output = Failure(meta.CallID, fail.Error())
		exec.WallClockDuration = time.Since(start)
		return exec, nil
	}

	out, err := tool.Invoke(ctx, meta, params)
	exec.WallClockDuration = time.Since(start)
	if err != nil {
		fail := toolerrors.NewWithCause(fmt.Sprintf("tool %q failed", name), err)
		exec.Output = Failure(meta.CallID, fail.Error())
		return exec, nil
	}
	if out.CallID == "" {
		out.CallID = meta.CallID
	}
	exec.Output = out
	return exec, nil
}

func decode(tool *Tool, rawArgs json.RawMessage) (any, error) {
	if tool.Decode == nil {
		return AnyJSONCodec.FromJSON(rawArgs)
	}
	return tool.Decode(rawArgs)
}
