package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// detectHandoff reports the first tool call, in declaration order, whose
// name matches a configured Handoff and has no colliding real tool
// registered. A real tool with the same name always takes precedence, per
// the edge case in the loop algorithm.
func (a *Agent) detectHandoff(calls []model.ToolCall) (Handoff, model.ToolCall, bool) {
	for _, call := range calls {
		if _, isRealTool := a.tools.Lookup(tools.Ident(call.Name)); isRealTool {
			continue
		}
		if h, ok := a.handoffByToolName(tools.Ident(call.Name)); ok {
			return h, call, true
		}
	}
	return Handoff{}, model.ToolCall{}, false
}

// handoffArgs is the decoded payload of a handoff-synthetic tool call.
type handoffArgs struct {
	Message string `json:"message"`
}

// handoffMessage decodes the model-supplied briefing text from a handoff
// call's raw arguments. A decode failure or empty message falls back to a
// placeholder so a malformed call never blocks the transfer itself.
func handoffMessage(h Handoff, call model.ToolCall) string {
	var args handoffArgs
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err == nil && args.Message != "" {
			return args.Message
		}
	}
	return fmt.Sprintf("[handed off via %q]", h.Name)
}

// handoff forks cctx for the target agent, appends the handoff's message
// payload as a user message after the inherited history, and runs the
// target's Interact
// synchronously on this thread. The parent's own interact terminates with
// HandoffOutcome; any terminal error from the child surfaces as
// ErrorHandoffFailed.
func (a *Agent) handoff(ctx context.Context, cctx *convctx.Context, h Handoff, call model.ToolCall) Result {
	parentHistory := cctx.History()

	child := cctx.Fork(call.ID)
	child.AddMessage(model.Message{
		Role:    model.RoleUser,
		Content: []model.Content{model.TextContent{Text: handoffMessage(h, call)}},
	})

	inner := h.Target.Interact(ctx, child)
	if innerErr, ok := inner.(*Error); ok {
		return a.fail(ctx, cctx, ErrorHandoffFailed,
			fmt.Sprintf("handoff to %q failed: %s", h.Target.Name(), innerErr.Message), innerErr)
	}

	return HandoffOutcome{TargetAgent: h.Target.Name(), Inner: inner, History: parentHistory}
}
