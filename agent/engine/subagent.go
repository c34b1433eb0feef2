package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// subAgentInput is the parameter record for a tool built by AsTool: the
// text the parent wants the peer agent to act on.
type subAgentInput struct {
	Query string `json:"query"`
}

// InheritedState selects keys copied from the parent's context state map
// into the sub-agent's fresh context when it runs as a tool.
type InheritedState []string

// AsTool wraps target as a catalogue Tool that performs a full Interact on
// target each time it is invoked, returning its output text as the tool
// result. Unlike a Handoff, control returns to the parent's loop: the
// parent keeps running after the sub-agent's output is appended to history.
//
// By default the sub-agent starts from a fresh context. inherit selects
// keys to copy from the parent's context state map, if any.
func AsTool(name, description string, target *Agent, inherit InheritedState) *tools.Tool {
	return &tools.Tool{
		Name:        tools.Ident(name),
		Description: description,
		ParameterSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
			"required": []string{"query"},
		},
		Decode: func(raw json.RawMessage) (any, error) {
			var in subAgentInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return nil, err
			}
			return in, nil
		},
		Invoke: func(ctx context.Context, meta tools.CallMeta, params any) (tools.ToolCallOutput, error) {
			in, ok := params.(subAgentInput)
			if !ok {
				return tools.ToolCallOutput{}, fmt.Errorf("sub-agent tool: unexpected parameter type %T", params)
			}

			child := convctx.New()
			for _, key := range inherit {
				if v, ok := meta.ParentState[key]; ok {
					child.SetState(key, v)
				}
			}
			child.AddMessage(model.Message{
				Role:    model.RoleUser,
				Content: []model.Content{model.TextContent{Text: in.Query}},
			})

			result := target.Interact(ctx, child)
			success, ok := result.(Success)
			if !ok {
				return tools.Failure(meta.CallID, subAgentFailureText(result)), nil
			}
			return tools.Success(meta.CallID, success.Output), nil
		},
	}
}

func subAgentFailureText(result Result) string {
	switch v := result.(type) {
	case *Error:
		return fmt.Sprintf("sub-agent failed: %s", v.Message)
	case HandoffOutcome:
		return "sub-agent performed a handoff instead of returning output directly"
	case Paused:
		return "sub-agent paused on a confirmation-gated tool call"
	default:
		return "sub-agent returned an unexpected result"
	}
}
