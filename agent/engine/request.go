package engine

import (
	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// buildRequest assembles the request payload for one turn: the agent's
// model and instructions, the trimmed history translated into messages, and
// the tool catalogue (real tools plus handoff-synthetic tools).
func (a *Agent) buildRequest(history []convctx.InputItem) *model.Request {
	return &model.Request{
		Model:        a.model,
		Instructions: a.instructions,
		Input:        inputItemsToMessages(history),
		Tools:        a.toolDefinitions(),
		Temperature:  a.temperature,
		Stream:       false,
	}
}

// inputItemsToMessages flattens a history slice into the provider-facing
// message list, folding tool results into user messages so the model sees
// them as ordinary turn input.
func inputItemsToMessages(history []convctx.InputItem) []*model.Message {
	out := make([]*model.Message, 0, len(history))
	for _, item := range history {
		switch v := item.(type) {
		case convctx.MessageItem:
			msg := v.Message
			out = append(out, &msg)
		case convctx.ToolResultItem:
			out = append(out, &model.Message{
				Role:    model.RoleUser,
				Content: []model.Content{model.TextContent{Text: v.Output.Text}},
			})
		case convctx.ReferenceItem:
			// References are carried in history for state inspection but
			// are not forwarded to the model.
		}
	}
	return out
}

// handoffMessageSchema is the input schema for every handoff-synthetic tool:
// a single "message" string the model supplies to brief the target agent,
// forwarded verbatim as a user message appended to the child's forked
// history (see handoff.go).
var handoffMessageSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"message": map[string]any{
			"type":        "string",
			"description": "What to tell the agent taking over, in the user's own words.",
		},
	},
	"required": []string{"message"},
}

// toolDefinitions renders the real tool catalogue and handoff-synthetic
// tools into the wire ToolDefinition shape. Handoff-synthetic tools take a
// single "message" parameter the model uses to brief the target agent.
func (a *Agent) toolDefinitions() []*model.ToolDefinition {
	registered := a.tools.List()
	out := make([]*model.ToolDefinition, 0, len(registered)+len(a.handoffs))
	seen := make(map[tools.Ident]struct{}, len(registered))
	for _, t := range registered {
		out = append(out, &model.ToolDefinition{
			Name:        string(t.Name),
			Description: t.Description,
			InputSchema: t.ParameterSchema,
		})
		seen[t.Name] = struct{}{}
	}
	for _, h := range a.handoffs {
		if _, collides := seen[tools.Ident(h.Name)]; collides {
			// A real tool with this name wins; see handoffByToolName.
			continue
		}
		out = append(out, &model.ToolDefinition{
			Name:        h.Name,
			Description: h.Description,
			InputSchema: handoffMessageSchema,
		})
	}
	return out
}
