// Package openai provides a model.Client implementation backed by the OpenAI
// Chat Completions API. It translates engine requests into ChatCompletion
// calls using github.com/sashabaranov/go-openai and maps responses back into
// the generic model package's provider-agnostic shapes.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// ChatClient captures the subset of the go-openai client used by the
// adapter. It is satisfied by *openai.Client, so callers can pass either a
// real client or a mock in tests.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Options configures the OpenAI adapter.
type Options struct {
	Client       ChatClient
	DefaultModel string
}

// Client implements model.Client via the OpenAI Chat Completions API.
type Client struct {
	chat  ChatClient
	model string
}

// New builds an OpenAI-backed model client from the provided options.
func New(opts Options) (*Client, error) {
	if opts.Client == nil {
		return nil, errors.New("openai: client is required")
	}
	modelID := strings.TrimSpace(opts.DefaultModel)
	if modelID == "" {
		return nil, errors.New("openai: default model is required")
	}
	return &Client{chat: opts.Client, model: modelID}, nil
}

// NewFromAPIKey constructs a client using the default go-openai HTTP client.
func NewFromAPIKey(apiKey, defaultModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	client := openai.NewClient(apiKey)
	return New(Options{Client: client, DefaultModel: defaultModel})
}

// Respond renders a non-streaming chat completion using the configured
// OpenAI client.
func (c *Client) Respond(ctx context.Context, req *model.Request) (*model.Response, error) {
	request, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}
	response, err := c.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	return translateResponse(response), nil
}

// RespondStream opens a streaming chat completion and adapts the SDK's
// incremental deltas into model.Chunks.
func (c *Client) RespondStream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	request, err := c.buildRequest(req)
	if err != nil {
		return nil, err
	}
	request.Stream = true
	sdkStream, err := c.chat.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion stream: %w", err)
	}
	return newOpenAIStreamer(sdkStream), nil
}

func (c *Client) buildRequest(req *model.Request) (openai.ChatCompletionRequest, error) {
	if len(req.Input) == 0 {
		return openai.ChatCompletionRequest{}, errors.New("openai: input messages are required")
	}
	modelID := strings.TrimSpace(req.Model)
	if modelID == "" {
		modelID = c.model
	}
	messages, err := encodeMessages(req.Instructions, req.Input)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	tools, err := encodeTools(req.Tools)
	if err != nil {
		return openai.ChatCompletionRequest{}, err
	}
	request := openai.ChatCompletionRequest{
		Model:     modelID,
		Messages:  messages,
		Tools:     tools,
		MaxTokens: req.MaxOutputTokens,
	}
	if req.Temperature != nil {
		request.Temperature = float32(*req.Temperature)
	}
	if req.TopP != nil {
		request.TopP = float32(*req.TopP)
	}
	if req.ToolChoice != nil {
		tc, err := encodeToolChoice(req.ToolChoice)
		if err != nil {
			return openai.ChatCompletionRequest{}, err
		}
		request.ToolChoice = tc
	}
	return request, nil
}

func encodeMessages(instructions string, msgs []*model.Message) ([]openai.ChatCompletionMessage, error) {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if instructions != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: instructions})
	}
	for _, m := range msgs {
		if m == nil {
			continue
		}
		role, err := encodeRole(m.Role)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for _, c := range m.Content {
			if t, ok := c.(model.TextContent); ok {
				sb.WriteString(t.Text)
			}
		}
		if sb.Len() == 0 {
			continue
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: sb.String()})
	}
	if len(out) == 0 {
		return nil, errors.New("openai: at least one message with text content is required")
	}
	return out, nil
}

func encodeRole(role model.ConversationRole) (string, error) {
	switch role {
	case model.RoleUser:
		return openai.ChatMessageRoleUser, nil
	case model.RoleAssistant:
		return openai.ChatMessageRoleAssistant, nil
	case model.RoleDeveloper:
		return openai.ChatMessageRoleSystem, nil
	default:
		return "", fmt.Errorf("openai: unsupported message role %q", role)
	}
}

func encodeTools(defs []*model.ToolDefinition) ([]openai.Tool, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		params, err := json.Marshal(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("openai: marshal tool %q schema: %w", def.Name, err)
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return out, nil
}

func encodeToolChoice(choice *model.ToolChoice) (any, error) {
	switch choice.Mode {
	case "", model.ToolChoiceAuto:
		return "auto", nil
	case model.ToolChoiceNone:
		return "none", nil
	case model.ToolChoiceTool:
		if choice.Name == "" {
			return nil, fmt.Errorf("openai: tool choice mode %q requires a tool name", choice.Mode)
		}
		return openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: choice.Name},
		}, nil
	default:
		return nil, fmt.Errorf("openai: unsupported tool choice mode %q", choice.Mode)
	}
}

func translateResponse(resp openai.ChatCompletionResponse) *model.Response {
	out := &model.Response{}
	for _, choice := range resp.Choices {
		msg := choice.Message
		if strings.TrimSpace(msg.Content) != "" {
			out.Output = append(out.Output, model.Message{
				Role:    model.RoleAssistant,
				Content: []model.Content{model.TextContent{Text: msg.Content}},
			})
		}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: decodeToolArguments(call.Function.Arguments),
			})
		}
	}
	out.Usage = model.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if len(resp.Choices) > 0 {
		out.StopReason = string(resp.Choices[0].FinishReason)
	}
	return out
}

func decodeToolArguments(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = "{}"
	}
	return json.RawMessage(trimmed)
}
