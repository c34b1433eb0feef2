package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

var errBoom = errors.New("boom")

type stubMessagesClient struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error

	stream *ssestream.Stream[sdk.MessageStreamEventUnion]
}

func (s *stubMessagesClient) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubMessagesClient) NewStreaming(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion] {
	s.lastParams = body
	if s.stream == nil {
		dec := &noopDecoder{}
		s.stream = ssestream.NewStream[sdk.MessageStreamEventUnion](dec, nil)
	}
	return s.stream
}

type noopDecoder struct{}

func (n *noopDecoder) Event() ssestream.Event { return ssestream.Event{} }
func (n *noopDecoder) Next() bool             { return false }
func (n *noopDecoder) Close() error           { return nil }
func (n *noopDecoder) Err() error             { return nil }

func TestRespond_TextOnly(t *testing.T) {
	stub := &stubMessagesClient{}
	cl, err := New(stub, Options{MaxTokens: 128})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{
		Model: "claude-3.5-sonnet",
		Input: []*model.Message{
			{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hello"}}},
		},
	}

	stub.resp = &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "world"},
		},
		StopReason: sdk.StopReasonEndTurn,
		Usage: sdk.Usage{
			InputTokens:  10,
			OutputTokens: 5,
		},
	}

	resp, err := cl.Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(resp.Output) != 1 {
		t.Fatalf("expected 1 output message, got %d", len(resp.Output))
	}
	if got := resp.Output[0].Content[0].(model.TextContent).Text; got != "world" {
		t.Fatalf("unexpected text %q", got)
	}
	if resp.StopReason != string(sdk.StopReasonEndTurn) {
		t.Fatalf("unexpected stop reason %q", resp.StopReason)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 || resp.Usage.TotalTokens != 15 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestRespond_ToolUse(t *testing.T) {
	stub := &stubMessagesClient{}
	cl, err := New(stub, Options{MaxTokens: 128})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{
		Model: "claude-3.5-sonnet",
		Input: []*model.Message{
			{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "call tool"}}},
		},
		Tools: []*model.ToolDefinition{
			{Name: "test_tool", Description: "test tool", InputSchema: json.RawMessage(`{"type":"object"}`)},
		},
	}

	toolParams, err := encodeTools(req.Tools)
	if err != nil {
		t.Fatalf("encodeTools: %v", err)
	}
	if len(toolParams) != 1 {
		t.Fatalf("expected 1 encoded tool, got %d", len(toolParams))
	}

	stub.resp = &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "tool_use", Name: "test_tool", ID: "tool-1", Input: json.RawMessage(`{"x":1}`)},
		},
		StopReason: sdk.StopReasonToolUse,
	}

	resp, err := cl.Respond(context.Background(), req)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.Name != "test_tool" {
		t.Fatalf("unexpected tool name %q", call.Name)
	}
	if call.ID != "tool-1" {
		t.Fatalf("unexpected tool ID %q", call.ID)
	}
	if string(call.Arguments) != `{"x":1}` {
		t.Fatalf("unexpected arguments %s", string(call.Arguments))
	}
}

func TestRespond_TransportError(t *testing.T) {
	stub := &stubMessagesClient{err: errBoom}
	cl, err := New(stub, Options{MaxTokens: 64})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := &model.Request{
		Model: "claude-3.5-sonnet",
		Input: []*model.Message{
			{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hi"}}},
		},
	}

	if _, err := cl.Respond(context.Background(), req); err == nil {
		t.Fatalf("expected an error")
	}
}
