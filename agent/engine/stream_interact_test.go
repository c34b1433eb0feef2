package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// fakeStreamer replays a fixed sequence of chunks.
type fakeStreamer struct {
	chunks []model.Chunk
	i      int
}

func (f *fakeStreamer) Recv() (model.Chunk, error) {
	if f.i >= len(f.chunks) {
		return model.Chunk{}, errUnexpectedStreamEnd
	}
	c := f.chunks[f.i]
	f.i++
	return c, nil
}

func (f *fakeStreamer) Close() error { return nil }

var errUnexpectedStreamEnd = &streamTestError{"fakeStreamer: exhausted without response_completed"}

type streamTestError struct{ msg string }

func (e *streamTestError) Error() string { return e.msg }

// streamingClient drives InteractStream: Respond is unused (streaming-only
// agents never call it), RespondStream hands back one scripted streamer per
// call, in order.
type streamingClient struct {
	streamers []*fakeStreamer
	calls     int
}

func (c *streamingClient) Respond(_ context.Context, _ *model.Request) (*model.Response, error) {
	return nil, &streamTestError{"streamingClient: non-streaming Respond not used in this test"}
}

func (c *streamingClient) RespondStream(_ context.Context, _ *model.Request) (model.Streamer, error) {
	s := c.streamers[c.calls]
	c.calls++
	return s, nil
}

func textDeltaChunks(text, finalText string) []model.Chunk {
	return []model.Chunk{
		{Type: model.ChunkTypeTextDelta, TextDelta: text},
		{Type: model.ChunkTypeResponseCompleted, Response: &model.Response{
			Output: []model.Message{{
				Role:    model.RoleAssistant,
				Content: []model.Content{model.TextContent{Text: finalText}},
			}},
		}},
	}
}

func drain(t *testing.T, s *AgentStream) []Event {
	t.Helper()
	var events []Event
	for {
		ev, ok := s.Next(context.Background())
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

func TestInteractStream_EmitsDeltasThenComplete(t *testing.T) {
	client := &streamingClient{streamers: []*fakeStreamer{
		{chunks: textDeltaChunks("hel", "hello")},
	}}
	a, err := New(Options{Name: "assistant", Responder: client})
	require.NoError(t, err)

	s := a.InteractStream(context.Background(), userMessage("hi"))
	events := drain(t, s)

	var sawDelta, sawComplete bool
	for _, ev := range events {
		switch v := ev.(type) {
		case TextDeltaEvent:
			sawDelta = true
			require.Equal(t, "hel", v.Chunk)
		case CompleteEvent:
			sawComplete = true
			require.Equal(t, "hello", v.Result.Output)
		}
	}
	require.True(t, sawDelta)
	require.True(t, sawComplete)
}

func TestInteractStream_ToolCallThenComplete(t *testing.T) {
	toolCallChunks := []model.Chunk{
		{Type: model.ChunkTypeToolCall, ToolCall: &model.ToolCall{ID: "call-1", Name: "echo", Arguments: []byte(`{"text":"ping"}`)}},
		{Type: model.ChunkTypeResponseCompleted, Response: &model.Response{}},
	}
	client := &streamingClient{streamers: []*fakeStreamer{
		{chunks: toolCallChunks},
		{chunks: textDeltaChunks("", "done")},
	}}
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(echoTool()))
	a, err := New(Options{Name: "assistant", Responder: client, Tools: registry})
	require.NoError(t, err)

	s := a.InteractStream(context.Background(), userMessage("say ping"))
	events := drain(t, s)

	var sawToolExecuted, sawComplete bool
	for _, ev := range events {
		switch v := ev.(type) {
		case ToolExecutedEvent:
			sawToolExecuted = true
			require.Equal(t, "ping", v.Execution.Output.Text)
		case CompleteEvent:
			sawComplete = true
			require.Equal(t, "done", v.Result.Output)
		}
	}
	require.True(t, sawToolExecuted)
	require.True(t, sawComplete)
}

func TestInteractStream_PendingConfirmationThenDecide(t *testing.T) {
	confirmTool := &tools.Tool{
		Name:                 "dangerous",
		RequiresConfirmation: true,
		Decode:               func(raw json.RawMessage) (any, error) { return nil, nil },
		Invoke: func(_ context.Context, meta tools.CallMeta, _ any) (tools.ToolCallOutput, error) {
			return tools.Success(meta.CallID, "ran"), nil
		},
	}
	registry := tools.NewRegistry()
	require.NoError(t, registry.Register(confirmTool))

	toolCallChunks := []model.Chunk{
		{Type: model.ChunkTypeToolCall, ToolCall: &model.ToolCall{ID: "call-1", Name: "dangerous", Arguments: []byte(`{}`)}},
		{Type: model.ChunkTypeResponseCompleted, Response: &model.Response{}},
	}
	client := &streamingClient{streamers: []*fakeStreamer{
		{chunks: toolCallChunks},
		{chunks: textDeltaChunks("", "finished")},
	}}
	a, err := New(Options{Name: "assistant", Responder: client, Tools: registry})
	require.NoError(t, err)

	s := a.InteractStream(context.Background(), userMessage("do it"))

	var pending ToolCallPendingEvent
	for {
		ev, ok := s.Next(context.Background())
		require.True(t, ok)
		if p, isPending := ev.(ToolCallPendingEvent); isPending {
			pending = p
			break
		}
	}
	pending.Decide(true, tools.ToolCallOutput{}, "")

	rest := drain(t, s)
	var sawComplete bool
	for _, ev := range rest {
		if c, ok := ev.(CompleteEvent); ok {
			sawComplete = true
			require.Equal(t, "finished", c.Result.Output)
		}
	}
	require.True(t, sawComplete)
}
