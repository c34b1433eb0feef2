package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type echoParams struct {
	Text string `json:"text"`
}

func echoTool() *Tool {
	return &Tool{
		Name:        "echo",
		Description: "Echoes its input text back.",
		Decode: func(raw json.RawMessage) (any, error) {
			var p echoParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			return p, nil
		},
		Invoke: func(_ context.Context, meta CallMeta, params any) (ToolCallOutput, error) {
			p := params.(echoParams)
			return Success(meta.CallID, p.Text), nil
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	tool, ok := r.Lookup("echo")
	require.True(t, ok)
	require.Equal(t, Ident("echo"), tool.Name)
	require.True(t, r.Has("echo"))
	require.False(t, r.Has("missing"))
	require.Len(t, r.List(), 1)
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	err := r.Register(echoTool())
	require.Error(t, err)
}

func TestRegistry_RejectsUnnamedTool(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(&Tool{}))
}

func TestDispatcher_Dispatch_Success(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	d := NewDispatcher(r)

	exec, err := d.Dispatch(context.Background(), CallMeta{CallID: "call-1"}, "echo", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	require.Equal(t, "hi", exec.Output.Text)
	require.False(t, exec.Output.IsError)
	require.Equal(t, "call-1", exec.Output.CallID)
}

func TestDispatcher_Dispatch_UnknownTool(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	exec, err := d.Dispatch(context.Background(), CallMeta{CallID: "call-1"}, "missing", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.True(t, exec.Output.IsError)
}

func TestDispatcher_Dispatch_DecodeFailure(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	d := NewDispatcher(r)

	exec, err := d.Dispatch(context.Background(), CallMeta{CallID: "call-1"}, "echo", json.RawMessage(`not json`))
	require.NoError(t, err)
	require.True(t, exec.Output.IsError)
}

func TestDispatcher_Dispatch_InvokeFailure(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Tool{
		Name: "boom",
		Decode: func(raw json.RawMessage) (any, error) {
			return nil, nil
		},
		Invoke: func(_ context.Context, _ CallMeta, _ any) (ToolCallOutput, error) {
			return ToolCallOutput{}, errors.New("boom")
		},
	}))
	d := NewDispatcher(r)

	exec, err := d.Dispatch(context.Background(), CallMeta{CallID: "call-1"}, "boom", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.True(t, exec.Output.IsError)
}

func TestDispatcher_Dispatch_CancelledContext(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, CallMeta{CallID: "call-1"}, "echo", json.RawMessage(`{}`))
	require.Error(t, err)
}
