package runstate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

func TestApproveToolCall_SetsResolvedDecision(t *testing.T) {
	s := &RunState{}
	s.ApproveToolCall(tools.Success("call-1", "ok"))
	require.True(t, s.Decision.Resolved)
	require.True(t, s.Decision.Approved)
	require.Equal(t, "ok", s.Decision.Output.Text)
}

func TestRejectToolCall_SetsResolvedDecision(t *testing.T) {
	s := &RunState{}
	s.RejectToolCall("not allowed")
	require.True(t, s.Decision.Resolved)
	require.False(t, s.Decision.Approved)
	require.Equal(t, "not allowed", s.Decision.RejectReason)
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	cctx := convctx.New()
	cctx.EnsureTraceIDs()
	cctx.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hi"}}})

	s := &RunState{
		AgentName: "demo.agent",
		Context:   cctx,
		Pending:   PendingCall{ToolName: "search", CallID: "call-1", RawArgs: json.RawMessage(`{"q":"x"}`)},
		Turn:      2,
	}
	s.ApproveToolCall(tools.ToolCallOutput{})

	data, err := s.Marshal()
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "demo.agent", restored.AgentName)
	require.Equal(t, tools.Ident("search"), restored.Pending.ToolName)
	require.Equal(t, 2, restored.Turn)
	require.True(t, restored.Decision.Approved)
	require.Equal(t, cctx.ParentTraceID(), restored.Context.ParentTraceID())
}

func TestUnmarshal_InvalidJSON(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	require.Error(t, err)
}
