package convctx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

func TestContext_AddMessageAndHistory(t *testing.T) {
	c := New()
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hi"}}})
	c.AddToolResult("echo", tools.Success("call-1", "hi"))

	hist := c.History()
	require.Len(t, hist, 2)
	_, ok := hist[0].(MessageItem)
	require.True(t, ok)
	tr, ok := hist[1].(ToolResultItem)
	require.True(t, ok)
	require.Equal(t, tools.Ident("echo"), tr.ToolName)
}

func TestContext_ConcatenatedUserText(t *testing.T) {
	c := New()
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hello "}}})
	c.AddMessage(model.Message{Role: model.RoleAssistant, Content: []model.Content{model.TextContent{Text: "ignored"}}})
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "world"}}})

	require.Equal(t, "hello world", c.ConcatenatedUserText())
}

func TestContext_StateRoundTrip(t *testing.T) {
	c := New()
	c.SetState("k", 42)
	v, ok := c.GetState("k")
	require.True(t, ok)
	require.Equal(t, 42, v)

	snap := c.StateSnapshot()
	snap["k"] = 99
	v, _ = c.GetState("k")
	require.Equal(t, 42, v, "snapshot must not alias the live state map")
}

func TestContext_EnsureTraceIDsIsIdempotent(t *testing.T) {
	c := New()
	c.EnsureTraceIDs()
	trace1, span1, req1 := c.ParentTraceID(), c.ParentSpanID(), c.RequestID()
	require.NotEmpty(t, trace1)
	require.NotEmpty(t, span1)
	require.NotEmpty(t, req1)

	c.EnsureTraceIDs()
	require.Equal(t, trace1, c.ParentTraceID())
	require.Equal(t, span1, c.ParentSpanID())
	require.Equal(t, req1, c.RequestID())
}

func TestContext_CopyIsIndependent(t *testing.T) {
	c := New()
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hi"}}})
	c.SetState("k", "v")
	c.IncrementTurn()

	cp := c.Copy()
	cp.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "more"}}})
	cp.SetState("k", "changed")

	require.Len(t, c.History(), 1)
	require.Len(t, cp.History(), 2)
	v, _ := c.GetState("k")
	require.Equal(t, "v", v)
	require.Equal(t, c.TurnCount(), cp.TurnCount())
}

func TestContext_ForkResetsTurnAndSpan(t *testing.T) {
	c := New()
	c.EnsureTraceIDs()
	c.IncrementTurn()
	c.IncrementTurn()

	child := c.Fork("child-span")
	require.Equal(t, 0, child.TurnCount())
	require.Equal(t, "child-span", child.ParentSpanID())
	require.Equal(t, c.ParentTraceID(), child.ParentTraceID())
	require.NotEqual(t, c.RequestID(), child.RequestID())
}

func TestContext_MarshalUnmarshalRoundTrip(t *testing.T) {
	c := New()
	c.EnsureTraceIDs()
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: "hi"}}})
	c.AddToolResult("echo", tools.Success("call-1", "hi"))
	c.AddInput(ReferenceItem{Key: "doc", Value: "ref-1"})
	c.SetState("k", "v")

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := &Context{}
	require.NoError(t, json.Unmarshal(data, restored))

	require.Equal(t, c.ParentTraceID(), restored.ParentTraceID())
	require.Len(t, restored.History(), 3)
	_, ok := restored.History()[2].(ReferenceItem)
	require.True(t, ok)
}
