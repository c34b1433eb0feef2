package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	baseagent "github.com/paragon-intelligence/agentle4j-sub007/agent"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/engine"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// scriptedClient replays a fixed sequence of text responses, one per
// Respond call, keyed only by call order (sufficient for router/parallel
// tests, which drive single-turn agents).
type scriptedClient struct {
	texts []string
	calls int
	err   error
}

func (c *scriptedClient) Respond(_ context.Context, _ *model.Request) (*model.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	text := c.texts[c.calls%len(c.texts)]
	c.calls++
	return &model.Response{Output: []model.Message{{
		Role:    model.RoleAssistant,
		Content: []model.Content{model.TextContent{Text: text}},
	}}}, nil
}

func (c *scriptedClient) RespondStream(_ context.Context, _ *model.Request) (model.Streamer, error) {
	return nil, errors.New("not used in this test")
}

func newAgent(t *testing.T, name string, texts ...string) *engine.Agent {
	t.Helper()
	a, err := engine.New(engine.Options{
		Name:      baseagent.Ident(name),
		Responder: &scriptedClient{texts: texts},
	})
	require.NoError(t, err)
	return a
}

func userCtx(text string) *convctx.Context {
	c := convctx.New()
	c.AddMessage(model.Message{Role: model.RoleUser, Content: []model.Content{model.TextContent{Text: text}}})
	return c
}

func TestRouter_ClassifyPicksMatchingRoute(t *testing.T) {
	billing := newAgent(t, "billing", "billing answer")
	support := newAgent(t, "support", "support answer")
	classifier := newAgent(t, "classifier", "support")

	router := NewRouter(classifier, []RouteDescriptor{
		{Target: billing, Trigger: "billing questions"},
		{Target: support, Trigger: "support questions"},
	}, nil)

	chosen, ok := router.Classify(context.Background(), "my account is broken")
	require.True(t, ok)
	require.Equal(t, support.Name(), chosen.Name())
}

func TestRouter_ClassifyFallsBackWhenNoMatch(t *testing.T) {
	billing := newAgent(t, "billing", "billing answer")
	fallback := newAgent(t, "fallback", "fallback answer")
	classifier := newAgent(t, "classifier", "nonexistent_destination")

	router := NewRouter(classifier, []RouteDescriptor{
		{Target: billing, Trigger: "billing questions"},
	}, fallback)

	chosen, ok := router.Classify(context.Background(), "something unrelated")
	require.True(t, ok)
	require.Equal(t, fallback.Name(), chosen.Name())
}

func TestRouter_ClassifyNoMatchNoFallbackReturnsFalse(t *testing.T) {
	billing := newAgent(t, "billing", "billing answer")
	classifier := newAgent(t, "classifier", "nonexistent_destination")

	router := NewRouter(classifier, []RouteDescriptor{
		{Target: billing, Trigger: "billing questions"},
	}, nil)

	_, ok := router.Classify(context.Background(), "something unrelated")
	require.False(t, ok)
}

func TestRouter_Route_RunsSelectedTarget(t *testing.T) {
	billing := newAgent(t, "billing", "billing answer")
	classifier := newAgent(t, "classifier", "billing")

	router := NewRouter(classifier, []RouteDescriptor{
		{Target: billing, Trigger: "billing questions"},
	}, nil)

	result := router.Route(context.Background(), userCtx("what's my balance"))
	success, ok := result.(engine.Success)
	require.True(t, ok)
	require.Equal(t, "billing answer", success.Output)
}

func TestRouter_TargetNames(t *testing.T) {
	billing := newAgent(t, "billing", "billing answer")
	support := newAgent(t, "support", "support answer")
	classifier := newAgent(t, "classifier", "billing")

	router := NewRouter(classifier, []RouteDescriptor{
		{Target: billing, Trigger: "billing"},
		{Target: support, Trigger: "support"},
	}, nil)

	require.ElementsMatch(t, []baseagent.Ident{"billing", "support"}, router.TargetNames())
}

func TestParallelAgents_RunAndSynthesize(t *testing.T) {
	a1 := newAgent(t, "a1", "branch one answer")
	a2 := newAgent(t, "a2", "branch two answer")
	synthesizer := newAgent(t, "synth", "synthesized answer")

	p := NewParallelAgents(a1, a2)
	result, branches := p.RunAndSynthesize(context.Background(), "tell me about X", synthesizer)

	require.Len(t, branches, 2)
	for _, b := range branches {
		require.NoError(t, b.Err)
	}
	success, ok := result.(engine.Success)
	require.True(t, ok)
	require.Equal(t, "synthesized answer", success.Output)
}
