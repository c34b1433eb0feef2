// Package orchestration implements the orchestration composites built on
// top of the engine: Router (classify-then-route) and ParallelAgents
// (fan-out-then-synthesize). Handoff itself lives in engine, since it is a
// step inside a single agent's loop rather than a composite over agents.
package orchestration

import (
	"context"
	"fmt"
	"strings"

	baseagent "github.com/paragon-intelligence/agentle4j-sub007/agent"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/engine"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// RouteDescriptor pairs a candidate target agent with a human-readable
// description of when the classifier should select it.
type RouteDescriptor struct {
	Target  *engine.Agent
	Trigger string
}

// Router classifies user input against a set of RouteDescriptors using a
// dedicated classifier agent, then optionally runs the selected target.
type Router struct {
	classifier *engine.Agent
	routes     []RouteDescriptor
	fallback   *engine.Agent
}

// NewRouter builds a Router. fallback is used when classification does not
// match any route; it may be nil, in which case Classify returns false and
// Route returns an Error.
func NewRouter(classifier *engine.Agent, routes []RouteDescriptor, fallback *engine.Agent) *Router {
	return &Router{classifier: classifier, routes: routes, fallback: fallback}
}

// Classify asks the classifier agent to choose among the configured routes
// for input, without executing the chosen target. It returns false if
// classification did not match any route and no fallback is configured.
func (r *Router) Classify(ctx context.Context, input string) (*engine.Agent, bool) {
	var sb strings.Builder
	sb.WriteString("Choose exactly one destination for the input below. Respond with only the destination name.\n\nDestinations:\n")
	for _, rd := range r.routes {
		fmt.Fprintf(&sb, "- %s: %s\n", rd.Target.Name(), rd.Trigger)
	}
	sb.WriteString("\nInput:\n")
	sb.WriteString(input)

	cctx := convctx.New()
	cctx.AddMessage(model.Message{
		Role:    model.RoleUser,
		Content: []model.Content{model.TextContent{Text: sb.String()}},
	})

	result := r.classifier.Interact(ctx, cctx)
	success, ok := result.(engine.Success)
	if !ok {
		if r.fallback != nil {
			return r.fallback, true
		}
		return nil, false
	}

	chosen := strings.TrimSpace(success.Output)
	for _, rd := range r.routes {
		if string(rd.Target.Name()) == chosen || strings.EqualFold(string(rd.Target.Name()), chosen) {
			return rd.Target, true
		}
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}

// Route classifies cctx's concatenated user text and, on a match, runs the
// selected target's Interact against cctx.
func (r *Router) Route(ctx context.Context, cctx *convctx.Context) engine.Result {
	target, ok := r.Classify(ctx, cctx.ConcatenatedUserText())
	if !ok {
		return &engine.Error{
			Kind:    engine.ErrorHandoffFailed,
			Message: "router: no route matched and no fallback configured",
			History: cctx.History(),
		}
	}
	return target.Interact(ctx, cctx)
}

// TargetNames returns the configured route target names, for building tool
// catalogues or diagnostics.
func (r *Router) TargetNames() []baseagent.Ident {
	out := make([]baseagent.Ident, 0, len(r.routes))
	for _, rd := range r.routes {
		out = append(out, rd.Target.Name())
	}
	return out
}
