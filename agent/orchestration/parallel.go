package orchestration

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/engine"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// BranchResult is one fan-out branch's outcome, annotated with
// success/error so the synthesizer receives a best-effort collection even
// when some branches failed.
type BranchResult struct {
	AgentIndex int
	Result     engine.Result
	Err        error
}

// ParallelAgents fans a query out to N agents concurrently, waits for every
// branch to finish (a failing branch never cancels its siblings), then
// feeds the collected outputs to a synthesizer agent as a single user
// message.
type ParallelAgents struct {
	agents []*engine.Agent
}

// NewParallelAgents builds a ParallelAgents over agents.
func NewParallelAgents(agents ...*engine.Agent) *ParallelAgents {
	return &ParallelAgents{agents: agents}
}

// RunAndSynthesize creates an independent context copy per agent, runs
// every agent's Interact concurrently, and feeds the resulting branch
// outputs into synthesizer for a final summary. Note: plain errgroup.Group
// (not WithContext) is used deliberately so a branch error never cancels
// its siblings — every branch always runs to completion.
func (p *ParallelAgents) RunAndSynthesize(ctx context.Context, query string, synthesizer *engine.Agent) (engine.Result, []BranchResult) {
	branches := make([]BranchResult, len(p.agents))

	var g errgroup.Group
	for i, a := range p.agents {
		i, a := i, a
		g.Go(func() error {
			cctx := convctx.New()
			cctx.AddMessage(model.Message{
				Role:    model.RoleUser,
				Content: []model.Content{model.TextContent{Text: query}},
			})
			result := a.Interact(ctx, cctx)
			branches[i] = BranchResult{AgentIndex: i, Result: result}
			if errResult, ok := result.(*engine.Error); ok {
				branches[i].Err = errResult
			}
			return nil
		})
	}
	_ = g.Wait() // errors are recorded per-branch above, never aggregated

	var sb strings.Builder
	sb.WriteString("Synthesize a single answer from the following branch outputs.\n\n")
	for _, b := range branches {
		name := p.agents[b.AgentIndex].Name()
		if b.Err != nil {
			fmt.Fprintf(&sb, "Branch %q: failed (%v)\n", name, b.Err)
			continue
		}
		if success, ok := b.Result.(engine.Success); ok {
			fmt.Fprintf(&sb, "Branch %q:\n%s\n\n", name, success.Output)
		}
	}

	synthCtx := convctx.New()
	synthCtx.AddMessage(model.Message{
		Role:    model.RoleUser,
		Content: []model.Content{model.TextContent{Text: sb.String()}},
	})
	return synthesizer.Interact(ctx, synthCtx), branches
}
