package engine

import (
	"context"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/guardrail"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// finalize runs on natural loop exit: output guardrails, then (if
// configured) structured-output parsing, producing Success or a terminal
// Error.
func (a *Agent) finalize(ctx context.Context, cctx *convctx.Context, resp *model.Response, executions []tools.ToolExecution, turn int) Result {
	outputText := resp.OutputText()

	if v := guardrail.RunOutput(ctx, a.outputGuardrails, outputText); v != nil {
		return a.fail(ctx, cctx, ErrorGuardrailOutputViolation, v.Reason, nil)
	}

	var parsed any
	if a.outputSchema != nil {
		p, err := a.outputSchema.Parse(outputText)
		if err != nil {
			return a.fail(ctx, cctx, ErrorParsingFailed, "structured output parse failed", err)
		}
		parsed = p
	}

	return Success{
		Output:         outputText,
		Parsed:         parsed,
		FinalResponse:  resp,
		History:        cctx.History(),
		ToolExecutions: executions,
		TurnsUsed:      turn,
	}
}
