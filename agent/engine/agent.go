// Package engine implements the Agent Execution Engine: the agentic loop
// that calls the model, extracts tool calls, dispatches or pauses on them,
// detects handoffs, and returns a terminal Result. An Agent is immutable
// configuration; all per-call mutable state lives in a convctx.Context, so
// a single Agent is safe to invoke concurrently from multiple callers.
package engine

import (
	"fmt"

	baseagent "github.com/paragon-intelligence/agentle4j-sub007/agent"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/guardrail"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/telemetry"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/window"
)

// DefaultMaxTurns is used when Options.MaxTurns is zero.
const DefaultMaxTurns = 10

// OutputSchema configures structured-output parsing for an Agent's final
// assistant text. StructuredAgent[T] (see structured.go) builds one from a
// tools.JSONCodec automatically; callers needing custom parsing can
// construct one directly.
type OutputSchema struct {
	// Parse decodes text into the structured output type. A non-nil error
	// surfaces as Error{Kind: ErrorParsingFailed}.
	Parse func(text string) (any, error)
}

// Handoff is a peer-agent reference rendered into the tool catalogue as a
// synthetic tool whose "invocation" is in fact a transfer of control: when
// the model calls it, the parent's interact forks its context, invokes the
// target's interact synchronously, and returns HandoffOutcome.
type Handoff struct {
	// Target is the peer agent control is transferred to.
	Target *Agent
	// Name is the synthetic tool name presented to the model. Must not
	// collide with a real tool name; on collision the real tool wins and
	// the handoff is not triggered.
	Name string
	// Description is presented to the model to decide when to hand off.
	Description string
}

// Options configures a new Agent. Responder and Name are required;
// everything else, Instructions included, has a zero-value-safe default.
type Options struct {
	Name         baseagent.Ident
	Instructions string
	Model        string

	Tools    *tools.Registry
	Handoffs []Handoff

	InputGuardrails  []guardrail.InputGuardrail
	OutputGuardrails []guardrail.OutputGuardrail

	// MaxTurns bounds the agentic loop. Defaults to DefaultMaxTurns.
	MaxTurns int

	// Temperature must be in [0.0, 2.0] when set.
	Temperature *float64

	// OutputSchema, when set, parses the final assistant text into a
	// structured value on natural exit.
	OutputSchema *OutputSchema

	// ContextWindow bounds request history token footprint before every
	// model call. When nil, the full stored history is sent unmodified.
	ContextWindow window.Manager

	// Responder is the transport collaborator. Required.
	Responder model.Client

	// Telemetry broadcasts terminal-error FailureEvents. Optional.
	Telemetry *telemetry.ProcessorRegistry
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Tracer    telemetry.Tracer
}

// Agent is immutable per-call configuration for the agentic loop. Construct
// one with New.
type Agent struct {
	name         baseagent.Ident
	instructions string
	model        string

	tools    *tools.Registry
	handoffs []Handoff

	inputGuardrails  []guardrail.InputGuardrail
	outputGuardrails []guardrail.OutputGuardrail

	maxTurns int

	temperature *float64

	outputSchema *OutputSchema

	contextWindow window.Manager

	responder model.Client

	telemetry *telemetry.ProcessorRegistry
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	tracer    telemetry.Tracer

	dispatcher *tools.Dispatcher
}

// Name returns the agent's configured name.
func (a *Agent) Name() baseagent.Ident { return a.name }

// New validates opts and constructs an Agent.
func New(opts Options) (*Agent, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("engine: Name is required")
	}
	if opts.Responder == nil {
		return nil, fmt.Errorf("engine: Responder is required")
	}
	if opts.Temperature != nil && (*opts.Temperature < 0.0 || *opts.Temperature > 2.0) {
		return nil, fmt.Errorf("engine: Temperature must be in [0.0, 2.0], got %v", *opts.Temperature)
	}
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	registry := opts.Tools
	if registry == nil {
		registry = tools.NewRegistry()
	}
	for _, h := range opts.Handoffs {
		if h.Target == nil {
			return nil, fmt.Errorf("engine: handoff %q has no target", h.Name)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.NewNoopTracer()
	}

	return &Agent{
		name:             opts.Name,
		instructions:     opts.Instructions,
		model:            opts.Model,
		tools:            registry,
		handoffs:         opts.Handoffs,
		inputGuardrails:  opts.InputGuardrails,
		outputGuardrails: opts.OutputGuardrails,
		maxTurns:         maxTurns,
		temperature:      opts.Temperature,
		outputSchema:     opts.OutputSchema,
		contextWindow:    opts.ContextWindow,
		responder:        opts.Responder,
		telemetry:        opts.Telemetry,
		logger:           logger,
		metrics:          metrics,
		tracer:           tracer,
		dispatcher:       tools.NewDispatcher(registry),
	}, nil
}

// handoffByToolName resolves a tool-call name to a configured Handoff. Real
// tools take precedence on a name collision, so this is only consulted
// after the registry lookup for a real tool has failed.
func (a *Agent) handoffByToolName(name tools.Ident) (Handoff, bool) {
	for _, h := range a.handoffs {
		if tools.Ident(h.Name) == name {
			return h, true
		}
	}
	return Handoff{}, false
}
