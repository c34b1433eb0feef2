// Package telemetry defines the Logger/Metrics/Tracer contracts the engine
// uses to observe a run, plus concrete implementations: Clue/OTEL-backed for
// production, no-op for tests and callers who opt out of observability. A
// ProcessorRegistry broadcasts terminal-error events to every registered
// processor, used by the engine to report Error results without coupling
// the core loop to a specific telemetry backend.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger emits structured log messages at a severity level. Keyvals are an
// alternating sequence of string keys and arbitrary values, following the
// convention used throughout the rest of the module's ambient stack.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics records counters, timers, and gauges. Tags are an alternating
// sequence of dimension names and values.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, d time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer opens spans parented to a context, per the engine's
// "<agent>.turn-N" span-per-turn convention.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	Span(ctx context.Context) Span
}

// Span is a single unit of traced work.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// FailureEvent is broadcast to every registered Processor when interact
// terminates with an Error result, per the engine's error-handling design.
type FailureEvent struct {
	AgentName string
	RunID     string
	Kind      string
	Message   string
	TurnsUsed int
}

// Processor receives broadcast telemetry events. Implementations must not
// block the calling turn for long; ProcessorRegistry invokes processors
// synchronously, in no defined order. See registry.go for the concrete
// fan-out registry.
type Processor interface {
	ProcessFailure(ctx context.Context, event FailureEvent)
}

// LoggingProcessor is a Processor that writes failures through a Logger.
// It is the default processor wired by cmd/agentdemo.
type LoggingProcessor struct {
	Logger Logger
}

// ProcessFailure logs event at error severity.
func (p LoggingProcessor) ProcessFailure(ctx context.Context, event FailureEvent) {
	if p.Logger == nil {
		return
	}
	p.Logger.Error(ctx, "agent run failed",
		"agent", event.AgentName,
		"run_id", event.RunID,
		"kind", event.Kind,
		"message", event.Message,
		"turns_used", event.TurnsUsed,
	)
}
