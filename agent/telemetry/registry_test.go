package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	events []FailureEvent
}

func (p *recordingProcessor) ProcessFailure(_ context.Context, event FailureEvent) {
	p.events = append(p.events, event)
}

func TestProcessorRegistry_BroadcastsToAllRegistered(t *testing.T) {
	p1, p2 := &recordingProcessor{}, &recordingProcessor{}
	r := NewProcessorRegistry(p1, p2)

	event := FailureEvent{AgentName: "a", Kind: "llm_call_failed"}
	r.Broadcast(context.Background(), event)

	require.Equal(t, []FailureEvent{event}, p1.events)
	require.Equal(t, []FailureEvent{event}, p2.events)
}

func TestProcessorRegistry_CloseUnregisters(t *testing.T) {
	p := &recordingProcessor{}
	r := NewProcessorRegistry()
	handle := r.Register(p)

	handle.Close()
	r.Broadcast(context.Background(), FailureEvent{Kind: "x"})

	require.Empty(t, p.events)
}

func TestProcessorRegistry_CloseIsIdempotent(t *testing.T) {
	p := &recordingProcessor{}
	r := NewProcessorRegistry(p)
	handle := r.Register(p)

	require.NotPanics(t, func() {
		handle.Close()
		handle.Close()
	})
}

func TestProcessorRegistry_RegisterNilIsNoop(t *testing.T) {
	r := NewProcessorRegistry()
	handle := r.Register(nil)
	require.Nil(t, handle)
}

func TestProcessorRegistry_NilRegistryBroadcastIsNoop(t *testing.T) {
	var r *ProcessorRegistry
	require.NotPanics(t, func() {
		r.Broadcast(context.Background(), FailureEvent{})
	})
}

func TestLoggingProcessor_ProcessFailure_NilLoggerIsNoop(t *testing.T) {
	p := LoggingProcessor{}
	require.NotPanics(t, func() {
		p.ProcessFailure(context.Background(), FailureEvent{})
	})
}
