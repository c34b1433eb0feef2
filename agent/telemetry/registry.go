package telemetry

import (
	"context"
	"sync"
)

// ProcessorRegistry fans a FailureEvent out to every registered Processor,
// broadcast by the engine when interact terminates with an Error result. It
// is an explicit collaborator on Agent's configuration, not a process-wide
// singleton: distinct agents may carry distinct registries, and registration
// is safe to mutate concurrently with in-flight broadcasts.
//
// Broadcast delivery is synchronous fan-out; the order in which processors
// receive an event is not defined. A registration snapshot is taken before iteration begins so a processor
// registering or unregistering mid-broadcast never affects the delivery
// already underway.
type ProcessorRegistry struct {
	mu         sync.RWMutex
	processors map[*processorHandle]Processor
}

// processorHandle is the unregistration token returned by Register.
type processorHandle struct {
	registry *ProcessorRegistry
	once     sync.Once
}

// NewProcessorRegistry builds an empty registry, optionally pre-populated
// with processors.
func NewProcessorRegistry(processors ...Processor) *ProcessorRegistry {
	r := &ProcessorRegistry{processors: make(map[*processorHandle]Processor)}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// Register adds p to the registry and returns a handle whose Close
// unregisters it. Close is idempotent and safe to call multiple times.
func (r *ProcessorRegistry) Register(p Processor) *processorHandle {
	if p == nil {
		return nil
	}
	h := &processorHandle{registry: r}
	r.mu.Lock()
	r.processors[h] = p
	r.mu.Unlock()
	return h
}

// Close unregisters the processor associated with h.
func (h *processorHandle) Close() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.registry.mu.Lock()
		delete(h.registry.processors, h)
		h.registry.mu.Unlock()
	})
}

// Broadcast delivers event to every registered processor, in no defined
// order. A nil registry is a valid no-op broadcaster.
func (r *ProcessorRegistry) Broadcast(ctx context.Context, event FailureEvent) {
	if r == nil {
		return
	}
	r.mu.RLock()
	snapshot := make([]Processor, 0, len(r.processors))
	for _, p := range r.processors {
		snapshot = append(snapshot, p)
	}
	r.mu.RUnlock()
	for _, p := range snapshot {
		p.ProcessFailure(ctx, event)
	}
}
