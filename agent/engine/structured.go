package engine

import (
	"context"
	"fmt"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

// StructuredResult composes a typed parse on top of the untyped engine: Raw
// is exactly what Agent.Interact returned, and Parsed is the decoded
// structured output extracted from Raw when it is a Success.
type StructuredResult[T any] struct {
	Parsed T
	Raw    Result
}

// StructuredAgent wraps an Agent whose Options.OutputSchema decodes into T,
// giving callers a typed Interact without the core engine needing generics
// anywhere in its own Result type. Build one with NewStructured.
type StructuredAgent[T any] struct {
	agent *Agent
	codec tools.JSONCodec[T]
}

// NewStructured builds a StructuredAgent[T] around agent, installing an
// OutputSchema on opts that decodes the final assistant text with codec
// before constructing the Agent. Use this instead of engine.New when the
// caller wants a typed Interact.
func NewStructured[T any](opts Options, codec tools.JSONCodec[T]) (*StructuredAgent[T], error) {
	opts.OutputSchema = &OutputSchema{
		Parse: func(text string) (any, error) {
			v, err := codec.FromJSON([]byte(text))
			if err != nil {
				return nil, fmt.Errorf("structured output: %w", err)
			}
			return v, nil
		},
	}
	a, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &StructuredAgent[T]{agent: a, codec: codec}, nil
}

// Interact runs the underlying Agent and extracts the typed parse from a
// Success result. Non-Success results (HandoffOutcome, Paused, Error) are
// returned as-is in Raw with a zero-valued Parsed.
func (s *StructuredAgent[T]) Interact(ctx context.Context, cctx *convctx.Context) StructuredResult[T] {
	raw := s.agent.Interact(ctx, cctx)
	out := StructuredResult[T]{Raw: raw}
	if success, ok := raw.(Success); ok {
		if typed, ok := success.Parsed.(T); ok {
			out.Parsed = typed
		}
	}
	return out
}

// Agent returns the underlying untyped Agent, e.g. for use as a handoff
// target or sub-agent-as-tool.
func (s *StructuredAgent[T]) Agent() *Agent { return s.agent }
