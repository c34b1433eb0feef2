package openai

import (
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// openAIStreamer adapts a go-openai chat completion stream to the
// model.Streamer interface, buffering tool-call argument fragments by their
// delta index until the stream closes so it can place one assembled
// model.ToolCall per tool use on the final response.
type openAIStreamer struct {
	sdkStream *openai.ChatCompletionStream

	toolCalls  map[int]*toolCallBuffer
	toolOrder  []int
	textOutput strings.Builder
	stopReason string
	usage      model.TokenUsage

	pending []model.Chunk
	done    bool
}

type toolCallBuffer struct {
	id   string
	name string
	args strings.Builder
}

func newOpenAIStreamer(sdkStream *openai.ChatCompletionStream) model.Streamer {
	return &openAIStreamer{sdkStream: sdkStream, toolCalls: make(map[int]*toolCallBuffer)}
}

// Recv returns the next buffered chunk, pulling from the underlying SDK
// stream as needed. go-openai delivers tool-call arguments as a sequence of
// deltas with no closing event, so the final ChunkTypeResponseCompleted
// chunk carries every accumulated call, assembled, in Response.ToolCalls;
// no ChunkTypeToolCall chunks are emitted.
func (s *openAIStreamer) Recv() (model.Chunk, error) {
	for len(s.pending) == 0 && !s.done {
		if err := s.pull(); err != nil {
			return model.Chunk{}, err
		}
	}
	if len(s.pending) == 0 {
		return model.Chunk{}, io.EOF
	}
	chunk := s.pending[0]
	s.pending = s.pending[1:]
	return chunk, nil
}

func (s *openAIStreamer) pull() error {
	resp, err := s.sdkStream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.done = true
			s.pending = append(s.pending, s.finalChunk())
			return nil
		}
		s.done = true
		return err
	}

	if resp.Usage != nil {
		s.usage = model.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		}
	}

	for _, choice := range resp.Choices {
		if choice.FinishReason != "" {
			s.stopReason = string(choice.FinishReason)
		}
		if choice.Delta.Content != "" {
			s.textOutput.WriteString(choice.Delta.Content)
			s.pending = append(s.pending, model.Chunk{Type: model.ChunkTypeTextDelta, TextDelta: choice.Delta.Content})
		}
		for _, tc := range choice.Delta.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			buf, ok := s.toolCalls[idx]
			if !ok {
				buf = &toolCallBuffer{}
				s.toolCalls[idx] = buf
				s.toolOrder = append(s.toolOrder, idx)
			}
			if tc.ID != "" {
				buf.id = tc.ID
			}
			if tc.Function.Name != "" {
				buf.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				buf.args.WriteString(tc.Function.Arguments)
				s.pending = append(s.pending, model.Chunk{
					Type: model.ChunkTypeToolCallDelta,
					ToolCallDelta: &model.ToolCallDelta{
						ID:    buf.id,
						Name:  buf.name,
						Delta: tc.Function.Arguments,
					},
				})
			}
		}
	}
	return nil
}

func (s *openAIStreamer) finalChunk() model.Chunk {
	resp := &model.Response{StopReason: s.stopReason, Usage: s.usage}
	if s.textOutput.Len() > 0 {
		resp.Output = append(resp.Output, model.Message{
			Role:    model.RoleAssistant,
			Content: []model.Content{model.TextContent{Text: s.textOutput.String()}},
		})
	}
	for _, idx := range s.toolOrder {
		buf := s.toolCalls[idx]
		args := strings.TrimSpace(buf.args.String())
		if args == "" {
			args = "{}"
		}
		resp.ToolCalls = append(resp.ToolCalls, model.ToolCall{
			ID:        buf.id,
			Name:      buf.name,
			Arguments: decodeToolArguments(args),
		})
	}
	return model.Chunk{Type: model.ChunkTypeResponseCompleted, Response: resp}
}

// Close releases the underlying SDK stream.
func (s *openAIStreamer) Close() error {
	return s.sdkStream.Close()
}
