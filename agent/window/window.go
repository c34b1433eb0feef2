// Package window implements the Context Window Manager: strategies that
// bound the token footprint of a conversation's history before it is sent to
// the model. Strategies operate on a copy of history and never mutate the
// caller's stored convctx.Context; token counting itself is left to a
// caller-supplied TokenCounter, since tokenization is provider-specific and
// the core has no business embedding a tokenizer.
package window

import (
	"context"
	"fmt"
	"strings"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/convctx"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
)

// TokenCounter estimates the token footprint of a slice of history items. It
// must be a pure function of its input: the manager may call it repeatedly
// against shrinking prefixes while searching for a fit.
type TokenCounter func(items []convctx.InputItem) int

// Manager produces a trimmed request history from a Context's full history.
// Implementations must not mutate the items they are given.
type Manager interface {
	Trim(ctx context.Context, history []convctx.InputItem) ([]convctx.InputItem, error)
}

// headDeveloperMessage returns the index one past a leading MessageItem with
// RoleDeveloper, or 0 if history does not start with one. Per the data
// model, a developer message occurs at most once and always at the head.
func headDeveloperMessage(history []convctx.InputItem) int {
	if len(history) == 0 {
		return 0
	}
	mi, ok := history[0].(convctx.MessageItem)
	if !ok || mi.Message.Role != model.RoleDeveloper {
		return 0
	}
	return 1
}

type slidingWindow struct {
	maxTokens                int
	counter                  TokenCounter
	preserveDeveloperMessage bool
}

// SlidingWindowOption configures a SlidingWindow manager.
type SlidingWindowOption func(*slidingWindow)

// PreserveDeveloperMessage pins the head developer message, if any, so it is
// never dropped regardless of the token budget.
func PreserveDeveloperMessage() SlidingWindowOption {
	return func(s *slidingWindow) { s.preserveDeveloperMessage = true }
}

// SlidingWindow drops the oldest history items until the remainder fits
// within maxTokens according to counter.
func SlidingWindow(maxTokens int, counter TokenCounter, opts ...SlidingWindowOption) Manager {
	s := &slidingWindow{maxTokens: maxTokens, counter: counter}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *slidingWindow) Trim(_ context.Context, history []convctx.InputItem) ([]convctx.InputItem, error) {
	if s.counter == nil {
		return nil, fmt.Errorf("window: SlidingWindow requires a TokenCounter")
	}
	if s.counter(history) <= s.maxTokens {
		return history, nil
	}

	headEnd := 0
	var head []convctx.InputItem
	if s.preserveDeveloperMessage {
		headEnd = headDeveloperMessage(history)
		head = history[:headEnd]
	}

	rest := history[headEnd:]
	for len(rest) > 0 {
		candidate := append(append([]convctx.InputItem(nil), head...), rest...)
		if s.counter(candidate) <= s.maxTokens {
			return candidate, nil
		}
		rest = rest[1:]
	}
	return head, nil
}

type summarization struct {
	keepRecentMessages int
	summaryPrompt      string
	client              model.Client
	summaryModel        string
}

// SummarizationOption configures a Summarization manager.
type SummarizationOption func(*summarization)

// WithSummaryPrompt overrides the default summarization instruction. The
// prompt should contain a single %s placeholder for the serialized older
// history.
func WithSummaryPrompt(prompt string) SummarizationOption {
	return func(s *summarization) { s.summaryPrompt = prompt }
}

// WithSummaryModel selects the model identifier used for the summarization
// call, independent of the agent's main model.
func WithSummaryModel(modelID string) SummarizationOption {
	return func(s *summarization) { s.summaryModel = modelID }
}

const defaultSummaryPrompt = `Summarize the conversation below, preserving the user's goals, decisions made, and any details needed to continue the work. Write the summary as a single paragraph.

CONVERSATION:
%s`

// Summarization keeps the most recent keepRecentMessages items verbatim and
// replaces everything older with a single summary assistant message,
// produced by client using a configurable prompt.
func Summarization(keepRecentMessages int, client model.Client, opts ...SummarizationOption) Manager {
	s := &summarization{keepRecentMessages: keepRecentMessages, summaryPrompt: defaultSummaryPrompt, client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *summarization) Trim(ctx context.Context, history []convctx.InputItem) ([]convctx.InputItem, error) {
	if s.client == nil {
		return nil, fmt.Errorf("window: Summarization requires a model.Client")
	}

	headEnd := headDeveloperMessage(history)
	head := history[:headEnd]
	rest := history[headEnd:]

	if len(rest) <= s.keepRecentMessages {
		return history, nil
	}

	splitIdx := len(rest) - s.keepRecentMessages
	toSummarize := rest[:splitIdx]
	toKeep := rest[splitIdx:]

	var sb strings.Builder
	for _, item := range toSummarize {
		sb.WriteString(formatInputItem(item))
		sb.WriteByte('\n')
	}

	req := &model.Request{
		Model: s.summaryModel,
		Input: []*model.Message{{
			Role:    model.RoleUser,
			Content: []model.Content{model.TextContent{Text: fmt.Sprintf(s.summaryPrompt, sb.String())}},
		}},
	}

	resp, err := s.client.Respond(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("window: summarization call failed: %w", err)
	}

	summaryText := strings.TrimSpace(resp.OutputText())
	if summaryText == "" {
		return history, nil
	}

	summaryMsg := convctx.MessageItem{Message: model.Message{
		Role:    model.RoleAssistant,
		Content: []model.Content{model.TextContent{Text: "[Conversation summary]\n" + summaryText}},
	}}

	out := make([]convctx.InputItem, 0, headEnd+1+len(toKeep))
	out = append(out, head...)
	out = append(out, summaryMsg)
	out = append(out, toKeep...)
	return out, nil
}

func formatInputItem(item convctx.InputItem) string {
	switch v := item.(type) {
	case convctx.MessageItem:
		var sb strings.Builder
		sb.WriteString(string(v.Message.Role))
		sb.WriteString(": ")
		for _, c := range v.Message.Content {
			if t, ok := c.(model.TextContent); ok {
				sb.WriteString(t.Text)
			}
		}
		return sb.String()
	case convctx.ToolResultItem:
		return fmt.Sprintf("tool result (%s): %s", v.ToolName, v.Output.Text)
	case convctx.ReferenceItem:
		return fmt.Sprintf("reference: %s", v.Key)
	default:
		return ""
	}
}
