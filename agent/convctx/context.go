// Package convctx implements AgenticContext: the mutable, per-conversation
// state threaded through a single interact call. A Context owns an ordered
// history of input items (messages, tool results, and opaque references), a
// user-keyed state map for sub-agent coordination, a turn counter, and the
// trace correlation identifiers carried onto every span the engine opens.
package convctx

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/paragon-intelligence/agentle4j-sub007/agent/model"
	"github.com/paragon-intelligence/agentle4j-sub007/agent/tools"
)

type (
	// InputItem is a single entry in a Context's history. The closed set below
	// covers every shape interact can append: model messages, tool results,
	// and free-form references that ride along in history without being sent
	// to the model directly.
	InputItem interface {
		isInputItem()
	}

	// MessageItem wraps a model.Message as a history entry.
	MessageItem struct {
		Message model.Message
	}

	// ToolResultItem wraps a completed tool invocation's output as a history
	// entry, keyed by the originating tool name so later inspection (and
	// window-manager summarization) can attribute it correctly.
	ToolResultItem struct {
		ToolName tools.Ident
		Output   tools.ToolCallOutput
	}

	// ReferenceItem is an opaque, caller-supplied history entry (e.g. a
	// retrieved-document pointer) that is available to state inspection but
	// is neither forwarded to the model nor part of the text input
	// guardrails see.
	ReferenceItem struct {
		Key   string
		Value any
	}
)

func (MessageItem) isInputItem()    {}
func (ToolResultItem) isInputItem() {}
func (ReferenceItem) isInputItem()  {}

// Context is the mutable per-conversation state passed to Engine.Interact.
// A Context is owned by exactly one interact call at a time; use Copy or
// Fork to hand an independent snapshot to a fan-out or a child agent.
type Context struct {
	history []InputItem
	state   map[string]any

	turnCount int

	parentTraceID string
	parentSpanID  string
	requestID     string
}

// New builds an empty Context with no trace identifiers. EnsureTraceIDs
// assigns fresh ones on first use if the caller does not set them explicitly.
func New() *Context {
	return &Context{state: make(map[string]any)}
}

// AddMessage appends msg to history as a MessageItem.
func (c *Context) AddMessage(msg model.Message) {
	c.history = append(c.history, MessageItem{Message: msg})
}

// AddInput appends an arbitrary InputItem to history.
func (c *Context) AddInput(item InputItem) {
	c.history = append(c.history, item)
}

// AddToolResult appends a completed tool invocation's output to history as a
// ToolResultItem, so the model sees it on the next turn.
func (c *Context) AddToolResult(toolName tools.Ident, output tools.ToolCallOutput) {
	c.history = append(c.history, ToolResultItem{ToolName: toolName, Output: output})
}

// History returns an unmodifiable view of the current history: a shallow
// copy of the backing slice, safe for the caller to range over without risk
// of observing later mutation.
func (c *Context) History() []InputItem {
	out := make([]InputItem, len(c.history))
	copy(out, c.history)
	return out
}

// HistoryMutable returns a fresh, independently mutable copy of history. The
// Context Window Manager uses this to produce a trimmed request payload
// without touching the stored history.
func (c *Context) HistoryMutable() []InputItem {
	return c.History()
}

// TurnCount returns the current turn number.
func (c *Context) TurnCount() int { return c.turnCount }

// IncrementTurn advances the turn counter by one and returns the new value.
func (c *Context) IncrementTurn() int {
	c.turnCount++
	return c.turnCount
}

// SetState stores val under key in the context's user-keyed state map, used
// for sub-agent coordination data that should not be sent to the model.
func (c *Context) SetState(key string, val any) {
	if c.state == nil {
		c.state = make(map[string]any)
	}
	c.state[key] = val
}

// GetState retrieves the value stored under key, if any.
func (c *Context) GetState(key string) (any, bool) {
	if c.state == nil {
		return nil, false
	}
	v, ok := c.state[key]
	return v, ok
}

// StateSnapshot returns a shallow copy of the context's user-keyed state
// map, for callers (e.g. sub-agent-as-tool) that need to inherit selected
// keys into a different context without sharing the backing map.
func (c *Context) StateSnapshot() map[string]any {
	return cloneState(c.state)
}

// ParentTraceID returns the trace identifier this context's spans are
// parented to.
func (c *Context) ParentTraceID() string { return c.parentTraceID }

// ParentSpanID returns the span identifier this context's spans are
// parented to.
func (c *Context) ParentSpanID() string { return c.parentSpanID }

// RequestID returns the identifier correlating every turn of this context's
// current interact call.
func (c *Context) RequestID() string { return c.requestID }

// EnsureTraceIDs assigns fresh trace, span, and request identifiers if none
// are set. interact calls this once at the start of every call so a
// caller-constructed Context never reaches the transport without
// correlation IDs.
func (c *Context) EnsureTraceIDs() {
	if c.parentTraceID == "" {
		c.parentTraceID = uuid.NewString()
	}
	if c.parentSpanID == "" {
		c.parentSpanID = uuid.NewString()
	}
	if c.requestID == "" {
		c.requestID = uuid.NewString()
	}
}

// Copy deep-copies history and state, preserving the turn counter and trace
// identifiers. Use Copy when a caller needs an independent context that
// still belongs to the same logical run (e.g. parallel fan-out siblings).
func (c *Context) Copy() *Context {
	out := &Context{
		history:       append([]InputItem(nil), c.history...),
		state:         cloneState(c.state),
		turnCount:     c.turnCount,
		parentTraceID: c.parentTraceID,
		parentSpanID:  c.parentSpanID,
		requestID:     c.requestID,
	}
	return out
}

// Fork deep-copies history and state, resets the turn counter to zero, and
// sets newSpanID as the new parent span with the current trace ID preserved.
// The engine calls Fork when a parent agent hands off to a child.
func (c *Context) Fork(newSpanID string) *Context {
	out := c.Copy()
	out.turnCount = 0
	out.parentSpanID = newSpanID
	if out.parentTraceID == "" {
		out.parentTraceID = uuid.NewString()
	}
	out.requestID = uuid.NewString()
	return out
}

func cloneState(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// ConcatenatedUserText concatenates the text content of every user message
// currently in history, in order. Input guardrails run against this, per the
// engine's initial-bookkeeping step.
func (c *Context) ConcatenatedUserText() string {
	var out []byte
	for _, item := range c.history {
		mi, ok := item.(MessageItem)
		if !ok || mi.Message.Role != model.RoleUser {
			continue
		}
		for _, content := range mi.Message.Content {
			if t, ok := content.(model.TextContent); ok {
				out = append(out, t.Text...)
			}
		}
	}
	return string(out)
}

// MarshalJSON renders a Context for inclusion in a serialized AgentRunState.
func (c *Context) MarshalJSON() ([]byte, error) {
	type wireItem struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	type wire struct {
		History       []wireItem     `json:"history"`
		State         map[string]any `json:"state"`
		TurnCount     int            `json:"turnCount"`
		ParentTraceID string         `json:"parentTraceId"`
		ParentSpanID  string         `json:"parentSpanId"`
		RequestID     string         `json:"requestId"`
	}
	w := wire{State: c.state, TurnCount: c.turnCount, ParentTraceID: c.parentTraceID,
		ParentSpanID: c.parentSpanID, RequestID: c.requestID}
	for i, item := range c.history {
		data, kind, err := encodeInputItem(item)
		if err != nil {
			return nil, fmt.Errorf("convctx: encode history[%d]: %w", i, err)
		}
		w.History = append(w.History, wireItem{Kind: kind, Data: data})
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a Context serialized by MarshalJSON.
func (c *Context) UnmarshalJSON(data []byte) error {
	type wireItem struct {
		Kind string          `json:"kind"`
		Data json.RawMessage `json:"data"`
	}
	type wire struct {
		History       []wireItem     `json:"history"`
		State         map[string]any `json:"state"`
		TurnCount     int            `json:"turnCount"`
		ParentTraceID string         `json:"parentTraceId"`
		ParentSpanID  string         `json:"parentSpanId"`
		RequestID     string         `json:"requestId"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.state = w.State
	c.turnCount = w.TurnCount
	c.parentTraceID = w.ParentTraceID
	c.parentSpanID = w.ParentSpanID
	c.requestID = w.RequestID
	c.history = make([]InputItem, 0, len(w.History))
	for i, wi := range w.History {
		item, err := decodeInputItem(wi.Kind, wi.Data)
		if err != nil {
			return fmt.Errorf("convctx: decode history[%d]: %w", i, err)
		}
		c.history = append(c.history, item)
	}
	return nil
}

func encodeInputItem(item InputItem) (json.RawMessage, string, error) {
	switch v := item.(type) {
	case MessageItem:
		data, err := json.Marshal(v)
		return data, "message", err
	case ToolResultItem:
		data, err := json.Marshal(v)
		return data, "tool_result", err
	case ReferenceItem:
		data, err := json.Marshal(v)
		return data, "reference", err
	default:
		return nil, "", fmt.Errorf("convctx: unknown input item type %T", item)
	}
}

func decodeInputItem(kind string, data json.RawMessage) (InputItem, error) {
	switch kind {
	case "message":
		var v MessageItem
		err := json.Unmarshal(data, &v)
		return v, err
	case "tool_result":
		var v ToolResultItem
		err := json.Unmarshal(data, &v)
		return v, err
	case "reference":
		var v ReferenceItem
		err := json.Unmarshal(data, &v)
		return v, err
	default:
		return nil, fmt.Errorf("convctx: unknown input item kind %q", kind)
	}
}
