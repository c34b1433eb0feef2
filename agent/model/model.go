// Package model defines the provider-agnostic message and streaming types
// exchanged with a remote "Responses"-shaped completion endpoint. It models
// messages as a closed set of typed content items (text, image, file) plus a
// small conversation role, and exposes the Client/Streamer contract every
// transport adapter (agent/providers/anthropic, agent/providers/openai, or a
// caller's own) must satisfy.
//
// The core never talks to a provider directly; it only depends on Client.
package model

import (
	"context"
	"encoding/json"
)

// ConversationRole is the role for a message in a conversation.
type ConversationRole string

const (
	// RoleDeveloper is the role for the single, head-of-history developer
	// message (system instructions augmented at agent-build time).
	RoleDeveloper ConversationRole = "developer"
	// RoleUser is the role for caller/tool-result input.
	RoleUser ConversationRole = "user"
	// RoleAssistant is the role for model-generated content.
	RoleAssistant ConversationRole = "assistant"
)

type (
	// Content is a marker interface implemented by every message content
	// item. The closed set below mirrors the wire shapes of the Responses
	// protocol; callers must not implement Content outside this package.
	Content interface {
		isContent()
	}

	// TextContent is plain text content.
	TextContent struct {
		Text string
	}

	// ImageByURLContent references an externally hosted image.
	ImageByURLContent struct {
		URL string
	}

	// ImageByIDContent references a previously uploaded image by its
	// provider-assigned file identifier.
	ImageByIDContent struct {
		FileID string
	}

	// FileByURLContent references an externally hosted file.
	FileByURLContent struct {
		URL      string
		Filename string
	}

	// FileByIDContent references a previously uploaded file by its
	// provider-assigned file identifier.
	FileByIDContent struct {
		FileID string
	}

	// FileByBase64Content embeds file bytes inline, base64-encoded on the
	// wire. Bytes holds the decoded payload in memory.
	FileByBase64Content struct {
		Filename string
		MIMEType string
		Bytes    []byte
	}
)

func (TextContent) isContent()          {}
func (ImageByURLContent) isContent()    {}
func (ImageByIDContent) isContent()     {}
func (FileByURLContent) isContent()     {}
func (FileByIDContent) isContent()      {}
func (FileByBase64Content) isContent()  {}

type (
	// Message is a single immutable chat message. Messages are ordered into
	// a conversation history and passed to the transport verbatim.
	Message struct {
		// Role identifies the speaker for this message.
		Role ConversationRole
		// Content are the ordered content items for the message.
		Content []Content
	}

	// ToolDefinition describes a tool exposed to the model.
	ToolDefinition struct {
		// Name is the tool identifier as seen by the model.
		Name string
		// Description is presented to the model to decide when to call the tool.
		Description string
		// InputSchema is a JSON-schema-shaped mapping describing the tool's
		// input payload.
		InputSchema any
		// Strict requests provider-side strict schema validation when supported.
		Strict bool
	}

	// ToolCall is a function-tool invocation requested by the model.
	ToolCall struct {
		// ID is the provider-issued call identifier, used to correlate the
		// eventual tool result.
		ID string
		// Name is the tool identifier requested by the model.
		Name string
		// Arguments is the canonical JSON arguments payload supplied by the
		// model. Provider adapters populate this as a raw JSON message;
		// tools.Dispatcher decodes it via the tool's registered codec.
		Arguments json.RawMessage
	}

	// ToolCallDelta is an incremental tool-call argument fragment streamed by
	// providers while still constructing the full input JSON. It is a
	// best-effort UX signal: the canonical payload remains ToolCall.Arguments
	// on the final ChunkTypeToolCall chunk.
	ToolCallDelta struct {
		ID    string
		Name  string
		Delta string
	}

	// ToolChoiceMode controls how the model uses tools for a request.
	ToolChoiceMode string

	// ToolChoice configures optional tool-use behavior for a Request.
	ToolChoice struct {
		Mode ToolChoiceMode
		// Name identifies the tool to request when Mode is ToolChoiceModeTool.
		Name string
	}

	// TokenUsage tracks token counts for a model call.
	TokenUsage struct {
		InputTokens      int
		OutputTokens     int
		TotalTokens      int
		CacheReadTokens  int
		CacheWriteTokens int
	}

	// Request captures inputs for a model invocation. Field semantics follow
	// the Responses protocol shape; the core treats Request as an opaque
	// forwarded bundle except for the fields it reads back (Input, Tools,
	// Instructions, Temperature, Stream).
	Request struct {
		// Model is the model identifier to invoke.
		Model string
		// Instructions is the system/developer prompt text.
		Instructions string
		// Input is the trimmed conversation history for this turn.
		Input []*Message
		// Tools lists the tool catalogue available this turn (including any
		// handoff-synthetic tools).
		Tools []*ToolDefinition
		// ToolChoice optionally constrains tool selection.
		ToolChoice *ToolChoice
		// Temperature controls sampling when supported by the provider.
		Temperature *float64
		// TopP controls nucleus sampling when supported by the provider.
		TopP *float64
		// MaxOutputTokens caps the number of output tokens when supported.
		MaxOutputTokens int
		// Stream requests streaming responses when true.
		Stream bool
		// Metadata carries caller-supplied pass-through metadata.
		Metadata map[string]any
	}

	// Response is the result of a non-streaming invocation.
	Response struct {
		// Output is the ordered list of assistant messages produced.
		Output []Message
		// ToolCalls lists function-tool invocations requested by the model.
		ToolCalls []ToolCall
		// Usage reports token consumption for the request.
		Usage TokenUsage
		// StopReason records why generation stopped (provider-specific).
		StopReason string
	}

	// ChunkType classifies a streaming Chunk.
	ChunkType string

	// Chunk is a single streaming event from the model.
	Chunk struct {
		Type ChunkType
		// TextDelta carries an incremental text fragment for ChunkTypeTextDelta.
		TextDelta string
		// ToolCallDelta carries an incremental tool-call fragment for
		// ChunkTypeToolCallDelta. Optional; consumers may ignore it.
		ToolCallDelta *ToolCallDelta
		// ToolCall carries a fully-assembled tool call for ChunkTypeToolCall.
		ToolCall *ToolCall
		// Response carries the final response envelope for
		// ChunkTypeResponseCompleted.
		Response *Response
		// UsageDelta reports incremental token usage when available.
		UsageDelta *TokenUsage
		// Err carries a terminal streaming error for ChunkTypeError.
		Err error
	}
)

// ChunkType constants classify the events emitted by a Streamer.
const (
	ChunkTypeTextDelta          ChunkType = "text_delta"
	ChunkTypeToolCallDelta      ChunkType = "tool_call_delta"
	ChunkTypeToolCall           ChunkType = "tool_call"
	ChunkTypeResponseCompleted  ChunkType = "response_completed"
	ChunkTypeError              ChunkType = "error"
)

// ToolChoiceMode constants.
const (
	ToolChoiceAuto ToolChoiceMode = "auto"
	ToolChoiceNone ToolChoiceMode = "none"
	ToolChoiceTool ToolChoiceMode = "tool"
)

// OutputText concatenates every TextContent item across every output message,
// in order, giving callers the aggregate assistant text for a Response.
func (r *Response) OutputText() string {
	if r == nil {
		return ""
	}
	var out []byte
	for _, msg := range r.Output {
		for _, c := range msg.Content {
			if t, ok := c.(TextContent); ok {
				out = append(out, t.Text...)
			}
		}
	}
	return string(out)
}

type (
	// Client is the transport collaborator ("Responder") consumed by the
	// engine. Implementations translate Request/Response into calls against
	// a concrete provider SDK; see agent/providers/anthropic and
	// agent/providers/openai.
	Client interface {
		// Respond performs a synchronous, non-streaming invocation.
		Respond(ctx context.Context, req *Request) (*Response, error)

		// RespondStream performs a streaming invocation, returning a push
		// source of typed deltas. Callers must Close the Streamer once done.
		RespondStream(ctx context.Context, req *Request) (Streamer, error)
	}

	// Streamer delivers incremental model output. Callers drain Recv until
	// it returns io.EOF (wrapped as a final ChunkTypeResponseCompleted chunk
	// or a plain EOF error) then Close.
	Streamer interface {
		// Recv returns the next streaming chunk or an error.
		Recv() (Chunk, error)
		// Close releases resources associated with the stream.
		Close() error
	}
)
