package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_MarshalUnmarshal_AllContentKinds(t *testing.T) {
	msg := Message{
		Role: RoleUser,
		Content: []Content{
			TextContent{Text: "hello"},
			ImageByURLContent{URL: "https://example.com/cat.png"},
			ImageByIDContent{FileID: "file-123"},
			FileByURLContent{URL: "https://example.com/doc.pdf", Filename: "doc.pdf"},
			FileByIDContent{FileID: "file-456"},
			FileByBase64Content{Filename: "a.txt", MIMEType: "text/plain", Bytes: []byte("payload")},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var restored Message
	require.NoError(t, json.Unmarshal(data, &restored))

	require.Equal(t, RoleUser, restored.Role)
	require.Len(t, restored.Content, 6)
	require.Equal(t, TextContent{Text: "hello"}, restored.Content[0])
	require.Equal(t, ImageByURLContent{URL: "https://example.com/cat.png"}, restored.Content[1])
	require.Equal(t, ImageByIDContent{FileID: "file-123"}, restored.Content[2])
	require.Equal(t, FileByURLContent{URL: "https://example.com/doc.pdf", Filename: "doc.pdf"}, restored.Content[3])
	require.Equal(t, FileByIDContent{FileID: "file-456"}, restored.Content[4])
	require.Equal(t, FileByBase64Content{Filename: "a.txt", MIMEType: "text/plain", Bytes: []byte("payload")}, restored.Content[5])
}

func TestMessage_UnmarshalUnknownKind_Errors(t *testing.T) {
	data := []byte(`{"role":"user","content":[{"kind":"unknown_kind"}]}`)
	var msg Message
	err := json.Unmarshal(data, &msg)
	require.Error(t, err)
}

func TestMessage_MarshalEmptyContent(t *testing.T) {
	msg := Message{Role: RoleAssistant}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var restored Message
	require.NoError(t, json.Unmarshal(data, &restored))
	require.Equal(t, RoleAssistant, restored.Role)
	require.Empty(t, restored.Content)
}

func TestResponse_OutputText_ConcatenatesTextAcrossMessages(t *testing.T) {
	resp := &Response{Output: []Message{
		{Role: RoleAssistant, Content: []Content{TextContent{Text: "one "}}},
		{Role: RoleAssistant, Content: []Content{TextContent{Text: "two"}, ImageByURLContent{URL: "ignored"}}},
	}}
	require.Equal(t, "one two", resp.OutputText())
}

func TestResponse_OutputText_NilResponse(t *testing.T) {
	var resp *Response
	require.Equal(t, "", resp.OutputText())
}
