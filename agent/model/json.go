// Package model: this file handles JSON encoding/decoding of the Content
// union via an explicit "kind" discriminator, so round-trips through JSON
// (run-state serialization, provider adapters) do not lose type information
// when Content is stored as an interface slice.
package model

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a Message while preserving the concrete Content types
// stored in Content via a "kind" discriminator.
func (m Message) MarshalJSON() ([]byte, error) {
	type alias struct {
		Role    ConversationRole `json:"role"`
		Content []json.RawMessage `json:"content"`
	}
	out := alias{Role: m.Role}
	for i, c := range m.Content {
		enc, err := encodeContent(c)
		if err != nil {
			return nil, fmt.Errorf("encode content[%d]: %w", i, err)
		}
		out.Content = append(out.Content, enc)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a Message, materializing concrete Content
// implementations.
func (m *Message) UnmarshalJSON(data []byte) error {
	var tmp struct {
		Role    ConversationRole  `json:"role"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	m.Role = tmp.Role
	m.Content = make([]Content, 0, len(tmp.Content))
	for i, raw := range tmp.Content {
		c, err := decodeContent(raw)
		if err != nil {
			return fmt.Errorf("decode content[%d]: %w", i, err)
		}
		m.Content = append(m.Content, c)
	}
	return nil
}

func encodeContent(c Content) (json.RawMessage, error) {
	switch v := c.(type) {
	case TextContent:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			TextContent
		}{"text", v})
	case ImageByURLContent:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			ImageByURLContent
		}{"image_url", v})
	case ImageByIDContent:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			ImageByIDContent
		}{"image_id", v})
	case FileByURLContent:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			FileByURLContent
		}{"file_url", v})
	case FileByIDContent:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			FileByIDContent
		}{"file_id", v})
	case FileByBase64Content:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			FileByBase64Content
		}{"file_base64", v})
	default:
		return nil, fmt.Errorf("model: unknown content type %T", c)
	}
}

func decodeContent(raw json.RawMessage) (Content, error) {
	var disc struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, fmt.Errorf("decode content kind: %w", err)
	}
	switch disc.Kind {
	case "text":
		var v TextContent
		err := json.Unmarshal(raw, &v)
		return v, err
	case "image_url":
		var v ImageByURLContent
		err := json.Unmarshal(raw, &v)
		return v, err
	case "image_id":
		var v ImageByIDContent
		err := json.Unmarshal(raw, &v)
		return v, err
	case "file_url":
		var v FileByURLContent
		err := json.Unmarshal(raw, &v)
		return v, err
	case "file_id":
		var v FileByIDContent
		err := json.Unmarshal(raw, &v)
		return v, err
	case "file_base64":
		var v FileByBase64Content
		err := json.Unmarshal(raw, &v)
		return v, err
	default:
		return nil, fmt.Errorf("model: unknown content kind %q", disc.Kind)
	}
}
