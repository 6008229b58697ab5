// Package llm holds the provider-agnostic message, request and response types
// exchanged between the assistant pipeline and model providers.
package llm

import "strings"

// Conversation roles after normalization.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in a conversation. Content is an array of
// blocks so provider codecs can map it onto multi-part formats.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock represents a single piece of content within a message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{Type: "text", Text: text},
		},
	}
}

// GetText returns the concatenated text of all text blocks in the message.
func (m *Message) GetText() string {
	var b strings.Builder
	for _, block := range m.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}
