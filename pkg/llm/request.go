package llm

// ChatRequest represents a provider-agnostic generation request.
type ChatRequest struct {
	// Model name (e.g., "gemini-2.5-flash")
	Model string `json:"model"`

	// Conversation messages, oldest first. The last message is the current
	// user turn.
	Messages []Message `json:"messages"`

	// System instruction sent out of band from the messages.
	System string `json:"system,omitempty"`

	// Whether to stream the response
	Stream *bool `json:"stream,omitempty"`

	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}
