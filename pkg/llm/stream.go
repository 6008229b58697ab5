package llm

import "time"

// StreamChunk represents a single chunk in a streaming response.
type StreamChunk struct {
	// Model that generated the chunk
	Model string `json:"model"`

	// Chunk timestamp
	CreatedAt time.Time `json:"created_at,omitzero"`

	// The partial message carried by this chunk
	Message Message `json:"message"`

	// Whether this is the final chunk
	Done bool `json:"done"`

	// Stop reason (only present on final chunk)
	StopReason string `json:"stop_reason,omitempty"`

	// Blocked is set when the provider withheld this chunk's content for
	// safety reasons.
	Blocked bool `json:"blocked,omitempty"`

	// Usage metrics (typically only present on final chunk)
	Usage *Usage `json:"usage,omitempty"`
}
