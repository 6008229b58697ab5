// Package provider defines the codec contract between the generation client
// and a model provider's wire format.
package provider

import (
	"github.com/papercomputeco/leadline/pkg/llm"
)

// Provider encodes provider-agnostic requests and decodes provider responses.
type Provider interface {
	// Name returns the canonical provider name (e.g., "vertex").
	Name() string

	// EncodeRequest converts a request into the provider's JSON body.
	EncodeRequest(req *llm.ChatRequest) ([]byte, error)

	// ParseResponse converts a provider-specific response into the internal format.
	ParseResponse(payload []byte) (*llm.ChatResponse, error)

	// ParseStreamChunk converts a single streaming chunk into the internal format.
	// Returns (nil, nil) if the chunk should be skipped (e.g., keep-alive).
	ParseStreamChunk(payload []byte) (*llm.StreamChunk, error)
}
