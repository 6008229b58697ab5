package provider

import (
	"fmt"

	"github.com/papercomputeco/leadline/pkg/llm/provider/vertex"
)

// Supported provider type constants
const (
	Vertex = "vertex"
)

// SupportedProviders returns the list of all supported provider type names.
func SupportedProviders() []string {
	return []string{Vertex}
}

// New creates a new Provider instance for the given provider type.
func New(providerType string) (Provider, error) {
	switch providerType {
	case Vertex, "":
		return vertex.New(), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %q (supported: %v)", providerType, SupportedProviders())
	}
}
