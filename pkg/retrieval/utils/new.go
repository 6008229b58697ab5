// Package retrievalutils builds a retrieval.Retriever from configuration.
package retrievalutils

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	embeddingutils "github.com/papercomputeco/leadline/pkg/embeddings/utils"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/retrieval/qdrant"
	"github.com/papercomputeco/leadline/pkg/retrieval/vertexsearch"
)

// Provider names.
const (
	ProviderNone         = "none"
	ProviderVertexSearch = "vertexsearch"
	ProviderQdrant       = "qdrant"
)

type NewRetrieverOpts struct {
	ProviderType string

	// vertexsearch
	Engine      string
	Endpoint    string
	Timeout     time.Duration
	TokenSource oauth2.TokenSource

	// qdrant
	Target     string
	Collection string
	Embedding  *embeddingutils.NewEmbedderOpts
}

// NewRetriever returns the configured backend. Provider "none" returns a nil
// Retriever and no error. Backends that hold connections implement io.Closer.
func NewRetriever(o *NewRetrieverOpts) (retrieval.Retriever, error) {
	switch o.ProviderType {
	case ProviderNone, "":
		return nil, nil
	case ProviderVertexSearch:
		return vertexsearch.New(vertexsearch.Config{
			Engine:      o.Engine,
			Endpoint:    o.Endpoint,
			Timeout:     o.Timeout,
			TokenSource: o.TokenSource,
		})
	case ProviderQdrant:
		embedOpts := o.Embedding
		if embedOpts == nil {
			embedOpts = &embeddingutils.NewEmbedderOpts{}
		}
		embedder, err := embeddingutils.NewEmbedder(embedOpts)
		if err != nil {
			return nil, fmt.Errorf("creating embedder: %w", err)
		}
		r, err := qdrant.New(qdrant.Config{
			Target:     o.Target,
			Collection: o.Collection,
		}, embedder)
		if err != nil {
			embedder.Close()
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported retrieval provider: %s", o.ProviderType)
	}
}
