// Package backends builds the external service clients shared by the serve
// and retrieve commands.
package backends

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/papercomputeco/leadline/pkg/config"
	"github.com/papercomputeco/leadline/pkg/credentials"
	embeddingutils "github.com/papercomputeco/leadline/pkg/embeddings/utils"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	retrievalutils "github.com/papercomputeco/leadline/pkg/retrieval/utils"
)

// NewRetriever builds the configured retrieval backend. It returns a nil
// Retriever when the provider is "none". The returned func releases backend
// connections and is never nil on success.
func NewRetriever(ctx context.Context, cfg *config.Config, creds *credentials.Manager) (retrieval.Retriever, func(), error) {
	opts := RetrieverOpts(cfg)

	if opts.ProviderType == retrievalutils.ProviderVertexSearch {
		tokens, err := creds.ForService(ctx, credentials.ServiceSearch)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving search credentials: %w", err)
		}
		opts.TokenSource = tokens
	}

	r, err := retrievalutils.NewRetriever(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating retriever: %w", err)
	}

	closer := func() {}
	if cl, ok := r.(io.Closer); ok {
		closer = func() { _ = cl.Close() }
	}
	return r, closer, nil
}

// RetrieverOpts maps cfg onto retriever options without credentials.
func RetrieverOpts(cfg *config.Config) *retrievalutils.NewRetrieverOpts {
	return &retrievalutils.NewRetrieverOpts{
		ProviderType: cfg.Retrieval.Provider,
		Engine:       cfg.Retrieval.Engine,
		Endpoint:     cfg.Retrieval.Endpoint,
		Timeout:      time.Duration(cfg.Retrieval.TimeoutSeconds) * time.Second,
		Target:       cfg.Retrieval.Target,
		Collection:   cfg.Retrieval.Collection,
		Embedding: &embeddingutils.NewEmbedderOpts{
			ProviderType: cfg.Embedding.Provider,
			TargetURL:    cfg.Embedding.Target,
			Model:        cfg.Embedding.Model,
			Dimensions:   cfg.Embedding.Dimensions,
		},
	}
}
