// Package qdrant implements retrieval.Retriever on a Qdrant collection. The
// query is embedded first, then matched against points whose payload carries
// "text", "title" and "source".
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/leadline/pkg/embeddings"
	"github.com/papercomputeco/leadline/pkg/retrieval"
)

// Payload keys read from each point.
const (
	PayloadText   = "text"
	PayloadTitle  = "title"
	PayloadSource = "source"
)

// DefaultPort is Qdrant's gRPC port.
const DefaultPort = 6334

// Querier is the subset of *qdrant.Client used for search.
type Querier interface {
	Query(ctx context.Context, request *qc.QueryPoints) ([]*qc.ScoredPoint, error)
	Close() error
}

// Config configures a Retriever.
type Config struct {
	// Target is host[:port] of the gRPC endpoint.
	Target     string
	Collection string
	APIKey     string
	UseTLS     bool
}

// Retriever searches a Qdrant collection.
type Retriever struct {
	client     Querier
	collection string
	embedder   embeddings.Embedder
}

// New dials Qdrant at cfg.Target.
func New(cfg Config, embedder embeddings.Embedder) (*Retriever, error) {
	host, port, err := splitTarget(cfg.Target)
	if err != nil {
		return nil, err
	}

	client, err := qc.NewClient(&qc.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return NewWithClient(client, cfg.Collection, embedder)
}

// NewWithClient builds a Retriever on an existing client.
func NewWithClient(client Querier, collection string, embedder embeddings.Embedder) (*Retriever, error) {
	if collection == "" {
		return nil, errors.New("qdrant: collection is required")
	}
	if embedder == nil {
		return nil, errors.New("qdrant: embedder is required")
	}
	return &Retriever{client: client, collection: collection, embedder: embedder}, nil
}

// Search embeds query and returns the topK nearest points.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]retrieval.Chunk, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	points, err := r.client.Query(ctx, &qc.QueryPoints{
		CollectionName: r.collection,
		Query:          qc.NewQuery(vec...),
		Limit:          qc.PtrOf(uint64(topK)),
		WithPayload:    qc.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", r.collection, err)
	}

	chunks := make([]retrieval.Chunk, 0, len(points))
	for _, p := range points {
		text := payloadString(p.GetPayload(), PayloadText)
		if text == "" {
			continue
		}
		chunks = append(chunks, retrieval.Chunk{
			Text:  text,
			Title: payloadString(p.GetPayload(), PayloadTitle),
			Link:  payloadString(p.GetPayload(), PayloadSource),
			Score: p.GetScore(),
		})
	}

	return chunks, nil
}

// Close closes the underlying client and embedder.
func (r *Retriever) Close() error {
	return errors.Join(r.client.Close(), r.embedder.Close())
}

func payloadString(payload map[string]*qc.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return v.GetStringValue()
}

func splitTarget(target string) (string, int, error) {
	if target == "" {
		return "", 0, errors.New("qdrant: target is required")
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, DefaultPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("qdrant: invalid port %q: %w", portStr, err)
	}
	return host, port, nil
}

var _ retrieval.Retriever = (*Retriever)(nil)
