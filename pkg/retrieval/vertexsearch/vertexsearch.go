// Package vertexsearch implements retrieval.Retriever on Vertex AI Search
// (Discovery Engine) through its REST search endpoint.
package vertexsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/papercomputeco/leadline/pkg/retrieval"
)

const (
	// DefaultEndpoint is the Discovery Engine API base URL.
	DefaultEndpoint = "https://discoveryengine.googleapis.com/v1"

	// DefaultTimeout bounds every search call.
	DefaultTimeout = 8 * time.Second

	maxErrorBody = 1024
)

// Config configures a Retriever.
type Config struct {
	// Engine is the full engine resource name, e.g.
	// "projects/p/locations/global/collections/default_collection/engines/e".
	Engine string

	// Endpoint overrides DefaultEndpoint.
	Endpoint string

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration

	// TokenSource authorizes requests. Nil sends no Authorization header.
	TokenSource oauth2.TokenSource
}

// Retriever searches a Vertex AI Search engine.
type Retriever struct {
	url        string
	tokens     oauth2.TokenSource
	httpClient *http.Client
}

// New returns a Retriever for cfg.Engine.
func New(cfg Config) (*Retriever, error) {
	engine := strings.Trim(strings.TrimSpace(cfg.Engine), "/")
	if engine == "" {
		return nil, errors.New("vertexsearch: engine is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Retriever{
		url:        strings.TrimRight(endpoint, "/") + "/" + engine + "/servingConfigs/default_search:search",
		tokens:     cfg.TokenSource,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type searchRequest struct {
	Query             string            `json:"query"`
	PageSize          int               `json:"pageSize"`
	ContentSearchSpec contentSearchSpec `json:"contentSearchSpec"`
}

type contentSearchSpec struct {
	SnippetSpec           snippetSpec           `json:"snippetSpec"`
	ExtractiveContentSpec extractiveContentSpec `json:"extractiveContentSpec"`
}

type snippetSpec struct {
	ReturnSnippet bool `json:"returnSnippet"`
}

type extractiveContentSpec struct {
	MaxExtractiveSegmentCount int `json:"maxExtractiveSegmentCount"`
}

type searchResponse struct {
	Results []struct {
		Document struct {
			DerivedStructData derivedData `json:"derivedStructData"`
		} `json:"document"`
	} `json:"results"`
}

type derivedData struct {
	Link     string `json:"link"`
	Title    string `json:"title"`
	Snippets []struct {
		Snippet string `json:"snippet"`
	} `json:"snippets"`
	ExtractiveSegments []struct {
		Content string `json:"content"`
	} `json:"extractive_segments"`
}

// Search runs query against the engine and returns up to topK chunks.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]retrieval.Chunk, error) {
	body, err := json.Marshal(searchRequest{
		Query:    query,
		PageSize: topK,
		ContentSearchSpec: contentSearchSpec{
			SnippetSpec:           snippetSpec{ReturnSnippet: true},
			ExtractiveContentSpec: extractiveContentSpec{MaxExtractiveSegmentCount: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if r.tokens != nil {
		tok, err := r.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("fetching access token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %d: %s", retrieval.ErrStatus, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	chunks := make([]retrieval.Chunk, 0, len(sr.Results))
	for _, res := range sr.Results {
		d := res.Document.DerivedStructData
		text := d.text()
		if text == "" {
			continue
		}
		chunks = append(chunks, retrieval.Chunk{
			Text:  text,
			Title: d.Title,
			Link:  d.Link,
		})
	}

	return chunks, nil
}

// text prefers extractive segments over snippets.
func (d derivedData) text() string {
	for _, seg := range d.ExtractiveSegments {
		if t := strings.TrimSpace(seg.Content); t != "" {
			return t
		}
	}
	for _, sn := range d.Snippets {
		if t := strings.TrimSpace(sn.Snippet); t != "" {
			return t
		}
	}
	return ""
}

var _ retrieval.Retriever = (*Retriever)(nil)
