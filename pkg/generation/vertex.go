package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/llm/provider"
	"github.com/papercomputeco/leadline/pkg/sse"
)

// DefaultTimeout is the HTTP client timeout for generation calls.
const DefaultTimeout = 5 * time.Minute

const maxErrorBody = 4096

// HTTPStatusError is returned when the model endpoint answers with a
// non-success status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("model endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// VertexConfig configures a Vertex generator.
type VertexConfig struct {
	Project  string
	Location string
	Model    string

	// Endpoint replaces https://{location}-aiplatform.googleapis.com/v1.
	Endpoint string

	// TokenSource authorizes requests. Nil sends no Authorization header.
	TokenSource oauth2.TokenSource

	// Timeout overrides DefaultTimeout.
	Timeout time.Duration

	// Logger receives the raw SSE capture of streams that yield no text,
	// when debug logging is enabled.
	Logger *slog.Logger
}

// Vertex calls Gemini models on Vertex AI over REST.
type Vertex struct {
	modelURL   string
	tokens     oauth2.TokenSource
	codec      provider.Provider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewVertex returns a Vertex generator.
func NewVertex(cfg VertexConfig) (*Vertex, error) {
	if cfg.Project == "" || cfg.Location == "" || cfg.Model == "" {
		return nil, errors.New("vertex: project, location and model are required")
	}

	codec, err := provider.New(provider.Vertex)
	if err != nil {
		return nil, err
	}

	base := cfg.Endpoint
	if base == "" {
		base = fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", cfg.Location)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Vertex{
		modelURL: fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s",
			strings.TrimRight(base, "/"), cfg.Project, cfg.Location, cfg.Model),
		tokens:     cfg.TokenSource,
		codec:      codec,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// Generate calls :generateContent.
func (v *Vertex) Generate(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	resp, err := v.post(ctx, ":generateContent", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	out, err := v.codec.ParseResponse(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if out.Model == "" {
		out.Model = req.Model
	}
	return out, nil
}

// Stream calls :streamGenerateContent with SSE framing. Chunks withheld for
// safety are skipped.
func (v *Vertex) Stream(ctx context.Context, req *llm.ChatRequest, onChunk func(string)) (*llm.ChatResponse, error) {
	resp, err := v.post(ctx, ":streamGenerateContent?alt=sse", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &llm.ChatResponse{
		Model:     req.Model,
		CreatedAt: time.Now(),
	}

	var (
		text strings.Builder
		raw  bytes.Buffer
		opts []sse.Option
	)
	if v.logger != nil && v.logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, sse.WithTee(&raw))
	}
	reader := sse.NewReader(resp.Body, opts...)
	for {
		ev, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil {
			break
		}

		chunk, err := v.codec.ParseStreamChunk([]byte(ev.Data))
		if err != nil {
			return nil, fmt.Errorf("parsing stream chunk: %w", err)
		}
		if chunk == nil {
			continue
		}

		if chunk.Model != "" {
			out.Model = chunk.Model
		}
		if chunk.Usage != nil {
			out.Usage = chunk.Usage
		}
		if chunk.StopReason != "" {
			out.StopReason = chunk.StopReason
		}
		if chunk.Blocked {
			continue
		}

		if delta := chunk.Message.GetText(); delta != "" {
			text.WriteString(delta)
			if onChunk != nil {
				onChunk(delta)
			}
		}
	}

	if text.Len() == 0 {
		if raw.Len() > 0 {
			v.logger.DebugContext(ctx, "model stream produced no text", "raw", raw.String())
		}
		return nil, ErrEmptyStream
	}

	out.Message = llm.NewTextMessage(llm.RoleAssistant, text.String())
	out.Done = true
	return out, nil
}

func (v *Vertex) post(ctx context.Context, method string, req *llm.ChatRequest) (*http.Response, error) {
	body, err := v.codec.EncodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.modelURL+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if v.tokens != nil {
		tok, err := v.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("fetching access token: %w", err)
		}
		tok.SetAuthHeader(httpReq)
	}

	resp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	return resp, nil
}

var _ Generator = (*Vertex)(nil)
