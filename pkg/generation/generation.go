// Package generation calls the hosted model with the assembled system
// instruction and the windowed conversation.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/stage"
)

// Defaults used for stages without a budget entry.
const (
	DefaultMaxOutputTokens = 1000
	DefaultTemperature     = 0.2
	DefaultTopP            = 0.8
)

// ErrEmptyStream is returned when a stream ends without any text.
var ErrEmptyStream = errors.New("stream produced no text")

// Generator produces a model reply for a chat request.
type Generator interface {
	// Generate performs a single one-shot call.
	Generate(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

	// Stream performs a streaming call, invoking onChunk with every text
	// delta, and returns the assembled response. onChunk may be nil.
	Stream(ctx context.Context, req *llm.ChatRequest, onChunk func(string)) (*llm.ChatResponse, error)
}

// Budget is the sampling budget for a stage.
type Budget struct {
	MaxOutputTokens int
	Temperature     float64
}

// stageBudgets is keyed by stage; stages not listed use the client defaults.
var stageBudgets = map[stage.Stage]Budget{
	stage.Completion:           {MaxOutputTokens: 150, Temperature: 0.1},
	stage.PostEnrollment:       {MaxOutputTokens: 300, Temperature: 0.2},
	stage.EnrollmentReady:      {MaxOutputTokens: 300, Temperature: 0.1},
	stage.EnrollmentCollection: {MaxOutputTokens: 400, Temperature: 0.2},
	stage.Pricing:              {MaxOutputTokens: 800, Temperature: 0.2},
	stage.PaymentOptions:       {MaxOutputTokens: 600, Temperature: 0.2},
	stage.Interested:           {MaxOutputTokens: 600, Temperature: 0.3},
	stage.Initial:              {MaxOutputTokens: 500, Temperature: 0.3},
}

// Client applies stage budgets and the stream then one-shot fallback on top
// of a Generator.
type Client struct {
	gen       Generator
	model     string
	defaults  Budget
	topP      float64
	streaming bool
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithDefaults sets the budget for stages without a table entry. Zero
// values keep the package defaults.
func WithDefaults(maxOutputTokens int, temperature float64) Option {
	return func(c *Client) {
		if maxOutputTokens > 0 {
			c.defaults.MaxOutputTokens = maxOutputTokens
		}
		if temperature > 0 {
			c.defaults.Temperature = temperature
		}
	}
}

// WithTopP sets nucleus sampling for every request.
func WithTopP(topP float64) Option {
	return func(c *Client) {
		if topP > 0 {
			c.topP = topP
		}
	}
}

// WithStreaming toggles the streaming attempt. Streaming is on by default.
func WithStreaming(enabled bool) Option {
	return func(c *Client) { c.streaming = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics counts stream fallbacks.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns a Client over gen.
func NewClient(gen Generator, opts ...Option) *Client {
	c := &Client{
		gen: gen,
		defaults: Budget{
			MaxOutputTokens: DefaultMaxOutputTokens,
			Temperature:     DefaultTemperature,
		},
		topP:      DefaultTopP,
		streaming: true,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// BudgetFor returns the sampling budget for s.
func (c *Client) BudgetFor(s stage.Stage) Budget {
	if b, ok := stageBudgets[s]; ok {
		return b
	}
	return c.defaults
}

// Complete generates a reply. It tries streaming first and falls back once
// to a one-shot call; a failed fallback is returned as is.
func (c *Client) Complete(ctx context.Context, system string, contents []llm.Message, s stage.Stage) (*llm.ChatResponse, error) {
	budget := c.BudgetFor(s)
	maxTokens := budget.MaxOutputTokens
	temperature := budget.Temperature
	topP := c.topP

	req := &llm.ChatRequest{
		Model:       c.model,
		Messages:    contents,
		System:      system,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	if c.streaming {
		stream := true
		req.Stream = &stream

		resp, err := c.gen.Stream(ctx, req, nil)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("streaming generation: %w", err)
		}

		c.logger.Warn("streaming generation failed, falling back to one-shot",
			"stage", s,
			"error", err,
		)
		c.metrics.GenerationFellBack()

		stream = false
	}

	resp, err := c.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	return resp, nil
}
