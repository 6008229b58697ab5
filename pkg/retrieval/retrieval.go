// Package retrieval fetches knowledge-base snippets for the prompt. Failures
// never reach the caller: a failed search degrades to an empty result.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/stage"
	"github.com/papercomputeco/leadline/pkg/utils"
)

const (
	// DefaultTopK is the search depth for early and mid conversation.
	DefaultTopK = 5

	// LateStageTopK is the search depth once the lead is enrolling.
	LateStageTopK = 3

	// MaxSnippets caps the snippets handed to the prompt.
	MaxSnippets = 3

	// MaxSnippetChars is the per-snippet character budget.
	MaxSnippetChars = 500
)

// ErrStatus is wrapped by backends when the search service answers with a
// non-success status.
var ErrStatus = errors.New("unexpected retrieval status")

// Chunk is one ranked search hit.
type Chunk struct {
	Text  string
	Title string
	Link  string
	Score float32
}

// Retriever searches a knowledge base.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]Chunk, error)
}

// Source identifies the document a snippet came from.
type Source struct {
	Label  string `json:"label"`
	Folder string `json:"folder,omitempty"`
}

// Snippet is a filtered, truncated chunk ready for the prompt.
type Snippet struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Result is the outcome of Retrieve. The zero value means no context.
type Result struct {
	Snippets []Snippet
}

// Texts returns the snippet texts in rank order.
func (r Result) Texts() []string {
	out := make([]string, 0, len(r.Snippets))
	for _, s := range r.Snippets {
		out = append(out, s.Text)
	}
	return out
}

// Sources returns the snippet sources in rank order.
func (r Result) Sources() []Source {
	out := make([]Source, 0, len(r.Snippets))
	for _, s := range r.Snippets {
		out = append(out, s.Source)
	}
	return out
}

// Client wraps a Retriever with stage-aware depth, relevance filtering and
// soft failure.
type Client struct {
	retriever Retriever
	topK      int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTopK sets the search depth used outside late stages.
func WithTopK(k int) Option {
	return func(c *Client) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithLogger sets the logger for degraded searches.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics counts degraded searches.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient returns a Client over r. A nil r always yields empty results.
func NewClient(r Retriever, opts ...Option) *Client {
	c := &Client{
		retriever: r,
		topK:      DefaultTopK,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TopK returns the search depth for s.
func (c *Client) TopK(s stage.Stage) int {
	if stage.IsLate(s) {
		return LateStageTopK
	}
	return c.topK
}

// Retrieve searches for query and returns at most MaxSnippets relevant
// snippets. Errors are logged and yield an empty Result.
func (c *Client) Retrieve(ctx context.Context, query string, s stage.Stage) Result {
	if c == nil || c.retriever == nil || strings.TrimSpace(query) == "" {
		return Result{}
	}

	chunks, err := c.retriever.Search(ctx, query, c.TopK(s))
	if err != nil {
		c.logger.Warn("retrieval failed, continuing without context",
			"stage", s,
			"error", err,
		)
		c.metrics.RetrievalFailed()
		return Result{}
	}

	var res Result
	for _, ch := range chunks {
		if len(res.Snippets) == MaxSnippets {
			break
		}
		text := strings.TrimSpace(ch.Text)
		if text == "" || !Relevant(text) {
			continue
		}
		res.Snippets = append(res.Snippets, Snippet{
			Text:   utils.Truncate(text, MaxSnippetChars),
			Source: SourceFor(ch.Title, ch.Link),
		})
	}

	c.logger.Debug("retrieval complete",
		"stage", s,
		"chunks", len(chunks),
		"snippets", len(res.Snippets),
	)

	return res
}

// relevanceKeywords keeps chunks about programs, start months, money or
// enrollment.
var relevanceKeywords = []string{
	// programs
	"esthetic", "aesthetic", "nail", "wax", "makeup", "make-up", "cidesco",
	"skin", "cosmetology", "hair", "manicure", "barber", "teacher",
	"instructor", "program", "course", "class", "schedule", "hours",
	"campus", "full time", "part time", "full-time", "part-time",
	// months
	"january", "february", "march", "april", "may", "june", "july",
	"august", "september", "october", "november", "december",
	"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
	"agosto", "septiembre", "octubre", "noviembre", "diciembre",
	// money and enrollment
	"tuition", "price", "cost", "fee", "payment", "financial aid",
	"title iv", "loan", "grant", "scholarship", "kit", "enroll",
	"admission", "application", "register", "registration", "start date",
	"matrícula", "matricula", "precio", "costo", "pago", "inscripción",
	"horario", "curso",
}

// Relevant reports whether text mentions any relevance keyword.
func Relevant(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range relevanceKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// SourceFor derives a display label and folder from a hit's title and link.
// The label falls back to the link's base name when the title is empty.
func SourceFor(title, link string) Source {
	link = strings.TrimSpace(link)
	src := Source{Label: strings.TrimSpace(title)}

	if link == "" {
		if src.Label == "" {
			src.Label = "unknown"
		}
		return src
	}

	p := link
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
	}
	p = strings.TrimRight(p, "/")

	if src.Label == "" {
		src.Label = path.Base(p)
	}
	if dir := path.Dir(p); dir != "." && dir != "/" {
		src.Folder = dir
	}
	return src
}
