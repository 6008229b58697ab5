package assistant

import (
	"math"
	"strings"
	"time"

	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
)

// Request is one chat turn as posted by the chat widget.
type Request struct {
	// Message, Query and Text are accepted aliases for the user's turn. The
	// first non-blank one wins.
	Message string `json:"message,omitempty"`
	Query   string `json:"query,omitempty"`
	Text    string `json:"text,omitempty"`

	UserID   string `json:"user_id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`

	// History holds prior turns in any of the shapes conversation.Normalize
	// accepts.
	History []any `json:"history,omitempty"`
}

// Input returns the trimmed user turn, or "" when none was sent.
func (r *Request) Input() string {
	if r == nil {
		return ""
	}
	for _, s := range []string{r.Message, r.Query, r.Text} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Response is the reply envelope. Latencies are in seconds rounded to
// milliseconds.
type Response struct {
	Response              string             `json:"response"`
	Model                 string             `json:"model"`
	Stage                 stage.Stage        `json:"conversation_stage"`
	ShouldComplete        bool               `json:"should_complete_conversation"`
	Snippets              []string           `json:"rag_snippets"`
	Sources               []retrieval.Source `json:"rag_sources"`
	ClassificationLatency float64            `json:"classification_latency"`
	RetrievalLatency      float64            `json:"retrieval_latency"`
	GenerationLatency     float64            `json:"generation_latency"`
	TotalLatency          float64            `json:"total_latency"`
}

// Seconds converts d to seconds rounded to three decimals.
func Seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
