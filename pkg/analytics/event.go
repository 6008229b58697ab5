// Package analytics defines the conversation events written to the
// analytics warehouse and the sink that emits them off the request path.
package analytics

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventUserMessage is emitted when a chat request is accepted.
	EventUserMessage = "user_message"

	// EventAssistantReply is emitted after a reply is produced.
	EventAssistantReply = "assistant_reply"

	// EventAssistantError is emitted when a request fails.
	EventAssistantError = "assistant_error"

	// UnknownID stands in for missing user and thread IDs.
	UnknownID = "unknown"
)

// Event is a transport-neutral analytics row.
type Event struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	UserID        string    `json:"user_id"`
	ThreadID      string    `json:"thread_id"`
	Role          string    `json:"role,omitempty"`
	Message       string    `json:"message,omitempty"`
	Stage         string    `json:"conversation_stage,omitempty"`
	Language      string    `json:"language,omitempty"`
	Model         string    `json:"model,omitempty"`
	SnippetCount  int       `json:"snippet_count,omitempty"`
	Error         string    `json:"error,omitempty"`
	Latency       Latency   `json:"latency"`
}

// Latency holds phase latencies in seconds.
type Latency struct {
	Classification float64 `json:"classification,omitempty"`
	Retrieval      float64 `json:"retrieval,omitempty"`
	Generation     float64 `json:"generation,omitempty"`
	Total          float64 `json:"total,omitempty"`
}

// NewEvent returns an event of eventType with a fresh ID and timestamp.
// Empty IDs are recorded as UnknownID.
func NewEvent(eventType, userID, threadID string) *Event {
	if userID == "" {
		userID = UnknownID
	}
	if threadID == "" {
		threadID = UnknownID
	}

	return &Event{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		UserID:        userID,
		ThreadID:      threadID,
	}
}
