package analytics

import (
	"log/slog"
)

// Enqueuer accepts events for asynchronous publishing without blocking.
type Enqueuer interface {
	Enqueue(event *Event) bool
}

// Sink logs every event as a structured record and hands it to an Enqueuer.
// Errors are logged at ERROR severity, everything else at INFO.
type Sink struct {
	logger *slog.Logger
	queue  Enqueuer
}

// NewSink returns a Sink. A nil queue only logs.
func NewSink(logger *slog.Logger, queue Enqueuer) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{logger: logger.With("component", "analytics"), queue: queue}
}

// Emit logs event and enqueues it. It never blocks on the warehouse.
func (s *Sink) Emit(event *Event) {
	if s == nil || event == nil {
		return
	}

	attrs := []any{
		"event", event.EventType,
		"event_id", event.EventID,
		"user_id", event.UserID,
		"thread_id", event.ThreadID,
	}
	if event.Stage != "" {
		attrs = append(attrs, "conversation_stage", event.Stage)
	}
	if event.Model != "" {
		attrs = append(attrs, "model", event.Model)
	}
	if event.Latency.Total > 0 {
		attrs = append(attrs, "total_latency", event.Latency.Total)
	}

	if event.EventType == EventAssistantError {
		s.logger.Error(event.EventType, append(attrs, "error", event.Error)...)
	} else {
		s.logger.Info(event.EventType, attrs...)
	}

	if s.queue != nil {
		s.queue.Enqueue(event)
	}
}
