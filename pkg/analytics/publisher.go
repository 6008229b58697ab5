package analytics

import "context"

// Publisher writes events to a warehouse backend.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
