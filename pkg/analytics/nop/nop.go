// Package nop provides a Publisher that discards events.
package nop

import (
	"context"

	"github.com/papercomputeco/leadline/pkg/analytics"
)

// Publisher is a no-op analytics publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op analytics publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish validates input and otherwise does nothing.
func (p *Publisher) Publish(_ context.Context, event *analytics.Event) error {
	if event == nil {
		return analytics.ErrNilEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
