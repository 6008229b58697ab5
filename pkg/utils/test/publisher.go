package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/leadline/pkg/analytics"
)

// MockPublisher records published events in memory.
type MockPublisher struct {
	// Err is returned from every Publish call when set.
	Err error

	// Block, when non-nil, holds each Publish until it is closed.
	Block chan struct{}

	mu     sync.Mutex
	events []*analytics.Event
	closed bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *analytics.Event) error {
	if event == nil {
		return analytics.ErrNilEvent
	}
	if m.Block != nil {
		<-m.Block
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events in arrival order.
func (m *MockPublisher) Events() []*analytics.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*analytics.Event(nil), m.events...)
}

// EventTypes returns the type of every published event.
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.EventType)
	}
	return out
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
