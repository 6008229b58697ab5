package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/leadline/pkg/retrieval"
)

// MockRetriever returns canned chunks, truncated to topK.
type MockRetriever struct {
	Chunks []retrieval.Chunk
	Err    error

	mu    sync.Mutex
	calls []int
}

func NewMockRetriever(chunks ...retrieval.Chunk) *MockRetriever {
	return &MockRetriever{Chunks: chunks}
}

func (m *MockRetriever) Search(_ context.Context, _ string, topK int) ([]retrieval.Chunk, error) {
	m.mu.Lock()
	m.calls = append(m.calls, topK)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if topK < len(m.Chunks) {
		return m.Chunks[:topK], nil
	}
	return m.Chunks, nil
}

// Calls returns the topK of every Search call.
func (m *MockRetriever) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}
