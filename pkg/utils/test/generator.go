package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/leadline/pkg/llm"
)

// MockGenerator replies with Reply and records every request it saw.
type MockGenerator struct {
	Reply     string
	Model     string
	StreamErr error
	Err       error

	mu       sync.Mutex
	requests []*llm.ChatRequest
	streams  int
	oneShots int
}

func NewMockGenerator(reply string) *MockGenerator {
	return &MockGenerator{Reply: reply, Model: "gemini-test"}
}

func (m *MockGenerator) Generate(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	m.record(req, false)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.response(), nil
}

func (m *MockGenerator) Stream(_ context.Context, req *llm.ChatRequest, onChunk func(string)) (*llm.ChatResponse, error) {
	m.record(req, true)
	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	if onChunk != nil {
		onChunk(m.Reply)
	}
	return m.response(), nil
}

// Requests returns every request received, oldest first.
func (m *MockGenerator) Requests() []*llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*llm.ChatRequest(nil), m.requests...)
}

// Counts returns the number of streaming and one-shot calls.
func (m *MockGenerator) Counts() (streams, oneShots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streams, m.oneShots
}

func (m *MockGenerator) record(req *llm.ChatRequest, stream bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if stream {
		m.streams++
	} else {
		m.oneShots++
	}
}

func (m *MockGenerator) response() *llm.ChatResponse {
	return &llm.ChatResponse{
		Model:   m.Model,
		Message: llm.NewTextMessage(llm.RoleAssistant, m.Reply),
		Done:    true,
	}
}
