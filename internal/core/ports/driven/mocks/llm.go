package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// MockLLMService is a scripted LLMService for testing.
type MockLLMService struct {
	mu sync.Mutex

	// JSONResponses are returned by CompleteJSON in order; the last one
	// repeats when exhausted.
	JSONResponses []string

	// TextResponse is returned by every Complete call.
	TextResponse string

	CompleteErr     error
	CompleteJSONErr error

	CompleteCalls     int
	CompleteJSONCalls int

	// Prompts records the prompt of every call, in order.
	Prompts []string
}

// NewMockLLMService creates a mock with a sane default plan response.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		JSONResponses: []string{`{"searchQuery":null,"includeAttachments":false,"limit":5}`},
		TextResponse:  "mock answer",
	}
}

func (m *MockLLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteCalls++
	m.Prompts = append(m.Prompts, req.Prompt)
	if m.CompleteErr != nil {
		return "", m.CompleteErr
	}
	return m.TextResponse, nil
}

func (m *MockLLMService) CompleteJSON(ctx context.Context, req driven.CompletionRequest) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteJSONCalls++
	m.Prompts = append(m.Prompts, req.Prompt)
	if m.CompleteJSONErr != nil {
		return nil, m.CompleteJSONErr
	}

	idx := m.CompleteJSONCalls - 1
	if idx >= len(m.JSONResponses) {
		idx = len(m.JSONResponses) - 1
	}
	return []byte(m.JSONResponses[idx]), nil
}

func (m *MockLLMService) Model() string { return "mock-model" }

func (m *MockLLMService) Ping(ctx context.Context) error { return nil }

func (m *MockLLMService) Close() error { return nil }

// TotalCalls returns how many model calls of any kind were made.
func (m *MockLLMService) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompleteCalls + m.CompleteJSONCalls
}

// stringContainsFold is a case-insensitive substring check shared by mocks.
func stringContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
