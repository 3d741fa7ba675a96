package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// MockExtractor returns scripted extraction results keyed by filename.
type MockExtractor struct {
	mu sync.Mutex

	// Results maps filename to the result to return. Missing filenames get
	// the Default result.
	Results map[string]driven.ExtractResult

	// Default is returned for files with no scripted result.
	Default driven.ExtractResult

	// ExtractFunc, when set, replaces the scripted behaviour entirely.
	ExtractFunc func(ctx context.Context, input driven.ExtractInput) driven.ExtractResult

	ExtractCalls int
}

// NewMockExtractor creates a mock that extracts everything as plain text.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{
		Results: make(map[string]driven.ExtractResult),
		Default: driven.ExtractResult{Text: "extracted text"},
	}
}

func (m *MockExtractor) Extract(ctx context.Context, input driven.ExtractInput) driven.ExtractResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExtractCalls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, input)
	}
	if res, ok := m.Results[input.Filename]; ok {
		return res
	}
	return m.Default
}
