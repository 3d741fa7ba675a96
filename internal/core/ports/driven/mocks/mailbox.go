package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// MockMailboxProvider is an in-memory MailboxProvider for testing.
type MockMailboxProvider struct {
	mu       sync.Mutex
	messages []*domain.Message
	byID     map[string]*domain.Message
	payloads map[string]*driven.AttachmentContent

	// Errors to inject per operation (nil = succeed)
	ListErr     error
	GetErr      error
	DownloadErr error

	// Call counters
	ListCalls     int
	GetCalls      int
	DownloadCalls int

	// ListSearches records the search filter of each list call, in order.
	ListSearches []string
}

// NewMockMailboxProvider creates an empty mock provider.
func NewMockMailboxProvider() *MockMailboxProvider {
	return &MockMailboxProvider{
		byID:     make(map[string]*domain.Message),
		payloads: make(map[string]*driven.AttachmentContent),
	}
}

// AddMessage seeds a message.
func (m *MockMailboxProvider) AddMessage(msg *domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	m.byID[msg.ID] = msg
}

// SetAttachmentPayload seeds downloadable bytes for an attachment id.
func (m *MockMailboxProvider) SetAttachmentPayload(attachmentID string, content *driven.AttachmentContent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[attachmentID] = content
}

func (m *MockMailboxProvider) ListMessages(ctx context.Context, opts driven.ListOptions) ([]*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	m.ListSearches = append(m.ListSearches, opts.Search)
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []*domain.Message
	for _, msg := range m.messages {
		if opts.Search != "" && !contains(msg, opts.Search) {
			continue
		}
		out = append(out, msg)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockMailboxProvider) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	msg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func (m *MockMailboxProvider) DownloadAttachment(ctx context.Context, attachmentID, messageID string) (*driven.AttachmentContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DownloadCalls++
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	if messageID == "" {
		return nil, fmt.Errorf("message id required to download attachment %s", attachmentID)
	}
	content, ok := m.payloads[attachmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}

func contains(msg *domain.Message, search string) bool {
	return stringContainsFold(msg.Subject, search) || stringContainsFold(msg.BodyText, search)
}
