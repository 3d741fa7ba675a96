package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// MockJobStore is a map-backed JobStore for testing.
type MockJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job

	InsertErr error
	GetErr    error
	UpdateErr error

	SweepCalls int
}

// NewMockJobStore creates an empty store.
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[string]*domain.Job)}
}

func (m *MockJobStore) Insert(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *MockJobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *MockJobStore) Update(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *MockJobStore) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SweepCalls++
	cutoff := time.Now().Add(-retention)
	removed := 0
	for id, job := range m.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(m.jobs, id)
			removed++
		}
	}
	return removed, nil
}
