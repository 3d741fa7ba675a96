// Package jobstore provides the in-memory registry of deferred answer
// computations. Records live until an age-based sweep evicts them; nothing
// survives a process restart.
package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*MemoryStore)(nil)

// MemoryStore implements driven.JobStore with a mutex-guarded map.
// Records are replaced whole, never edited in place, so a concurrent poller
// observes either the pre- or post-completion record.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job

	// now is injectable so tests can control the retention clock.
	now func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*domain.Job),
		now:  time.Now,
	}
}

// SetClock overrides the store's clock. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Insert stores a new record.
func (s *MemoryStore) Insert(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

// Get returns a copy of the record, or domain.ErrNotFound. "Not found" is
// deliberately ambiguous between never-created and evicted.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

// Update replaces the record for job.ID.
func (s *MemoryStore) Update(ctx context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *job
	s.jobs[job.ID] = &copied
	return nil
}

// Sweep evicts every record older than the retention window, regardless of
// status, and returns how many were removed.
func (s *MemoryStore) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-retention)
	removed := 0
	for id, job := range s.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
