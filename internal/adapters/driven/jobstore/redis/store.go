// Package redis provides a redis-backed job store. Age-based eviction is
// delegated to redis key expiry: every record is written with a TTL equal
// to the retention window, so an explicit sweep has nothing to do.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*Store)(nil)

const jobPrefix = "job:"

// Store implements driven.JobStore using Redis.
type Store struct {
	client    *redis.Client
	retention time.Duration
}

// NewStore creates a redis-backed job store with the given retention window.
func NewStore(client *redis.Client, retention time.Duration) *Store {
	if retention <= 0 {
		retention = domain.JobRetentionDefault
	}
	return &Store{client: client, retention: retention}
}

// Insert stores a new record with the retention TTL.
func (s *Store) Insert(ctx context.Context, job *domain.Job) error {
	return s.write(ctx, job, s.retention)
}

// Get retrieves a record. Expired keys surface as domain.ErrNotFound, which
// keeps "evicted" indistinguishable from "never created".
func (s *Store) Get(ctx context.Context, id string) (*domain.Job, error) {
	data, err := s.client.Get(ctx, jobPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	var job domain.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Update replaces the record, preserving the remaining TTL so completion
// does not extend a job's lifetime.
func (s *Store) Update(ctx context.Context, job *domain.Job) error {
	ttl, err := s.client.TTL(ctx, jobPrefix+job.ID).Result()
	if err != nil {
		return fmt.Errorf("job ttl: %w", err)
	}
	if ttl < 0 {
		return domain.ErrNotFound
	}
	return s.write(ctx, job, ttl)
}

// Sweep is a no-op: redis expiry already evicts by age.
func (s *Store) Sweep(ctx context.Context, retention time.Duration) (int, error) {
	return 0, nil
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) write(ctx context.Context, job *domain.Job, ttl time.Duration) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := s.client.Set(ctx, jobPrefix+job.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}
