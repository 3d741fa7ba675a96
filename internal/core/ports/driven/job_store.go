package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// JobStore is the registry of deferred answer computations, polled by the
// caller. Mutation is replace-by-id only, never a partial in-place edit, so
// a poller always observes either the pre- or post-completion record.
type JobStore interface {
	// Insert stores a new job record.
	Insert(ctx context.Context, job *domain.Job) error

	// Get returns the record for an id, or domain.ErrNotFound for unknown
	// or evicted ids.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// Update replaces the record for job.ID.
	Update(ctx context.Context, job *domain.Job) error

	// Sweep evicts all records older than the retention window, regardless
	// of status, and returns how many were removed. Backends that expire
	// records natively may report zero.
	Sweep(ctx context.Context, retention time.Duration) (int, error)
}
