package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driving"
)

// ErrJobTimeout means the job did not reach a terminal status within the
// polling budget. The job itself keeps running; only the wait gives up.
var ErrJobTimeout = errors.New("job still processing after polling budget")

// WaitForJob polls a deferred computation until it reaches a terminal
// status. Polling is client-driven: there is no push notification, so the
// caller owns the interval and attempt budget.
func WaitForJob(ctx context.Context, svc driving.AssistantService, jobID string, attempts int, interval time.Duration) (*domain.Job, error) {
	if attempts <= 0 {
		attempts = 45
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}

	for i := 0; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		job, err := svc.JobStatus(ctx, jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Ambiguous by contract: never ran, evicted, or bad id.
				return nil, fmt.Errorf("job %s: %w", jobID, err)
			}
			continue
		}
		if job.Terminal() {
			return job, nil
		}
	}
	return nil, ErrJobTimeout
}
