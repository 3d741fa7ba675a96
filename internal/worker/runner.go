// Package worker runs detached answer computations in the background.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskRunner = (*Runner)(nil)

// Runner processes submitted tasks on a fixed pool of goroutines. Tasks are
// fire-and-forget: once accepted they run to completion even if the runner
// is stopping, so in-flight jobs always reach a terminal state.
type Runner struct {
	tasks  chan func(ctx context.Context)
	logger *slog.Logger

	// Configuration
	concurrency int

	// Internal state
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	Logger      *slog.Logger
	Concurrency int // Number of concurrent task processors
	QueueSize   int // Buffered task slots before Submit blocks
}

// NewRunner creates a new background task runner.
func NewRunner(cfg RunnerConfig) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Runner{
		tasks:       make(chan func(ctx context.Context), queueSize),
		logger:      logger,
		concurrency: concurrency,
	}
}

// Start begins the processing goroutines. It returns immediately; the pool
// runs until Stop is called or the context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	r.logger.Info("runner starting", "concurrency", r.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func(runnerID int) {
			defer wg.Done()
			r.processLoop(ctx, stopCh, runnerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(r.doneCh)
	}()
}

// Stop drains the pool. Tasks already dequeued finish; queued tasks still
// run before the goroutines exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	r.logger.Info("runner stopped")
}

// Submit schedules a task for background execution. It returns
// domain.ErrRunnerStopped once the runner has been stopped.
func (r *Runner) Submit(task func(ctx context.Context)) error {
	r.mu.Lock()
	running := r.running
	stopCh := r.stopCh
	r.mu.Unlock()

	if !running {
		return domain.ErrRunnerStopped
	}

	select {
	case r.tasks <- task:
		return nil
	case <-stopCh:
		return domain.ErrRunnerStopped
	}
}

func (r *Runner) processLoop(ctx context.Context, stopCh <-chan struct{}, runnerID int) {
	logger := r.logger.With("runner_id", runnerID)

	for {
		select {
		case <-ctx.Done():
			logger.Info("runner context cancelled")
			return
		case <-stopCh:
			// Drain queued tasks before exiting so accepted work is not lost.
			for {
				select {
				case task := <-r.tasks:
					r.runTask(ctx, task, logger)
				default:
					return
				}
			}
		case task := <-r.tasks:
			r.runTask(ctx, task, logger)
		}
	}
}

// runTask executes a single task, isolating panics so one misbehaving job
// cannot take down the pool.
func (r *Runner) runTask(ctx context.Context, task func(ctx context.Context), logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked",
				"panic", rec,
				"stack", string(debug.Stack()),
			)
		}
	}()
	task(ctx)
}
