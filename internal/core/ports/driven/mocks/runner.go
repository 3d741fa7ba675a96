package mocks

import (
	"context"
	"sync"
)

// MockTaskRunner collects submitted tasks. Tasks run only when the test
// calls RunAll, which keeps "has not started by the time Submit returns"
// observable.
type MockTaskRunner struct {
	mu      sync.Mutex
	tasks   []func(ctx context.Context)
	Submits int

	// SubmitErr, when set, is returned by Submit without queueing.
	SubmitErr error
}

// NewMockTaskRunner creates an empty runner.
func NewMockTaskRunner() *MockTaskRunner {
	return &MockTaskRunner{}
}

func (m *MockTaskRunner) Submit(task func(ctx context.Context)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Submits++
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	m.tasks = append(m.tasks, task)
	return nil
}

// RunAll executes every queued task synchronously and clears the queue.
func (m *MockTaskRunner) RunAll(ctx context.Context) {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()

	for _, task := range tasks {
		task(ctx)
	}
}

// Pending returns how many tasks are queued but not yet run.
func (m *MockTaskRunner) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
