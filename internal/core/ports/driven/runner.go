package driven

import "context"

// TaskRunner detaches a unit of work from the caller's request/response
// cycle. A submitted task runs after Submit returns, exactly once, to
// completion or failure; there is no cancellation hook and no backpressure.
type TaskRunner interface {
	// Submit schedules the task. Callers must not assume it has started by
	// the time Submit returns.
	Submit(task func(ctx context.Context)) error
}
