package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found.
	// For jobs this is intentionally ambiguous: never created, already
	// evicted, and bad id all look the same to a poller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrPlanParse indicates the planner model returned malformed JSON
	ErrPlanParse = errors.New("plan parse failed")

	// ErrLLMUnavailable indicates no language model service is configured
	ErrLLMUnavailable = errors.New("language model unavailable")

	// ErrChannelClosed indicates the realtime channel is not connected
	ErrChannelClosed = errors.New("channel closed")

	// ErrRunnerStopped indicates the task runner is no longer accepting work
	ErrRunnerStopped = errors.New("runner stopped")
)
