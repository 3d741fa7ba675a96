package driving

import (
	"context"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// OutcomeStatus labels the result of an Ask call.
type OutcomeStatus string

const (
	// OutcomeDone means the answer resolved synchronously (including the
	// error-fallback answer).
	OutcomeDone OutcomeStatus = "done"

	// OutcomeProcessing means the question was deferred to a background job.
	OutcomeProcessing OutcomeStatus = "processing"
)

// Outcome is the immediate result of asking a question.
type Outcome struct {
	Status  OutcomeStatus       `json:"status"`
	Answer  string              `json:"answer,omitempty"`
	Sources []domain.SourceInfo `json:"sources"`
	JobID   string              `json:"jobId,omitempty"`
	Message string              `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// AssistantService answers inbox questions, deferring attachment-heavy work
// to polled background jobs.
type AssistantService interface {
	// Ask runs the fast pass and either answers synchronously or defers to
	// a job. Empty questions are rejected with domain.ErrInvalidInput and
	// cause no side effects.
	Ask(ctx context.Context, question string) (*Outcome, error)

	// AnswerQuestion runs one engine pass in the given mode. The returned
	// answer is always user-safe; pipeline failures degrade to the fallback
	// text with the raw cause in Answer.Err.
	AnswerQuestion(ctx context.Context, question string, mode domain.AnswerMode) *domain.Answer

	// JobStatus looks up a deferred computation. Unknown and evicted ids
	// both return domain.ErrNotFound.
	JobStatus(ctx context.Context, id string) (*domain.Job, error)
}
