package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driving"
)

// Ensure assistantService implements AssistantService
var _ driving.AssistantService = (*assistantService)(nil)

// assistantService wires the answer engine to the job store: non-heavy
// questions resolve synchronously, heavy ones become polled background jobs.
type assistantService struct {
	engine    *AnswerEngine
	jobs      driven.JobStore
	runner    driven.TaskRunner
	logger    *slog.Logger
	retention time.Duration

	// debug exposes raw error causes on responses when set.
	debug bool
}

// AssistantConfig holds the assistant's collaborators.
type AssistantConfig struct {
	Engine    *AnswerEngine
	Jobs      driven.JobStore
	Runner    driven.TaskRunner
	Logger    *slog.Logger
	Retention time.Duration
	Debug     bool
}

// NewAssistantService creates the assistant.
func NewAssistantService(cfg AssistantConfig) driving.AssistantService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = domain.JobRetentionDefault
	}
	return &assistantService{
		engine:    cfg.Engine,
		jobs:      cfg.Jobs,
		runner:    cfg.Runner,
		logger:    logger,
		retention: retention,
		debug:     cfg.Debug,
	}
}

// Ask runs the fast pass and decides whether to defer.
func (s *assistantService) Ask(ctx context.Context, question string) (*driving.Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrInvalidInput
	}

	fast := s.engine.AnswerQuestion(ctx, question, domain.AnswerModeFast)
	if fast.Err != nil {
		// Pipeline already degraded to the fallback answer; resolve now.
		return s.doneOutcome(fast), nil
	}

	if !fast.Heavy {
		full := s.engine.AnswerQuestion(ctx, question, domain.AnswerModeFull)
		return s.doneOutcome(full), nil
	}

	jobID, err := s.createJob(ctx, question)
	if err != nil {
		return nil, err
	}
	return &driving.Outcome{
		Status:  driving.OutcomeProcessing,
		JobID:   jobID,
		Message: domain.ProcessingMessage,
	}, nil
}

// AnswerQuestion exposes a single engine pass.
func (s *assistantService) AnswerQuestion(ctx context.Context, question string, mode domain.AnswerMode) *domain.Answer {
	return s.engine.AnswerQuestion(ctx, question, mode)
}

// JobStatus is a pure lookup. Unknown and evicted ids are deliberately
// indistinguishable.
func (s *assistantService) JobStatus(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobs.Get(ctx, id)
}

// createJob sweeps expired records, inserts a processing record, and hands
// the full pass to the runner. The task runs after the current handler
// returns; callers must not assume it has started when createJob returns.
func (s *assistantService) createJob(ctx context.Context, question string) (string, error) {
	if swept, err := s.jobs.Sweep(ctx, s.retention); err != nil {
		s.logger.Warn("job sweep failed", "error", err)
	} else if swept > 0 {
		s.logger.Info("evicted expired jobs", "count", swept)
	}

	job := domain.NewJob()
	if err := s.jobs.Insert(ctx, job); err != nil {
		return "", err
	}

	jobID := job.ID
	err := s.runner.Submit(func(taskCtx context.Context) {
		s.runJob(taskCtx, jobID, question)
	})
	if err != nil {
		job.Fail(err.Error())
		if updErr := s.jobs.Update(ctx, job); updErr != nil {
			s.logger.Error("failed to record job dispatch failure", "job_id", jobID, "error", updErr)
		}
		return "", err
	}

	s.logger.Info("deferred heavy question to background job", "job_id", jobID)
	return jobID, nil
}

// runJob executes the full pass for a deferred question and records exactly
// one terminal transition on the job record, even if the pass panics.
func (s *assistantService) runJob(ctx context.Context, jobID, question string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.logger.Error("background job panicked", "job_id", jobID, "panic", r)
		job, err := s.jobs.Get(ctx, jobID)
		if err != nil || job.Terminal() {
			return
		}
		job.Fail(fmt.Sprintf("panic: %v", r))
		if err := s.jobs.Update(ctx, job); err != nil {
			s.logger.Error("failed to record job panic", "job_id", jobID, "error", err)
		}
	}()

	answer := s.engine.AnswerQuestion(ctx, question, domain.AnswerModeFull)

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		// Evicted before completion; nothing to record.
		s.logger.Warn("job record gone before completion", "job_id", jobID)
		return
	}

	if answer.Err != nil {
		job.Fail(answer.Err.Error())
	} else {
		job.Complete(answer.Text, answer.Sources)
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.Error("failed to update job record", "job_id", jobID, "error", err)
		return
	}
	s.logger.Info("background job finished", "job_id", jobID, "status", job.Status)
}

// doneOutcome converts an engine answer into a resolved outcome. Raw error
// detail is exposed only behind the debug switch and never in the answer
// text.
func (s *assistantService) doneOutcome(answer *domain.Answer) *driving.Outcome {
	sources := answer.Sources
	if sources == nil {
		// Keep the sources key in the wire shape even for fallback answers.
		sources = []domain.SourceInfo{}
	}
	out := &driving.Outcome{
		Status:  driving.OutcomeDone,
		Answer:  answer.Text,
		Sources: sources,
	}
	if answer.Err != nil && s.debug {
		out.Error = answer.Err.Error()
	}
	return out
}
