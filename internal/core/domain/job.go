package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a deferred answer computation.
// Transitions are monotonic: processing moves to exactly one of done or
// error and is never revisited.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// JobRetentionDefault is how long job records are kept before age-based
// eviction, regardless of status.
const JobRetentionDefault = 30 * time.Minute

// Job is a detached, polled unit of deferred answer computation.
type Job struct {
	ID        string       `json:"id"`
	Status    JobStatus    `json:"status"`
	Answer    string       `json:"answer,omitempty"`
	Sources   []SourceInfo `json:"sources,omitempty"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewJob creates a job in the processing state with a unique id.
func NewJob() *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    JobStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Terminal reports whether the job has reached done or error.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}

// Complete marks the job done with its result. No-op once terminal.
func (j *Job) Complete(answer string, sources []SourceInfo) {
	if j.Terminal() {
		return
	}
	j.Status = JobStatusDone
	j.Answer = answer
	j.Sources = sources
	j.UpdatedAt = time.Now()
}

// Fail marks the job errored. No-op once terminal.
func (j *Job) Fail(msg string) {
	if j.Terminal() {
		return
	}
	j.Status = JobStatusError
	j.Error = msg
	j.UpdatedAt = time.Now()
}
