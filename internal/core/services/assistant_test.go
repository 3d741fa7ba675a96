package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driving"
)

type assistantFixture struct {
	svc    driving.AssistantService
	engine *engineFixture
	jobs   *mocks.MockJobStore
	runner *mocks.MockTaskRunner
}

func attachmentPayload(text, contentType string) *driven.AttachmentContent {
	return &driven.AttachmentContent{Bytes: []byte(text), ContentType: contentType}
}

func newAssistantFixture(debug bool) *assistantFixture {
	engine := newEngineFixture()
	jobs := mocks.NewMockJobStore()
	runner := mocks.NewMockTaskRunner()

	svc := NewAssistantService(AssistantConfig{
		Engine: engine.engine,
		Jobs:   jobs,
		Runner: runner,
		Debug:  debug,
	})
	return &assistantFixture{svc: svc, engine: engine, jobs: jobs, runner: runner}
}

func TestAssistant_Ask_EmptyQuestion(t *testing.T) {
	f := newAssistantFixture(false)

	_, err := f.svc.Ask(context.Background(), "   ")

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, f.engine.llm.TotalCalls(), "rejection must have no side effects")
	assert.Zero(t, f.runner.Submits)
}

func TestAssistant_Ask_SmallTalk(t *testing.T) {
	f := newAssistantFixture(false)

	out, err := f.svc.Ask(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeDone, out.Status)
	assert.Equal(t, domain.SmallTalkAnswer, out.Answer)
	assert.Empty(t, out.Sources)
	assert.Zero(t, f.engine.llm.TotalCalls())
}

func TestAssistant_Ask_Synchronous(t *testing.T) {
	f := newAssistantFixture(false)
	f.engine.addMessage("msg-1", "Budget", "numbers inside")
	f.engine.addMessage("msg-2", "Standup", "notes inside")
	f.engine.llm.TextResponse = "Two emails today."

	out, err := f.svc.Ask(context.Background(), "summarize today's important emails")

	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeDone, out.Status)
	assert.Equal(t, "Two emails today.", out.Answer)
	assert.Len(t, out.Sources, 2)
	assert.Empty(t, out.JobID)
	assert.Zero(t, f.runner.Submits)
}

func TestAssistant_Ask_HeavyDefersToJob(t *testing.T) {
	f := newAssistantFixture(false)
	f.engine.addMessage("msg-1", "Finance PDF", "see attached",
		domain.Attachment{ID: "att-1", Filename: "finance.pdf", Size: 8_000_000, MessageID: "msg-1"})
	f.engine.llm.JSONResponses = []string{`{"searchQuery":null,"includeAttachments":true,"limit":5}`}
	f.engine.llm.TextResponse = "The PDF covers the annual results."

	out, err := f.svc.Ask(context.Background(), "what's in the PDF attachment from finance")

	require.NoError(t, err)
	assert.Equal(t, driving.OutcomeProcessing, out.Status)
	require.NotEmpty(t, out.JobID)
	assert.Equal(t, domain.ProcessingMessage, out.Message)

	// The job is retrievable immediately, still processing: the task has
	// not run by the time Ask returns.
	job, err := f.svc.JobStatus(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusProcessing, job.Status)
	assert.Equal(t, 1, f.runner.Pending())

	// Seed the attachment payload so the deferred full pass succeeds.
	f.engine.mailbox.SetAttachmentPayload("att-1",
		attachmentPayload("annual results", "application/pdf"))
	f.runner.RunAll(context.Background())

	job, err = f.svc.JobStatus(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusDone, job.Status)
	assert.Equal(t, "The PDF covers the annual results.", job.Answer)
	require.Len(t, job.Sources, 1)
	assert.Contains(t, job.Sources[0].Attachments, "finance.pdf")
}

func TestAssistant_Ask_JobFailureRecorded(t *testing.T) {
	f := newAssistantFixture(false)
	f.engine.addMessage("msg-1", "Finance PDF", "see attached",
		domain.Attachment{ID: "att-1", Filename: "finance.pdf", Size: 8_000_000, MessageID: "msg-1"})
	f.engine.llm.JSONResponses = []string{`{"searchQuery":null,"includeAttachments":true,"limit":5}`}

	out, err := f.svc.Ask(context.Background(), "what's in the PDF attachment?")
	require.NoError(t, err)
	require.Equal(t, driving.OutcomeProcessing, out.Status)

	// Make the deferred full pass fail at the provider.
	f.engine.mailbox.ListErr = errors.New("mailbox exploded")
	f.runner.RunAll(context.Background())

	job, err := f.svc.JobStatus(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusError, job.Status)
	assert.Contains(t, job.Error, "mailbox exploded")
}

func TestAssistant_Ask_JobPanicRecorded(t *testing.T) {
	f := newAssistantFixture(false)
	f.engine.addMessage("msg-1", "Finance PDF", "see attached",
		domain.Attachment{ID: "att-1", Filename: "finance.pdf", Size: 8_000_000, MessageID: "msg-1"})
	f.engine.llm.JSONResponses = []string{`{"searchQuery":null,"includeAttachments":true,"limit":5}`}

	out, err := f.svc.Ask(context.Background(), "what's in the PDF attachment?")
	require.NoError(t, err)
	require.Equal(t, driving.OutcomeProcessing, out.Status)

	// Make the deferred full pass panic mid-extraction; the job must still
	// reach a terminal state instead of hanging in processing.
	f.engine.mailbox.SetAttachmentPayload("att-1",
		attachmentPayload("annual results", "application/pdf"))
	f.engine.extract.ExtractFunc = func(ctx context.Context, input driven.ExtractInput) driven.ExtractResult {
		panic("extractor blew up")
	}
	f.runner.RunAll(context.Background())

	job, err := f.svc.JobStatus(context.Background(), out.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusError, job.Status)
	assert.Contains(t, job.Error, "extractor blew up")
}

func TestAssistant_Ask_ProviderFailure_DebugGating(t *testing.T) {
	for _, debug := range []bool{false, true} {
		f := newAssistantFixture(debug)
		f.engine.mailbox.ListErr = errors.New("upstream 503")

		out, err := f.svc.Ask(context.Background(), "summarize my inbox")

		require.NoError(t, err)
		assert.Equal(t, driving.OutcomeDone, out.Status)
		assert.Equal(t, domain.FallbackAnswer, out.Answer)
		assert.Empty(t, out.Sources)
		if debug {
			assert.Contains(t, out.Error, "upstream 503")
		} else {
			assert.Empty(t, out.Error, "raw cause is hidden unless debug is on")
		}
	}
}

func TestAssistant_JobStatus_Unknown(t *testing.T) {
	f := newAssistantFixture(false)

	_, err := f.svc.JobStatus(context.Background(), "no-such-job")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
