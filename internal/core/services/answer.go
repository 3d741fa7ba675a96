package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/runtime"
)

// answerSystemPrompt is the fixed instruction for the final answer call.
const answerSystemPrompt = `You are a voice assistant for an email inbox. ` +
	`Answer the question using only the provided context. ` +
	`If the context is not sufficient to answer, say so plainly. ` +
	`Keep the answer concise and natural to read aloud; simple markdown is fine.`

const (
	// bodyExcerptLimit caps how much of each message body enters the context.
	bodyExcerptLimit = 1200

	// attachmentExcerptLimit caps extracted attachment text per attachment.
	attachmentExcerptLimit = 2000

	truncationMarker = " [truncated]"
)

// AnswerEngine runs the fast/full question-answering pipeline: plan, list,
// fetch, classify, build context, answer.
type AnswerEngine struct {
	mailbox   driven.MailboxProvider
	extractor driven.Extractor
	planner   *Planner
	services  *runtime.Services
	logger    *slog.Logger
}

// AnswerEngineConfig holds the engine's collaborators.
type AnswerEngineConfig struct {
	Mailbox   driven.MailboxProvider
	Extractor driven.Extractor
	Planner   *Planner
	Services  *runtime.Services
	Logger    *slog.Logger
}

// NewAnswerEngine creates an answer engine.
func NewAnswerEngine(cfg AnswerEngineConfig) *AnswerEngine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerEngine{
		mailbox:   cfg.Mailbox,
		extractor: cfg.Extractor,
		planner:   cfg.Planner,
		services:  cfg.Services,
		logger:    logger,
	}
}

// AnswerQuestion runs one pipeline pass. The returned answer is always
// user-safe: any failure between planning and answering degrades to the
// fixed fallback text with the raw cause in Answer.Err, never in the text.
func (e *AnswerEngine) AnswerQuestion(ctx context.Context, question string, mode domain.AnswerMode) *domain.Answer {
	if IsSmallTalk(question) {
		return &domain.Answer{
			Text:    domain.SmallTalkAnswer,
			Heavy:   false,
			Sources: []domain.SourceInfo{},
		}
	}

	answer, err := e.answer(ctx, question, mode)
	if err != nil {
		e.logger.Error("answer pipeline failed",
			"mode", mode,
			"error", err,
		)
		return domain.FallbackAnswerFor(err)
	}
	return answer
}

// answer is the fallible pipeline body, steps 2-9. Per-attachment failures
// are absorbed inline; everything else propagates to the single recovery
// boundary in AnswerQuestion.
func (e *AnswerEngine) answer(ctx context.Context, question string, mode domain.AnswerMode) (*domain.Answer, error) {
	plan, err := e.planner.Plan(ctx, question)
	if err != nil {
		return nil, err
	}

	includeAttachments := plan.IncludeAttachments || WantsAttachments(question)
	limit := plan.Limit
	search := plan.SearchQuery
	if PrefersLatest(question) {
		// Recency intent trumps topical search.
		limit = 1
		search = ""
	}

	messages, err := e.listMessages(ctx, limit, search)
	if err != nil {
		return nil, err
	}

	full := make([]*domain.Message, 0, len(messages))
	var attachments []domain.Attachment
	for _, summary := range messages {
		msg, err := e.mailbox.GetMessage(ctx, summary.ID)
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", summary.ID, err)
		}
		full = append(full, msg)
		for _, att := range msg.Attachments {
			if att.MessageID == "" {
				att.MessageID = msg.ID
			}
			attachments = append(attachments, att)
		}
	}

	heavy := includeAttachments && EstimateHeavyWork(attachments)

	sources := make([]domain.SourceInfo, 0, len(full))
	for _, msg := range full {
		sources = append(sources, domain.NewSourceInfo(msg))
	}

	if mode == domain.AnswerModeFast {
		return &domain.Answer{
			Text:    domain.PendingAnswer,
			Heavy:   heavy,
			Sources: sources,
		}, nil
	}

	contextBlock := buildMessageContext(full)
	if includeAttachments {
		contextBlock += e.buildAttachmentContext(ctx, attachments)
	}

	llm := e.services.LLMService()
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	text, err := llm.Complete(ctx, driven.CompletionRequest{
		System: answerSystemPrompt,
		Prompt: fmt.Sprintf("Question: %s\n\nInbox context:\n%s", question, contextBlock),
	})
	if err != nil {
		return nil, fmt.Errorf("answer completion: %w", err)
	}

	return &domain.Answer{
		Text:    text,
		Heavy:   heavy,
		Sources: sources,
	}, nil
}

// listMessages applies the fallback rule: an empty search-filtered list is
// retried exactly once without the filter, treating a wrong planner query as
// recoverable rather than as an empty answer.
func (e *AnswerEngine) listMessages(ctx context.Context, limit int, search string) ([]*domain.Message, error) {
	messages, err := e.mailbox.ListMessages(ctx, driven.ListOptions{Limit: limit, Search: search})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(messages) == 0 && search != "" {
		messages, err = e.mailbox.ListMessages(ctx, driven.ListOptions{Limit: limit})
		if err != nil {
			return nil, fmt.Errorf("list messages unfiltered: %w", err)
		}
	}
	return messages, nil
}

// buildMessageContext renders one descriptive line per message, a clamped
// body excerpt, and the attachment filename list.
func buildMessageContext(messages []*domain.Message) string {
	if len(messages) == 0 {
		return "No messages found.\n"
	}

	var b strings.Builder
	for _, msg := range messages {
		b.WriteString(fmt.Sprintf("Message %s | Subject: %s | From: %s", msg.ID, msg.Subject, msg.Sender()))
		if msg.Date != nil {
			b.WriteString(" | Date: " + msg.Date.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
		b.WriteString(clampText(msg.BodyText, bodyExcerptLimit))
		b.WriteString("\n")
		if len(msg.Attachments) > 0 {
			names := make([]string, 0, len(msg.Attachments))
			for _, att := range msg.Attachments {
				names = append(names, att.Filename)
			}
			b.WriteString("Attachments: " + strings.Join(names, ", ") + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// buildAttachmentContext downloads and extracts every flattened attachment.
// A per-attachment failure becomes an inline note; it never aborts the
// whole answer.
func (e *AnswerEngine) buildAttachmentContext(ctx context.Context, attachments []domain.Attachment) string {
	if len(attachments) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Attachment contents:\n")
	for _, att := range attachments {
		name := att.Filename
		if name == "" {
			name = att.ID
		}

		content, err := e.mailbox.DownloadAttachment(ctx, att.ID, att.MessageID)
		if err != nil {
			e.logger.Warn("attachment download failed",
				"attachment_id", att.ID,
				"message_id", att.MessageID,
				"error", err,
			)
			b.WriteString(fmt.Sprintf("%s: failed to read\n", name))
			continue
		}

		result := e.extractor.Extract(ctx, driven.ExtractInput{
			Bytes:       content.Bytes,
			Filename:    att.Filename,
			ContentType: content.ContentType,
		})
		b.WriteString(fmt.Sprintf("%s (message %s):\n", name, att.MessageID))
		b.WriteString(clampText(result.Text, attachmentExcerptLimit))
		b.WriteString("\n")
		if result.Warning != "" {
			b.WriteString("Note: " + result.Warning + "\n")
		}
	}
	return b.String()
}

// clampText caps s at limit bytes without splitting a rune, appending a
// truncation marker.
func clampText(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}
