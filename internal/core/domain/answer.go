package domain

// AnswerMode selects how much of the pipeline an engine pass runs.
type AnswerMode string

const (
	// AnswerModeFast plans and classifies work without the final model call.
	// It exists purely to decide whether to defer.
	AnswerModeFast AnswerMode = "fast"

	// AnswerModeFull runs the complete pipeline including attachment
	// extraction and the final answer-generation call.
	AnswerModeFull AnswerMode = "full"
)

// Fixed user-visible strings. The fallback is what the caller speaks when
// anything between planning and answering fails; the raw cause travels in
// Answer.Err, never in Answer.Text.
const (
	SmallTalkAnswer = "Hi! Ask me anything about your inbox, emails, or attachments."
	FallbackAnswer  = "I'm having trouble accessing your inbox right now. Please try again in a moment."

	// ProcessingMessage is spoken when a question is deferred to a job.
	ProcessingMessage = "This may take a minute. I'll keep working on it in the background."

	// PendingAnswer stands in for the answer text on a fast pass, which
	// never invokes the answer-generation model.
	PendingAnswer = "(pending)"
)

// Answer is the outcome of one answer-engine pass.
type Answer struct {
	// Text is always a speakable sentence, never a raw error.
	Text string `json:"answer"`

	// Heavy reports whether full attachment processing should be deferred.
	Heavy bool `json:"heavy"`

	// Sources lists the messages actually used to build this answer's
	// context, one entry per message.
	Sources []SourceInfo `json:"sources"`

	// Err is the raw cause when Text degraded to the fallback. Surfacing it
	// is the caller's decision, gated behind a debug switch.
	Err error `json:"-"`
}

// FallbackAnswerFor wraps a pipeline failure into the user-safe answer.
func FallbackAnswerFor(err error) *Answer {
	return &Answer{
		Text:    FallbackAnswer,
		Heavy:   false,
		Sources: []SourceInfo{},
		Err:     err,
	}
}
