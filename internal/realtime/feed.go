package realtime

import (
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// LineKind distinguishes transcript feed entries.
type LineKind string

const (
	LineUser      LineKind = "user"
	LineAssistant LineKind = "assistant"
	LineError     LineKind = "error"
)

// Line is one entry in the transcript feed.
type Line struct {
	Kind    LineKind
	Text    string
	Sources []domain.SourceInfo
}

// Feed is the UI-side transcript model. It surfaces final user transcripts
// and assistant replies, renders errors inline, and attaches source events
// to the most recent assistant line that has none. The attachment rule is
// positional, so feed order must follow arrival order.
type Feed struct {
	mu    sync.Mutex
	lines []Line
}

// NewFeed creates an empty transcript feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Apply folds an event into the feed. Events that carry nothing visible
// (partial transcripts, non-assistant items, state changes) are ignored.
func (f *Feed) Apply(event Event) {
	switch e := event.(type) {
	case TranscriptEvent:
		if !e.Final {
			return
		}
		f.append(Line{Kind: LineUser, Text: e.Text})
	case ConversationItemEvent:
		if !e.Assistant() {
			return
		}
		f.append(Line{Kind: LineAssistant, Text: e.Text})
	case ErrorEvent:
		f.append(Line{Kind: LineError, Text: e.Message})
	case SourcesEvent:
		f.attachSources(e.Sources)
	}
}

// Lines returns a snapshot of the feed.
func (f *Feed) Lines() []Line {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Line, len(f.lines))
	copy(out, f.lines)
	return out
}

func (f *Feed) append(line Line) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

// attachSources pins sources to the last assistant line without any. A
// sources event with no eligible line is dropped; there is no replay.
func (f *Feed) attachSources(sources []domain.SourceInfo) {
	if len(sources) == 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.lines) - 1; i >= 0; i-- {
		if f.lines[i].Kind == LineAssistant && f.lines[i].Sources == nil {
			f.lines[i].Sources = sources
			return
		}
	}
}
