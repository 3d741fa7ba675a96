package services

import (
	"strings"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

// smallTalkPhrases is the fixed set of conversational openers handled
// locally, skipping the whole planning pipeline.
var smallTalkPhrases = []string{
	"hi",
	"hello",
	"hey",
	"good morning",
	"good afternoon",
	"good evening",
	"how are you",
	"what's up",
	"whats up",
	"yo",
}

// attachmentKeywords signal that the user cares about attachment content.
var attachmentKeywords = []string{
	"attachment",
	"attachments",
	"attached",
	"file",
	"files",
	"pdf",
	"doc",
	"docx",
	"document",
	"spreadsheet",
	"xls",
	"xlsx",
	"csv",
	"image",
	"picture",
	"photo",
	"screenshot",
	"invoice",
	"receipt",
}

// latestPhrases signal recency intent, which trumps topical search.
var latestPhrases = []string{
	"latest",
	"most recent",
	"newest",
	"last message",
	"last email",
	"last mail",
}

// Heavy-work thresholds. Conservative by design intent: borderline cases
// defer rather than block the voice turn.
const (
	heavyTotalBytes  = 5 * 1024 * 1024
	heavySingleBytes = 2 * 1024 * 1024
	heavyCount       = 3
)

// IsSmallTalk reports whether the question is conversational noise. Matches
// are case-insensitive, exact or prefix-with-trailing-space.
func IsSmallTalk(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return false
	}
	for _, phrase := range smallTalkPhrases {
		if q == phrase || strings.HasPrefix(q, phrase+" ") {
			return true
		}
	}
	return false
}

// WantsAttachments reports whether the question mentions attachment or file
// format vocabulary. OR'd with the planner's own flag; either signal is
// sufficient.
func WantsAttachments(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range attachmentKeywords {
		if containsWord(q, kw) {
			return true
		}
	}
	return false
}

// PrefersLatest reports whether the question asks for the most recent
// message. When true the plan is overridden: limit 1, search query dropped.
func PrefersLatest(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range latestPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}

// EstimateHeavyWork decides whether full attachment processing is likely to
// exceed an acceptable synchronous response time. It is a directional
// heuristic over attachment metadata, not a cost model.
func EstimateHeavyWork(attachments []domain.Attachment) bool {
	if len(attachments) > heavyCount {
		return true
	}
	var total int64
	for _, att := range attachments {
		if att.Size > heavySingleBytes {
			return true
		}
		total += att.Size
	}
	return total > heavyTotalBytes
}

// containsWord checks for kw bounded by non-letter characters, so "file"
// does not match "profile".
func containsWord(s, kw string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
