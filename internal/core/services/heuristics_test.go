package services

import (
	"testing"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
)

func TestIsSmallTalk(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"hi", true},
		{"Hello", true},
		{"HEY", true},
		{"  hello  ", true},
		{"good morning", true},
		{"good morning sunshine", true},
		{"what's up", true},
		{"whats up", true},
		{"yo", true},
		{"", false},
		{"hired anyone lately?", false}, // "hi" must not prefix-match mid-word
		{"summarize today's important emails", false},
		{"heyday of email", false},
	}

	for _, tt := range tests {
		if got := IsSmallTalk(tt.question); got != tt.want {
			t.Errorf("IsSmallTalk(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestWantsAttachments(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"what's in the PDF attachment from finance", true},
		{"open the file from yesterday", true},
		{"show me the invoice", true},
		{"any screenshots in my inbox?", true},
		{"summarize today's important emails", false},
		{"update my profile", false}, // "file" inside "profile" must not match
	}

	for _, tt := range tests {
		if got := WantsAttachments(tt.question); got != tt.want {
			t.Errorf("WantsAttachments(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestPrefersLatest(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"read my latest email", true},
		{"what was the most recent message about?", true},
		{"show the last message", true},
		{"summarize emails from finance", false},
	}

	for _, tt := range tests {
		if got := PrefersLatest(tt.question); got != tt.want {
			t.Errorf("PrefersLatest(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestEstimateHeavyWork(t *testing.T) {
	att := func(size int64) domain.Attachment {
		return domain.Attachment{Size: size}
	}

	tests := []struct {
		name        string
		attachments []domain.Attachment
		want        bool
	}{
		{"empty", nil, false},
		{"single small", []domain.Attachment{att(100)}, false},
		{"single over per-item threshold", []domain.Attachment{att(6_000_000)}, true},
		{"count over threshold", []domain.Attachment{att(1), att(1), att(1), att(1)}, true},
		{"count at threshold", []domain.Attachment{att(1), att(1), att(1)}, false},
		{"total over threshold", []domain.Attachment{att(2_000_000), att(2_000_000), att(1_500_000)}, true},
		{"two 50KB files", []domain.Attachment{att(50_000), att(50_000)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateHeavyWork(tt.attachments); got != tt.want {
				t.Errorf("EstimateHeavyWork() = %v, want %v", got, tt.want)
			}
		})
	}
}
