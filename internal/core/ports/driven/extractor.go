package driven

import "context"

// ExtractInput is raw content handed to the extractor.
type ExtractInput struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// ExtractResult is plain text plus an optional warning on partial failure.
type ExtractResult struct {
	Text    string
	Warning string
}

// Extractor converts raw bytes (HTML, PDF, DOCX, image) to plain text.
// Implementations never fail for unsupported or oversized input: they return
// empty text with a warning string instead. Size-limit rejection is the
// extractor's responsibility.
type Extractor interface {
	Extract(ctx context.Context, input ExtractInput) ExtractResult
}

// Normaliser transforms raw content of a supported type into plain text.
type Normaliser interface {
	// Normalise converts content to plain text, returning a warning on
	// partial failure.
	Normalise(content []byte, contentType string) (string, string)

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*" or specific types.
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	Priority() int
}
