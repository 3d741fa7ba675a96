package driven

import "context"

// CompletionRequest is a single language-model call.
type CompletionRequest struct {
	// System is the fixed instruction for the call.
	System string

	// Prompt is the user content.
	Prompt string

	// MaxTokens bounds the response length. Zero means the adapter default.
	MaxTokens int
}

// LLMService provides language-model completions for planning and answering.
// Both calls are external I/O; their latency and failure are part of the
// core's error surface.
type LLMService interface {
	// Complete returns a free-text completion.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// CompleteJSON returns a completion constrained to a single JSON object.
	CompleteJSON(ctx context.Context, req CompletionRequest) ([]byte, error)

	// Model returns the model name being used.
	Model() string

	// Ping verifies the service is available.
	Ping(ctx context.Context) error

	// Close releases resources held by the service.
	Close() error
}
