// Package extract converts attachment bytes into plain text for prompt
// context. Extraction never fails hard: unsupported or oversized input
// yields empty text plus a warning, so a single bad attachment cannot sink
// an answer.
package extract

import (
	"context"
	"fmt"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Extractor = (*Service)(nil)

// DefaultMaxSize is the largest attachment the extractor will read.
const DefaultMaxSize = 10 * 1024 * 1024

// Service implements Extractor over a normaliser registry.
type Service struct {
	registry *Registry
	maxSize  int64
}

// NewService creates an extractor with the default normalisers.
func NewService(maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		registry: DefaultRegistry(),
		maxSize:  maxSize,
	}
}

// NewServiceWithRegistry creates an extractor with a custom registry.
func NewServiceWithRegistry(registry *Registry, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{registry: registry, maxSize: maxSize}
}

// Extract converts raw bytes to plain text.
func (s *Service) Extract(ctx context.Context, input driven.ExtractInput) driven.ExtractResult {
	if len(input.Bytes) == 0 {
		return driven.ExtractResult{Warning: "empty content"}
	}

	if int64(len(input.Bytes)) > s.maxSize {
		return driven.ExtractResult{
			Warning: fmt.Sprintf("content exceeds %d byte limit", s.maxSize),
		}
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = sniffContentType(input.Filename, input.Bytes)
	}

	normaliser := s.registry.Get(contentType)
	if normaliser == nil {
		return driven.ExtractResult{
			Warning: fmt.Sprintf("unsupported content type %q", contentType),
		}
	}

	text, warning := normaliser.Normalise(input.Bytes, contentType)
	return driven.ExtractResult{Text: text, Warning: warning}
}
