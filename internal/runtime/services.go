package runtime

import (
	"sync"

	"github.com/custodia-labs/voxmail-core/internal/core/domain"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services: the
// language model and the live speech-synthesis settings. The TTS config is
// pushed from the UI over the realtime channel and applies to subsequent
// spoken replies only.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	llmService driven.LLMService
	ttsConfig  domain.TTSConfig
}

// NewServices creates a registry with the initial TTS configuration.
func NewServices(tts domain.TTSConfig) *Services {
	return &Services{ttsConfig: tts}
}

// LLMService returns the current language model service (may be nil).
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// SetLLMService updates the language model service.
// Closes the old service if present.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
	}
	s.llmService = svc
}

// TTSConfig returns the speech settings for the next spoken reply.
func (s *Services) TTSConfig() domain.TTSConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttsConfig
}

// UpdateTTSConfig merges a pushed update into the current settings and
// returns the applied config and whether anything changed.
func (s *Services) UpdateTTSConfig(update domain.TTSConfig) (domain.TTSConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ttsConfig.Merge(update)
	if next == s.ttsConfig {
		return s.ttsConfig, false
	}
	s.ttsConfig = next
	return next, true
}

// Close shuts down held services.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}
	return nil
}
