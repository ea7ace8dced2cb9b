package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Services holds the AI clients the pipeline calls into.
// Either client may be missing (no API key) or replaced while running;
// callers fetch the current one per request.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil)
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// RequireEmbedding returns the embedding service or ErrServiceUnavailable.
func (s *Services) RequireEmbedding() (driven.EmbeddingService, error) {
	if svc := s.EmbeddingService(); svc != nil {
		return svc, nil
	}
	return nil, fmt.Errorf("%w: embedding service not configured", domain.ErrServiceUnavailable)
}

// RequireLLM returns the LLM service or ErrServiceUnavailable.
func (s *Services) RequireLLM() (driven.LLMService, error) {
	if svc := s.LLMService(); svc != nil {
		return svc, nil
	}
	return nil, fmt.Errorf("%w: language model not configured", domain.ErrServiceUnavailable)
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil && s.embeddingService != svc {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService updates the LLM service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil && s.llmService != svc {
		_ = s.llmService.Close()
	}

	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM validates connectivity before setting LLM service
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}

// Configure builds both AI clients from settings through factory and
// installs them. Unconfigured settings leave the slot empty; a client that
// fails its connectivity check is logged and left out so the server can
// still start in a degraded state.
func (s *Services) Configure(ctx context.Context, factory driven.AIServiceFactory, settings *domain.AISettings, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	embedding, err := factory.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return fmt.Errorf("create embedding service: %w", err)
	}
	if embedding == nil {
		logger.Warn("embedding service not configured; ingestion and retrieval disabled")
	} else if err := s.ValidateAndSetEmbedding(ctx, embedding); err != nil {
		logger.Warn("embedding service unavailable", "provider", settings.Embedding.Provider, "error", err)
	} else {
		logger.Info("embedding service ready", "provider", settings.Embedding.Provider, "model", embedding.Model())
	}

	llm, err := factory.CreateLLMService(&settings.LLM)
	if err != nil {
		return fmt.Errorf("create llm service: %w", err)
	}
	if llm == nil {
		logger.Warn("language model not configured; answers disabled")
	} else if err := s.ValidateAndSetLLM(ctx, llm); err != nil {
		logger.Warn("language model unavailable", "provider", settings.LLM.Provider, "error", err)
	} else {
		logger.Info("language model ready", "provider", settings.LLM.Provider, "model", llm.Model())
	}

	return nil
}
