package driven

import (
	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// AIServiceFactory builds embedding and LLM clients for a configured provider
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings.
	// Returns nil, nil if settings are not configured
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateLLMService creates an LLM service from settings.
	// Returns nil, nil if settings are not configured
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)

	// SupportedProviders lists the providers this factory can build
	SupportedProviders() []domain.AIProvider
}
