package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services based on configuration.
// Services it builds share one outbound limiter when configured.
type Factory struct {
	limiter *rate.Limiter
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithRateLimit throttles every created service to rps requests per second
func WithRateLimit(rps float64, burst int) FactoryOption {
	return func(f *Factory) {
		f.limiter = NewLimiter(rps, burst)
	}
}

// NewFactory creates a new AI service factory
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SupportedProviders lists the providers this factory can build
func (f *Factory) SupportedProviders() []domain.AIProvider {
	return []domain.AIProvider{domain.AIProviderGemini, domain.AIProviderOpenAI, domain.AIProviderOllama}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err = NewGeminiEmbedding(context.Background(), settings.APIKey, settings.Model)
	case domain.AIProviderOpenAI:
		svc, err = NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	case domain.AIProviderOllama:
		svc, err = NewOllamaEmbedding(settings.BaseURL, settings.Model)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return ThrottleEmbedding(svc, f.limiter), nil
}

// CreateLLMService creates an LLM service from settings
func (f *Factory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderGemini:
		svc, err = NewGeminiLLM(context.Background(), settings.APIKey, settings.Model, settings.Temperature)
	case domain.AIProviderOpenAI:
		svc, err = NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL, settings.Temperature)
	case domain.AIProviderOllama:
		svc, err = NewOllamaLLM(settings.BaseURL, settings.Model, settings.Temperature)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return ThrottleLLM(svc, f.limiter), nil
}
