package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.LLMService       = (*throttledLLM)(nil)
	_ driven.EmbeddingService = (*throttledEmbedding)(nil)
)

// NewLimiter builds a token bucket for outbound provider calls.
// A non-positive rate disables throttling and returns nil.
func NewLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// throttledLLM waits on a shared limiter before each model call
type throttledLLM struct {
	driven.LLMService
	limiter *rate.Limiter
}

// ThrottleLLM wraps svc so Generate respects limiter. A nil limiter or
// service is returned unchanged.
func ThrottleLLM(svc driven.LLMService, limiter *rate.Limiter) driven.LLMService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &throttledLLM{LLMService: svc, limiter: limiter}
}

func (t *throttledLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.LLMService.Generate(ctx, prompt)
}

// throttledEmbedding waits on a shared limiter before each embedding call
type throttledEmbedding struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// ThrottleEmbedding wraps svc so Embed and EmbedQuery respect limiter
func ThrottleEmbedding(svc driven.EmbeddingService, limiter *rate.Limiter) driven.EmbeddingService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &throttledEmbedding{EmbeddingService: svc, limiter: limiter}
}

func (t *throttledEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.EmbeddingService.Embed(ctx, texts)
}

func (t *throttledEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return t.EmbeddingService.EmbedQuery(ctx, query)
}
