package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven/mocks"
)

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0, 1) != nil {
		t.Error("expected nil limiter when disabled")
	}
	l := NewLimiter(2, 0)
	if l == nil || l.Burst() != 1 {
		t.Errorf("expected burst clamped to 1, got %v", l)
	}
}

func TestThrottle_PassThrough(t *testing.T) {
	llm := mocks.NewMockLLMService("ok")
	if ThrottleLLM(llm, nil) != llm {
		t.Error("expected unwrapped service without limiter")
	}
	if ThrottleLLM(nil, NewLimiter(1, 1)) != nil {
		t.Error("expected nil service to stay nil")
	}
}

func TestThrottledLLM_Generate(t *testing.T) {
	llm := mocks.NewMockLLMService("ok")
	svc := ThrottleLLM(llm, NewLimiter(1000, 1))

	for i := 0; i < 3; i++ {
		answer, err := svc.Generate(context.Background(), "q")
		if err != nil || answer != "ok" {
			t.Fatalf("unexpected result %q, %v", answer, err)
		}
	}
	if llm.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", llm.Calls())
	}
	if svc.Model() != llm.Model() {
		t.Error("expected embedded methods to pass through")
	}
}

func TestThrottledLLM_WaitHonoursContext(t *testing.T) {
	llm := mocks.NewMockLLMService("ok")
	svc := ThrottleLLM(llm, NewLimiter(0.01, 1))

	// First call consumes the only token
	if _, err := svc.Generate(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := svc.Generate(ctx, "q"); err == nil {
		t.Error("expected limiter wait to fail on deadline")
	}
	if llm.Calls() != 1 {
		t.Errorf("expected throttled call not to reach the model, got %d calls", llm.Calls())
	}
}

func TestThrottledEmbedding(t *testing.T) {
	embedding := mocks.NewMockEmbeddingService()
	svc := ThrottleEmbedding(embedding, NewLimiter(1000, 2))

	vectors, err := svc.Embed(context.Background(), []string{"a", "b"})
	if err != nil || len(vectors) != 2 {
		t.Fatalf("unexpected result %d, %v", len(vectors), err)
	}
	if _, err := svc.EmbedQuery(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Dimensions() != 384 {
		t.Errorf("expected dimensions to pass through, got %d", svc.Dimensions())
	}

	embedding.SetFailNext(true)
	if _, err := svc.Embed(context.Background(), []string{"a"}); !errors.Is(err, mocks.ErrMockEmbedding) {
		t.Errorf("expected wrapped failure, got %v", err)
	}
}
