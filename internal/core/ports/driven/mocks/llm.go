package mocks

import (
	"context"
	"errors"
	"sync"
)

// ErrMockLLM is returned when a failure has been injected
var ErrMockLLM = errors.New("mock llm failure")

// MockLLMService is a mock implementation of LLMService for testing.
// It records every prompt and returns a fixed response.
type MockLLMService struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string

	// GenerateFn overrides the default behaviour when set
	GenerateFn func(ctx context.Context, prompt string) (string, error)
}

// NewMockLLMService creates a mock that answers every prompt with response
func NewMockLLMService(response string) *MockLLMService {
	return &MockLLMService{response: response}
}

func (m *MockLLMService) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	fn, resp, err := m.GenerateFn, m.response, m.err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	return resp, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

// SetError makes every subsequent Generate call fail with err.
func (m *MockLLMService) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Prompts returns the prompts received so far.
func (m *MockLLMService) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockLLMService) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Calls returns the number of Generate calls.
func (m *MockLLMService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
