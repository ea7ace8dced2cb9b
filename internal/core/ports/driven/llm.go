package driven

import (
	"context"
)

// LLMService generates text from a fully rendered prompt
type LLMService interface {
	// Generate runs a single, non-streaming completion.
	// An error means the model call failed; an empty string is a valid answer.
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
