package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

const defaultOllamaBaseURL = "http://localhost:11434/v1"

// OpenAILLM implements LLMService with the chat completions API
type OpenAILLM struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAILLM creates a chat LLM for OpenAI or a compatible endpoint
func NewOpenAILLM(apiKey, model, baseURL string, temperature float32) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = domain.DefaultOpenAIModel
	}
	return newOpenAILLM(apiKey, model, baseURL, temperature), nil
}

// NewOllamaLLM creates a chat LLM backed by a local Ollama server
func NewOllamaLLM(baseURL, model string, temperature float32) (driven.LLMService, error) {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	return newOpenAILLM("ollama", model, baseURL, temperature), nil
}

func newOpenAILLM(apiKey, model, baseURL string, temperature float32) *OpenAILLM {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAILLM{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Generate sends the prompt as a single user message
func (l *OpenAILLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: l.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", wrapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (l *OpenAILLM) Model() string {
	return l.model
}

// Ping lists models to verify the endpoint and credentials
func (l *OpenAILLM) Ping(ctx context.Context) error {
	if _, err := l.client.ListModels(ctx); err != nil {
		return wrapOpenAIError(err)
	}
	return nil
}

// Close releases resources held by the LLM service
func (l *OpenAILLM) Close() error {
	return nil
}
