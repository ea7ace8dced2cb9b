package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.LLMService       = (*GeminiLLM)(nil)
	_ driven.EmbeddingService = (*GeminiEmbedding)(nil)
)

// geminiEmbeddingDimensions maps Gemini embedding models to vector sizes
var geminiEmbeddingDimensions = map[string]int{
	"text-embedding-004": 768,
	"embedding-001":      768,
}

// GeminiLLM implements LLMService with Google's Gemini models
type GeminiLLM struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGeminiLLM creates a Gemini text generator.
// Extra client options are appended after the API key (endpoint overrides in tests).
func NewGeminiLLM(ctx context.Context, apiKey, model string, temperature float32, opts ...option.ClientOption) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = domain.DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := client.GenerativeModel(model)
	m.SetTemperature(temperature)

	return &GeminiLLM{client: client, model: m, modelName: model}, nil
}

// Generate runs one completion and concatenates the text parts of the reply
func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no response generated")
	}
	return candidateText(resp.Candidates[0]), nil
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// Model returns the model name being used
func (g *GeminiLLM) Model() string {
	return g.modelName
}

// Ping fetches the model description to verify the key
func (g *GeminiLLM) Ping(ctx context.Context) error {
	if _, err := g.model.Info(ctx); err != nil {
		return fmt.Errorf("gemini ping: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (g *GeminiLLM) Close() error {
	return g.client.Close()
}

// GeminiEmbedding implements EmbeddingService with Gemini embedding models.
// Documents and queries use the retrieval task types.
type GeminiEmbedding struct {
	client     *genai.Client
	documents  *genai.EmbeddingModel
	queries    *genai.EmbeddingModel
	modelName  string
	dimensions int
}

// NewGeminiEmbedding creates a Gemini embedding service
func NewGeminiEmbedding(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = domain.DefaultGeminiEmbeddingModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	documents := client.EmbeddingModel(model)
	documents.TaskType = genai.TaskTypeRetrievalDocument
	queries := client.EmbeddingModel(model)
	queries.TaskType = genai.TaskTypeRetrievalQuery

	dimensions, ok := geminiEmbeddingDimensions[model]
	if !ok {
		dimensions = 768
	}

	return &GeminiEmbedding{
		client:     client,
		documents:  documents,
		queries:    queries,
		modelName:  model,
		dimensions: dimensions,
	}, nil
}

// Embed generates embeddings for multiple texts in one batch call
func (g *GeminiEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := g.documents.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := g.documents.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		out[i] = e.Values
	}
	return out, nil
}

// EmbedQuery embeds a question with the retrieval-query task type
func (g *GeminiEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	resp, err := g.queries.EmbedContent(ctx, genai.Text(query))
	if err != nil {
		return nil, fmt.Errorf("gemini embed query: %w", err)
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	return resp.Embedding.Values, nil
}

// Dimensions returns the embedding dimension size
func (g *GeminiEmbedding) Dimensions() int {
	return g.dimensions
}

// Model returns the model name being used
func (g *GeminiEmbedding) Model() string {
	return g.modelName
}

// HealthCheck verifies the embedding service is available
func (g *GeminiEmbedding) HealthCheck(ctx context.Context) error {
	_, err := g.EmbedQuery(ctx, "health check")
	return err
}

// Close releases the underlying client
func (g *GeminiEmbedding) Close() error {
	return g.client.Close()
}
