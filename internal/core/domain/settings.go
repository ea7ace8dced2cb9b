package domain

import "fmt"

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderGemini AIProvider = "gemini"
	AIProviderOllama AIProvider = "ollama" // OpenAI-compatible, self-hosted
)

// Provider defaults
const (
	DefaultGeminiModel          = "gemini-1.5-flash"
	DefaultGeminiEmbeddingModel = "text-embedding-004"
	DefaultOpenAIModel          = "gpt-4o-mini"
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	DefaultTemperature          = 0.1
)

// AISettings holds AI service configuration (embedding and LLM)
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider    AIProvider `json:"provider"`
	Model       string     `json:"model"`
	APIKey      string     `json:"-"` // Never serialize to JSON
	BaseURL     string     `json:"base_url,omitempty"`
	Temperature float32    `json:"temperature"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// MaxTemperature is the upper bound accepted by every supported provider.
const MaxTemperature = 2.0

// Validate rejects unknown providers and out-of-range sampling temperatures.
func (s *AISettings) Validate() error {
	if p := s.Embedding.Provider; p != "" && !p.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", ErrInvalidProvider, p)
	}
	if p := s.LLM.Provider; p != "" && !p.IsValid() {
		return fmt.Errorf("%w: llm provider %q", ErrInvalidProvider, p)
	}
	if t := s.LLM.Temperature; t < 0 || t > MaxTemperature {
		return fmt.Errorf("%w: temperature %.2f outside 0..%.0f", ErrInvalidInput, t, MaxTemperature)
	}
	return nil
}
