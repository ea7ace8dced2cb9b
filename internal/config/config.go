// Package config loads server settings from defaults, an optional YAML
// file, a .env file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// Run modes
const (
	ModeServe  = "serve"
	ModeWorker = "worker"
	ModeAll    = "all"
)

// Config holds all configuration for the server and CLI.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Mentions  MentionConfig   `yaml:"mentions"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	RunMode            string   `yaml:"run_mode"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	QueryTimeoutSec    int      `yaml:"query_timeout_sec"`
}

// StorageConfig selects backends. Empty URLs fall back to local files in DataDir.
type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`
	DataDir     string `yaml:"data_dir"`
}

// LLMConfig configures the answer model.
type LLMConfig struct {
	Provider          string  `yaml:"provider"` // "gemini", "openai", "ollama"
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Temperature       float32 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // outbound throttle, 0 disables
}

// EmbeddingConfig configures the embedding model.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // defaults to the LLM provider
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
}

// IngestionConfig holds chunking and upload limits.
type IngestionConfig struct {
	ChunkSize         int  `yaml:"chunk_size"`
	ChunkOverlap      int  `yaml:"chunk_overlap"`
	MaxFileSizeMB     int  `yaml:"max_file_size_mb"`
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
}

// CleanupConfig holds retention settings.
type CleanupConfig struct {
	Enabled        bool `yaml:"enabled"`
	IntervalHours  int  `yaml:"interval_hours"`
	RetentionHours int  `yaml:"retention_hours"`
}

// MentionConfig holds @mention fuzzy matching cutoffs.
type MentionConfig struct {
	FuzzyThreshold   float64 `yaml:"fuzzy_threshold"`
	SuggestThreshold float64 `yaml:"suggest_threshold"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8000,
			RunMode:            ModeAll,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 60,
			QueryTimeoutSec:    120,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		LLM: LLMConfig{
			Provider:    string(domain.AIProviderGemini),
			Temperature: domain.DefaultTemperature,
		},
		Embedding: EmbeddingConfig{
			BatchSize: 100,
		},
		Ingestion: IngestionConfig{
			ChunkSize:     1000,
			ChunkOverlap:  200,
			MaxFileSizeMB: 50,
		},
		Cleanup: CleanupConfig{
			Enabled:        true,
			IntervalHours:  6,
			RetentionHours: 48,
		},
		Mentions: MentionConfig{
			FuzzyThreshold:   0.6,
			SuggestThreshold: 0.4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration. path may be empty; SERCHA_CONFIG is used then.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("SERCHA_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	cfg.resolveDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the current values.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.RunMode = getEnv("RUN_MODE", c.Server.RunMode)
	c.Server.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.Server.RateLimitPerMinute)
	c.Server.QueryTimeoutSec = getEnvInt("QUERY_TIMEOUT_SEC", c.Server.QueryTimeoutSec)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.RedisURL = getEnv("REDIS_URL", c.Storage.RedisURL)
	c.Storage.DataDir = getEnv("DATA_DIR", c.Storage.DataDir)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = float32(getEnvFloat("LLM_TEMPERATURE", float64(c.LLM.Temperature)))
	c.LLM.RequestsPerSecond = getEnvFloat("AI_REQUESTS_PER_SECOND", c.LLM.RequestsPerSecond)

	c.Embedding.Provider = getEnv("EMBEDDING_PROVIDER", c.Embedding.Provider)
	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.APIKey = getEnv("EMBEDDING_API_KEY", c.Embedding.APIKey)
	c.Embedding.BaseURL = getEnv("EMBEDDING_BASE_URL", c.Embedding.BaseURL)
	c.Embedding.BatchSize = getEnvInt("EMBEDDING_BATCH_SIZE", c.Embedding.BatchSize)

	c.Ingestion.ChunkSize = getEnvInt("CHUNK_SIZE", c.Ingestion.ChunkSize)
	c.Ingestion.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", c.Ingestion.ChunkOverlap)
	c.Ingestion.MaxFileSizeMB = getEnvInt("MAX_FILE_SIZE_MB", c.Ingestion.MaxFileSizeMB)
	c.Ingestion.AllowPrivateHosts = getEnvBool("ALLOW_PRIVATE_URLS", c.Ingestion.AllowPrivateHosts)

	c.Cleanup.Enabled = getEnvBool("CLEANUP_ENABLED", c.Cleanup.Enabled)
	c.Cleanup.IntervalHours = getEnvInt("CLEANUP_INTERVAL_HOURS", c.Cleanup.IntervalHours)
	c.Cleanup.RetentionHours = getEnvInt("RETENTION_HOURS", c.Cleanup.RetentionHours)

	c.Mentions.FuzzyThreshold = getEnvFloat("MENTION_FUZZY_THRESHOLD", c.Mentions.FuzzyThreshold)
	c.Mentions.SuggestThreshold = getEnvFloat("MENTION_SUGGEST_THRESHOLD", c.Mentions.SuggestThreshold)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
}

// resolveDefaults fills provider-dependent values left empty.
func (c *Config) resolveDefaults() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = c.LLM.Provider
	}
	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))

	if c.LLM.APIKey == "" {
		c.LLM.APIKey = providerKey(c.LLM.Provider)
	}
	if c.Embedding.APIKey == "" {
		if c.Embedding.Provider == c.LLM.Provider {
			c.Embedding.APIKey = c.LLM.APIKey
		} else {
			c.Embedding.APIKey = providerKey(c.Embedding.Provider)
		}
	}
	if c.Embedding.BaseURL == "" && c.Embedding.Provider == c.LLM.Provider {
		c.Embedding.BaseURL = c.LLM.BaseURL
	}
}

// providerKey reads the conventional variable for a provider's API key.
func providerKey(provider string) string {
	switch domain.AIProvider(provider) {
	case domain.AIProviderGemini:
		return getEnv("GOOGLE_API_KEY", getEnv("GEMINI_API_KEY", ""))
	case domain.AIProviderOpenAI:
		return getEnv("OPENAI_API_KEY", "")
	}
	return ""
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Server.RunMode {
	case ModeServe, ModeWorker, ModeAll:
	default:
		return fmt.Errorf("invalid run mode %q (want serve, worker or all)", c.Server.RunMode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.LLM.Provider != "" && !domain.AIProvider(c.LLM.Provider).IsValid() {
		return fmt.Errorf("%w: llm provider %q", domain.ErrInvalidProvider, c.LLM.Provider)
	}
	if c.Embedding.Provider != "" && !domain.AIProvider(c.Embedding.Provider).IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidProvider, c.Embedding.Provider)
	}
	if c.Ingestion.ChunkSize <= 0 || c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("invalid chunking: size %d overlap %d", c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap)
	}
	if c.Ingestion.MaxFileSizeMB <= 0 {
		return fmt.Errorf("invalid max file size %dMB", c.Ingestion.MaxFileSizeMB)
	}
	if c.Cleanup.Enabled && (c.Cleanup.IntervalHours <= 0 || c.Cleanup.RetentionHours <= 0) {
		return fmt.Errorf("invalid cleanup schedule: every %dh, keep %dh", c.Cleanup.IntervalHours, c.Cleanup.RetentionHours)
	}
	return nil
}

// AISettings converts the provider sections for the AI factory.
func (c *Config) AISettings() *domain.AISettings {
	return &domain.AISettings{
		LLM: domain.LLMSettings{
			Provider:    domain.AIProvider(c.LLM.Provider),
			Model:       c.LLM.Model,
			APIKey:      c.LLM.APIKey,
			BaseURL:     c.LLM.BaseURL,
			Temperature: c.LLM.Temperature,
		},
		Embedding: domain.EmbeddingSettings{
			Provider: domain.AIProvider(c.Embedding.Provider),
			Model:    c.Embedding.Model,
			APIKey:   c.Embedding.APIKey,
			BaseURL:  c.Embedding.BaseURL,
		},
	}
}

// MaxFileSize returns the upload limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Ingestion.MaxFileSizeMB) << 20
}

// QueryTimeout returns the per query deadline.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Server.QueryTimeoutSec) * time.Second
}

// CleanupInterval returns the time between retention sweeps.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.Cleanup.IntervalHours) * time.Hour
}

// Retention returns how long documents are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Cleanup.RetentionHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
