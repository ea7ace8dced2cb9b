package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERCHA_CONFIG", "HOST", "PORT", "RUN_MODE", "RATE_LIMIT_PER_MINUTE", "QUERY_TIMEOUT_SEC", "CORS_ORIGINS",
		"DATABASE_URL", "REDIS_URL", "DATA_DIR",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "LLM_BASE_URL", "LLM_TEMPERATURE", "AI_REQUESTS_PER_SECOND",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_API_KEY", "EMBEDDING_BASE_URL", "EMBEDDING_BATCH_SIZE",
		"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "MAX_FILE_SIZE_MB", "ALLOW_PRIVATE_URLS",
		"CLEANUP_ENABLED", "CLEANUP_INTERVAL_HOURS", "RETENTION_HOURS",
		"MENTION_FUZZY_THRESHOLD", "MENTION_SUGGEST_THRESHOLD", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ModeAll, cfg.Server.RunMode)
	assert.Equal(t, 60, cfg.Server.RateLimitPerMinute)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini", cfg.Embedding.Provider, "embedding follows the llm provider")
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 1000, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 200, cfg.Ingestion.ChunkOverlap)
	assert.Equal(t, int64(50<<20), cfg.MaxFileSize())
	assert.Equal(t, 6*time.Hour, cfg.CleanupInterval())
	assert.Equal(t, 48*time.Hour, cfg.Retention())
	assert.Equal(t, 120*time.Second, cfg.QueryTimeout())
	assert.Empty(t, cfg.Storage.DatabaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RUN_MODE", "serve")
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_TEMPERATURE", "0.3")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("CLEANUP_ENABLED", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("DATABASE_URL", "postgres://localhost/research")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ModeServe, cfg.Server.RunMode)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 500, cfg.Ingestion.ChunkSize)
	assert.False(t, cfg.Cleanup.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://localhost/research", cfg.Storage.DatabaseURL)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sercha.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7000
  rate_limit_per_minute: 10
llm:
  provider: ollama
  model: llama3
  base_url: http://gpu-box:11434/v1
embedding:
  model: nomic-embed-text
logging:
  level: debug
`), 0600))
	t.Setenv("RATE_LIMIT_PER_MINUTE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Server.RateLimitPerMinute, "environment wins over the file")
	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "http://gpu-box:11434/v1", cfg.Embedding.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	settings := cfg.AISettings()
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3", settings.LLM.Model)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7100\n"), 0600))
	t.Setenv("SERCHA_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad run mode", map[string]string{"RUN_MODE": "batch"}},
		{"bad provider", map[string]string{"LLM_PROVIDER": "anthropic"}},
		{"overlap not below size", map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "100"}},
		{"zero file size", map[string]string{"MAX_FILE_SIZE_MB": "0"}},
		{"zero retention", map[string]string{"RETENTION_HOURS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("FLAG", "yes")
	assert.True(t, getEnvBool("FLAG", false))
	t.Setenv("FLAG", "0")
	assert.False(t, getEnvBool("FLAG", true))
	t.Setenv("FLAG", "maybe")
	assert.True(t, getEnvBool("FLAG", true))
}
