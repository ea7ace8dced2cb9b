package domain

import "time"

// Health states reported by the health endpoint
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"

	DatabaseReady          = "ready"
	DatabaseNotInitialized = "not_initialized"
)

// HealthStatus summarises service readiness
type HealthStatus struct {
	Status              string    `json:"status"`
	Version             string    `json:"version"`
	LLMConfigured       bool      `json:"llm_configured"`
	EmbeddingConfigured bool      `json:"embedding_configured"`
	DatabaseStatus      string    `json:"database_status"`
	Timestamp           time.Time `json:"timestamp"`
}

// NewHealthStatus derives the overall status from component readiness.
func NewHealthStatus(version string, llm, embedding, databaseReady bool) *HealthStatus {
	h := &HealthStatus{
		Status:              HealthHealthy,
		Version:             version,
		LLMConfigured:       llm,
		EmbeddingConfigured: embedding,
		DatabaseStatus:      DatabaseReady,
		Timestamp:           time.Now().UTC(),
	}
	if !databaseReady {
		h.DatabaseStatus = DatabaseNotInitialized
	}
	if !llm || !embedding || !databaseReady {
		h.Status = HealthDegraded
	}
	return h
}
