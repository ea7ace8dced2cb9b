package driving

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// QueryService answers questions against the indexed documents
type QueryService interface {
	// Ask resolves @mentions, retrieves context and synthesizes an answer
	Ask(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error)

	// History returns up to limit recent queries, oldest first
	History(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}
