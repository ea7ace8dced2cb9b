package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// VectorStore persists embedding records and answers nearest-neighbour queries.
// Distances are Euclidean (L2); smaller is closer.
type VectorStore interface {
	// Upsert stores records, replacing any with the same chunk ID.
	// Returns domain.ErrDimensionMismatch if a vector has the wrong size.
	Upsert(ctx context.Context, records []*domain.EmbeddingRecord) error

	// Search returns up to limit nearest records ordered by increasing distance.
	// When documentIDs is non-empty only records of those documents are considered.
	// An empty store yields an empty result, not an error.
	Search(ctx context.Context, vector []float32, limit int, documentIDs []string) ([]*domain.SearchResult, error)

	// DeleteByDocument removes every record of a document and returns how many were removed.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// Backend returns a short name of the storage backend
	Backend() string

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error
}
