package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// WebFetcher downloads a web page for ingestion
type WebFetcher interface {
	// Fetch validates and retrieves rawURL.
	// Returns domain.ErrBlockedURL for local or private hosts.
	Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error)
}
