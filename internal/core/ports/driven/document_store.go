package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// DocumentStore is the document registry
type DocumentStore interface {
	// Save creates or updates a document
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents, newest upload first
	List(ctx context.Context) ([]*domain.Document, error)

	// ListUploadedBefore returns documents uploaded before the cutoff
	ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Document, error)

	// Rename changes a document's display name
	Rename(ctx context.Context, id, name string) error

	// Delete deletes a document
	Delete(ctx context.Context, id string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)

	// Ping verifies the registry is reachable
	Ping(ctx context.Context) error
}
