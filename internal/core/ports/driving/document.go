package driving

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// UploadRequest is a file submitted for ingestion
type UploadRequest struct {
	Filename string
	Content  []byte
}

// DownloadFile is a stored upload returned under the document's current name
type DownloadFile struct {
	Name    string
	Content []byte
}

// DocumentService manages ingestion and the document registry
type DocumentService interface {
	// Upload extracts, chunks and indexes an uploaded file
	Upload(ctx context.Context, req *UploadRequest) (*domain.Document, error)

	// IngestURL fetches a web page and indexes its text
	IngestURL(ctx context.Context, rawURL string) (*domain.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns all documents, newest first
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete removes a document and its indexed chunks
	Delete(ctx context.Context, id string) error

	// Download returns the original bytes of an uploaded document.
	// Returns domain.ErrNotFound for unknown IDs and URL documents.
	Download(ctx context.Context, id string) (*DownloadFile, error)

	// Rename changes a document's display name
	Rename(ctx context.Context, id, newName string) (*domain.Document, error)

	// References returns the id/name pairs of all documents
	References(ctx context.Context) ([]domain.DocumentRef, error)

	// SuggestMentions returns document names matching a partial @mention
	SuggestMentions(ctx context.Context, prefix string, limit int) ([]domain.DocumentRef, error)

	// Stats describes the embedding index
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
