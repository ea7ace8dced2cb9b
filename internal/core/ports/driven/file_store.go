package driven

import (
	"context"
)

// FileStore keeps the original bytes of uploaded documents, keyed by
// document ID so renames never move the file.
type FileStore interface {
	// Save stores content for documentID, replacing any earlier copy.
	Save(ctx context.Context, documentID string, content []byte) error

	// Load returns the stored bytes.
	// Returns domain.ErrNotFound if nothing is stored for documentID.
	Load(ctx context.Context, documentID string) ([]byte, error)

	// Delete removes the stored bytes. Missing files are not an error.
	Delete(ctx context.Context, documentID string) error
}
