package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

const documentColumns = `id, name, document_type, file_size, chunk_count, metadata, uploaded_at`

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			document_type = EXCLUDED.document_type,
			file_size = EXCLUDED.file_size,
			chunk_count = EXCLUDED.chunk_count,
			metadata = EXCLUDED.metadata
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		string(doc.Type),
		doc.Size,
		doc.ChunkCount,
		metadataJSON,
		doc.UploadedAt.UTC(),
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// List returns all documents, newest upload first
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC, id`
	return s.query(ctx, query)
}

// ListUploadedBefore returns documents uploaded before the cutoff
func (s *DocumentStore) ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE uploaded_at < $1 ORDER BY uploaded_at`
	return s.query(ctx, query, cutoff.UTC())
}

func (s *DocumentStore) query(ctx context.Context, query string, args ...any) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Rename changes a document's display name
func (s *DocumentStore) Rename(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE documents SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete deletes a document
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Count returns total document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// Ping verifies the registry is reachable
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType string
	var metadataJSON []byte

	err := row.Scan(
		&doc.ID,
		&doc.Name,
		&docType,
		&doc.Size,
		&doc.ChunkCount,
		&metadataJSON,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Type = domain.DocumentType(docType)
	doc.UploadedAt = doc.UploadedAt.UTC()
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
