package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore implements driven.VectorStore on pgvector.
// Search orders by the L2 operator (<->).
type VectorStore struct {
	db         *DB
	dimensions int
}

// NewVectorStore creates a pgvector-backed store. Upserts with vectors of a
// different width than dimensions are rejected; 0 disables the check.
func NewVectorStore(db *DB, dimensions int) *VectorStore {
	return &VectorStore{db: db, dimensions: dimensions}
}

// Upsert stores records in one transaction
func (s *VectorStore) Upsert(ctx context.Context, records []*domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if s.dimensions > 0 && len(r.Vector) != s.dimensions {
			return fmt.Errorf("%w: record %s has %d values, expected %d",
				domain.ErrDimensionMismatch, r.ChunkID, len(r.Vector), s.dimensions)
		}
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO embeddings (chunk_id, document_id, chunk_index, content, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (chunk_id) DO UPDATE SET
				document_id = EXCLUDED.document_id,
				chunk_index = EXCLUDED.chunk_index,
				content = EXCLUDED.content,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range records {
			metadataJSON, err := json.Marshal(r.Metadata)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx,
				r.ChunkID,
				r.Metadata.DocumentID,
				r.Metadata.ChunkIndex,
				r.Text,
				metadataJSON,
				pgvector.NewVector(r.Vector),
			)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", r.ChunkID, err)
			}
		}
		return nil
	})
}

// Search returns the nearest records by L2 distance
func (s *VectorStore) Search(ctx context.Context, vector []float32, limit int, documentIDs []string) ([]*domain.SearchResult, error) {
	if limit <= 0 {
		return []*domain.SearchResult{}, nil
	}

	var b strings.Builder
	b.WriteString(`SELECT chunk_id, document_id, content, metadata, embedding <-> $1 AS distance FROM embeddings`)
	args := []any{pgvector.NewVector(vector), limit}
	if len(documentIDs) > 0 {
		b.WriteString(` WHERE document_id = ANY($3)`)
		args = append(args, pq.Array(documentIDs))
	}
	b.WriteString(` ORDER BY distance LIMIT $2`)

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]*domain.SearchResult, 0, limit)
	for rows.Next() {
		var r domain.SearchResult
		var metadataJSON []byte
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.Text, &metadataJSON, &r.Distance); err != nil {
			return nil, err
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
				return nil, err
			}
		}
		r.Score = domain.ScoreFromDistance(r.Distance)
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByDocument removes all records of a document
func (s *VectorStore) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM embeddings WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// Count returns the number of stored records
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count)
	return count, err
}

// Backend returns a short name of the storage backend
func (s *VectorStore) Backend() string {
	return "pgvector"
}

// HealthCheck verifies the store is reachable
func (s *VectorStore) HealthCheck(ctx context.Context) error {
	return s.db.Ping(ctx)
}
