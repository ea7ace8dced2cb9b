// Package sqlite provides the local document registry used when no
// DATABASE_URL is configured.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-research/internal/adapters/driven/sqlite/migrations"
	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// timeLayout is fixed width so lexical order matches chronological order
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const documentColumns = `id, name, document_type, file_size, chunk_count, metadata, uploaded_at`

// DocumentStore is a SQLite-backed document registry.
type DocumentStore struct {
	db   *sql.DB
	path string
}

// NewDocumentStore opens (or creates) registry.db in dataDir.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")

	// WAL mode lets readers proceed while an upload commits
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &DocumentStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *DocumentStore) Path() string {
	return s.path
}

// migrate applies every NNN_name.up.sql newer than the recorded version.
func (s *DocumentStore) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			document_type = excluded.document_type,
			file_size = excluded.file_size,
			chunk_count = excluded.chunk_count,
			metadata = excluded.metadata
	`, doc.ID, doc.Name, string(doc.Type), doc.Size, doc.ChunkCount, string(metadataJSON),
		doc.UploadedAt.UTC().Format(timeLayout))
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// List returns all documents, newest upload first
func (s *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	return s.query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC, id`)
}

// ListUploadedBefore returns documents uploaded before the cutoff
func (s *DocumentStore) ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Document, error) {
	return s.query(ctx, `SELECT `+documentColumns+` FROM documents WHERE uploaded_at < ? ORDER BY uploaded_at`,
		cutoff.UTC().Format(timeLayout))
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
	return docs, rows.Err()
}

// Rename changes a document's display name
func (s *DocumentStore) Rename(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE documents SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete deletes a document
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
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
	return s.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var docType, metadataJSON, uploadedAt string

	if err := row.Scan(&doc.ID, &doc.Name, &docType, &doc.Size, &doc.ChunkCount, &metadataJSON, &uploadedAt); err != nil {
		return nil, err
	}

	doc.Type = domain.DocumentType(docType)
	t, err := time.Parse(timeLayout, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing upload time %q: %w", uploadedAt, err)
	}
	doc.UploadedAt = t

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata: %w", err)
		}
	}
	return &doc, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
