package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FileStore = (*Store)(nil)

// Store keeps uploads as one file per document under dir.
type Store struct {
	dir string
}

// NewStore creates dir if needed and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes content atomically through a temp file in the same directory.
func (s *Store) Save(ctx context.Context, documentID string, content []byte) error {
	path, err := s.path(documentID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

// Load reads the stored bytes for documentID.
func (s *Store) Load(ctx context.Context, documentID string) ([]byte, error) {
	path, err := s.path(documentID)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no stored file for document %s", domain.ErrNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return content, nil
}

// Delete removes the stored bytes, ignoring files that are already gone.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	path, err := s.path(documentID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// path only accepts UUIDs so an ID can never name a file outside dir.
func (s *Store) path(documentID string) (string, error) {
	id, err := uuid.Parse(documentID)
	if err != nil {
		return "", fmt.Errorf("%w: no stored file for document %q", domain.ErrNotFound, documentID)
	}
	return filepath.Join(s.dir, id.String()), nil
}
