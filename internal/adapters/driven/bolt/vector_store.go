// Package bolt provides the local embedding index used when no
// DATABASE_URL is configured.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

var bucketEmbeddings = []byte("embeddings")

// VectorStore implements driven.VectorStore on BoltDB.
// Records are mirrored in memory and searched by brute-force L2 distance.
type VectorStore struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	records map[string]*domain.EmbeddingRecord
}

type storedRecord struct {
	Vector   []float32            `json:"v"`
	Text     string               `json:"t"`
	Metadata domain.ChunkMetadata `json:"m"`
}

// NewVectorStore opens (or creates) embeddings.db in dataDir and loads it.
// dimension 0 adopts the width of the first stored vector.
func NewVectorStore(dataDir string, dimension int) (*VectorStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, "embeddings.db"), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}

	s := &VectorStore{
		db:        db,
		dimension: dimension,
		records:   make(map[string]*domain.EmbeddingRecord),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	return s, nil
}

func (s *VectorStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).ForEach(func(k, v []byte) error {
			var stored storedRecord
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("record %s: %w", k, err)
			}
			if s.dimension == 0 {
				s.dimension = len(stored.Vector)
			}
			s.records[string(k)] = &domain.EmbeddingRecord{
				ChunkID:  string(k),
				Vector:   stored.Vector,
				Text:     stored.Text,
				Metadata: stored.Metadata,
			}
			return nil
		})
	})
}

// Close closes the underlying database
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Upsert stores records atomically; the cache changes only after commit.
func (s *VectorStore) Upsert(_ context.Context, records []*domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimension
	if dimension == 0 {
		dimension = len(records[0].Vector)
	}
	for _, r := range records {
		if len(r.Vector) != dimension {
			return fmt.Errorf("%w: record %s has %d values, expected %d",
				domain.ErrDimensionMismatch, r.ChunkID, len(r.Vector), dimension)
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for _, r := range records {
			data, err := json.Marshal(storedRecord{Vector: r.Vector, Text: r.Text, Metadata: r.Metadata})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(r.ChunkID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.dimension = dimension
	for _, r := range records {
		cp := *r
		s.records[r.ChunkID] = &cp
	}
	return nil
}

// Search returns the nearest records by L2 distance
func (s *VectorStore) Search(_ context.Context, vector []float32, limit int, documentIDs []string) ([]*domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || len(s.records) == 0 {
		return []*domain.SearchResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d values, expected %d", domain.ErrDimensionMismatch, len(vector), s.dimension)
	}

	var allowed map[string]bool
	if len(documentIDs) > 0 {
		allowed = make(map[string]bool, len(documentIDs))
		for _, id := range documentIDs {
			allowed[id] = true
		}
	}

	results := make([]*domain.SearchResult, 0, len(s.records))
	for _, r := range s.records {
		if allowed != nil && !allowed[r.Metadata.DocumentID] {
			continue
		}
		d := euclidean(vector, r.Vector)
		results = append(results, &domain.SearchResult{
			ChunkID:    r.ChunkID,
			DocumentID: r.Metadata.DocumentID,
			Text:       r.Text,
			Metadata:   r.Metadata,
			Distance:   d,
			Score:      domain.ScoreFromDistance(d),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeleteByDocument removes every record of a document
func (s *VectorStore) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		delete(s.records, id)
	}
	return len(ids), nil
}

// Count returns the number of stored records
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Backend returns a short name of the storage backend
func (s *VectorStore) Backend() string {
	return "bbolt"
}

// HealthCheck verifies the database file is still open
func (s *VectorStore) HealthCheck(_ context.Context) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketEmbeddings) == nil {
			return fmt.Errorf("embeddings bucket missing")
		}
		return nil
	})
}

// euclidean calculates the L2 distance between two vectors.
func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
