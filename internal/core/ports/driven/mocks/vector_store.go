package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// MockVectorStore is an in-memory brute-force VectorStore for testing
type MockVectorStore struct {
	mu      sync.RWMutex
	records map[string]*domain.EmbeddingRecord

	// SearchErr, UpsertErr and DeleteErr inject failures when set
	SearchErr error
	UpsertErr error
	DeleteErr error
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		records: make(map[string]*domain.EmbeddingRecord),
	}
}

func (m *MockVectorStore) Upsert(ctx context.Context, records []*domain.EmbeddingRecord) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ChunkID] = r
	}
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, vector []float32, limit int, documentIDs []string) ([]*domain.SearchResult, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	allowed := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		allowed[id] = true
	}

	results := make([]*domain.SearchResult, 0)
	for _, r := range m.records {
		if len(allowed) > 0 && !allowed[r.Metadata.DocumentID] {
			continue
		}
		d := l2(vector, r.Vector)
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
		if results[i].Distance == results[j].Distance {
			return results[i].ChunkID < results[j].ChunkID
		}
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockVectorStore) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	n := 0
	for id, r := range m.records {
		if r.Metadata.DocumentID == documentID {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

func (m *MockVectorStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *MockVectorStore) Backend() string {
	return "mock"
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	return nil
}

// Get returns a stored record by chunk ID (for test assertions).
func (m *MockVectorStore) Get(chunkID string) (*domain.EmbeddingRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[chunkID]
	return r, ok
}

// ChunkIDs returns the sorted IDs of all stored records.
func (m *MockVectorStore) ChunkIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
