package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// MockFileStore keeps uploaded bytes in memory
type MockFileStore struct {
	mu    sync.RWMutex
	files map[string][]byte

	// SaveErr injects a failure into Save when set
	SaveErr error
}

// NewMockFileStore creates a new MockFileStore
func NewMockFileStore() *MockFileStore {
	return &MockFileStore{files: make(map[string][]byte)}
}

func (m *MockFileStore) Save(ctx context.Context, documentID string, content []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[documentID] = append([]byte(nil), content...)
	return nil
}

func (m *MockFileStore) Load(ctx context.Context, documentID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), content...), nil
}

func (m *MockFileStore) Delete(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, documentID)
	return nil
}

// Has reports whether bytes are stored for documentID
func (m *MockFileStore) Has(documentID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[documentID]
	return ok
}

// Len returns the number of stored files
func (m *MockFileStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
