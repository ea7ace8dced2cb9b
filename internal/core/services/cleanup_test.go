package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven/mocks"
)

type cleanupFixture struct {
	scheduler *CleanupScheduler
	registry  *mocks.MockDocumentStore
	files     *mocks.MockFileStore
	store     *mocks.MockVectorStore
	index     *EmbeddingIndex
	lock      *mocks.MockDistributedLock
	now       time.Time
}

func newCleanupFixture(t *testing.T) *cleanupFixture {
	t.Helper()
	registry := mocks.NewMockDocumentStore()
	files := mocks.NewMockFileStore()
	store := mocks.NewMockVectorStore()
	index := NewEmbeddingIndex(EmbeddingIndexConfig{
		Services: createTestServices(mocks.NewMockEmbeddingService(), nil),
		Store:    store,
	})
	lock := mocks.NewMockDistributedLock()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	s := NewCleanupScheduler(CleanupConfig{
		Registry: registry,
		Index:    index,
		Files:    files,
		Lock:     lock,
		Interval: 50 * time.Millisecond,
	})
	s.now = func() time.Time { return now }

	return &cleanupFixture{scheduler: s, registry: registry, files: files, store: store, index: index, lock: lock, now: now}
}

func (f *cleanupFixture) addDocument(t *testing.T, id string, age time.Duration) {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{ID: id, Name: id + ".txt", UploadedAt: f.now.Add(-age)}
	if err := f.registry.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := f.files.Save(ctx, id, []byte("text of "+id)); err != nil {
		t.Fatalf("store file: %v", err)
	}
	if _, err := f.index.Add(ctx, id, textChunks("text of "+id), doc.Metadata); err != nil {
		t.Fatalf("index: %v", err)
	}
}

func TestNewCleanupScheduler_Defaults(t *testing.T) {
	s := NewCleanupScheduler(CleanupConfig{})

	if s.interval != DefaultCleanupInterval {
		t.Errorf("expected interval %v, got %v", DefaultCleanupInterval, s.interval)
	}
	if s.retention != DefaultRetention {
		t.Errorf("expected retention %v, got %v", DefaultRetention, s.retention)
	}
	if s.lockTTL != 10*time.Minute {
		t.Errorf("expected lock TTL 10m, got %v", s.lockTTL)
	}
	if s.logger == nil {
		t.Error("expected default logger")
	}
}

func TestCleanupScheduler_RunOnce(t *testing.T) {
	f := newCleanupFixture(t)
	ctx := context.Background()

	f.addDocument(t, "old", 72*time.Hour)
	f.addDocument(t, "fresh", time.Hour)

	report, err := f.scheduler.RunOnce(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Deleted != 1 || report.Failed != 0 || report.Skipped {
		t.Errorf("unexpected report: %+v", report)
	}

	if _, err := f.registry.Get(ctx, "old"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected old document removed, got %v", err)
	}
	if _, ok := f.store.Get(domain.ChunkID("old", 0)); ok {
		t.Error("expected old chunks removed from the index")
	}
	if f.files.Has("old") {
		t.Error("expected old upload removed from the file store")
	}
	if _, err := f.registry.Get(ctx, "fresh"); err != nil {
		t.Errorf("expected fresh document kept, got %v", err)
	}
	if !f.files.Has("fresh") {
		t.Error("expected fresh upload kept")
	}
	if f.lock.IsHeld(cleanupLockName) {
		t.Error("expected lock released after sweep")
	}
	if f.lock.Acquisitions() != 1 {
		t.Errorf("expected 1 lock acquisition, got %d", f.lock.Acquisitions())
	}
}

func TestCleanupScheduler_LockHeldElsewhere(t *testing.T) {
	f := newCleanupFixture(t)
	f.addDocument(t, "old", 72*time.Hour)
	f.lock.SetLockHeld(cleanupLockName, time.Minute)

	report, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Skipped {
		t.Error("expected sweep to be skipped")
	}
	if n, _ := f.registry.Count(context.Background()); n != 1 {
		t.Errorf("expected document kept while lock is held, got %d", n)
	}
}

func TestCleanupScheduler_LockError(t *testing.T) {
	f := newCleanupFixture(t)
	f.lock.AcquireFn = func(string, time.Duration) (bool, error) {
		return false, errors.New("redis down")
	}

	if _, err := f.scheduler.RunOnce(context.Background()); err == nil {
		t.Error("expected lock error")
	}
}

func TestCleanupScheduler_CountsFailures(t *testing.T) {
	f := newCleanupFixture(t)
	f.addDocument(t, "old", 72*time.Hour)
	f.store.DeleteErr = errors.New("index offline")

	report, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 1 || report.Deleted != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestCleanupScheduler_WithoutLock(t *testing.T) {
	f := newCleanupFixture(t)
	f.scheduler.lock = nil
	f.addDocument(t, "old", 49*time.Hour)

	report, err := f.scheduler.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Deleted != 1 {
		t.Errorf("expected 1 deletion, got %+v", report)
	}
}

func TestCleanupScheduler_StartStop(t *testing.T) {
	f := newCleanupFixture(t)
	f.addDocument(t, "old", 72*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.scheduler.Start(ctx)
	f.scheduler.Start(ctx) // no-op

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := f.registry.Count(ctx); n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected the first sweep to run on start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	f.scheduler.Stop()

	f.scheduler.mu.Lock()
	running := f.scheduler.running
	f.scheduler.mu.Unlock()
	if running {
		t.Error("expected scheduler to be stopped")
	}

	f.scheduler.Stop() // Should not panic
}

func TestCleanupScheduler_ContextCancellation(t *testing.T) {
	f := newCleanupFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	f.scheduler.Start(ctx)
	cancel()

	select {
	case <-f.scheduler.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not exit after context cancellation")
	}
}
