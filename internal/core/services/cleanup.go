package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Cleanup defaults
const (
	DefaultCleanupInterval = 6 * time.Hour
	DefaultRetention       = 48 * time.Hour

	cleanupLockName = "cleanup"
)

// CleanupScheduler periodically removes documents older than the retention
// window from the index, the registry and the upload store.
//
// For multi-worker deployments, configure a DistributedLock so only one
// instance deletes at a time.
type CleanupScheduler struct {
	registry driven.DocumentStore
	index    *EmbeddingIndex
	files    driven.FileStore
	lock     driven.DistributedLock
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	interval  time.Duration
	retention time.Duration
	lockTTL   time.Duration
}

// CleanupConfig holds configuration for the cleanup scheduler.
type CleanupConfig struct {
	Registry  driven.DocumentStore
	Index     *EmbeddingIndex
	Files     driven.FileStore       // Optional
	Lock      driven.DistributedLock // Optional
	Logger    *slog.Logger
	Interval  time.Duration // How often to sweep (default: 6h)
	Retention time.Duration // Age after which documents are removed (default: 48h)
	LockTTL   time.Duration // default: 10m
}

// CleanupReport summarises one sweep
type CleanupReport struct {
	Deleted int
	Failed  int
	Skipped bool // lock held elsewhere
}

// NewCleanupScheduler creates a new cleanup scheduler.
func NewCleanupScheduler(cfg CleanupConfig) *CleanupScheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}

	return &CleanupScheduler{
		registry:  cfg.Registry,
		index:     cfg.Index,
		files:     cfg.Files,
		lock:      cfg.Lock,
		logger:    logger,
		now:       time.Now,
		interval:  interval,
		retention: retention,
		lockTTL:   lockTTL,
	}
}

// Start begins the sweep loop. It runs until Stop is called or ctx is cancelled.
func (s *CleanupScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("cleanup scheduler starting", "interval", s.interval, "retention", s.retention)

	go s.run(ctx)
}

// Stop stops the loop and waits for an in-flight sweep to finish.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("cleanup scheduler stopped")
}

func (s *CleanupScheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CleanupScheduler) sweep(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("cleanup sweep failed", "error", err)
	}
}

// RunOnce deletes every document uploaded before now minus the retention.
// Individual delete failures are counted and logged, not returned.
func (s *CleanupScheduler) RunOnce(ctx context.Context) (*CleanupReport, error) {
	report := &CleanupReport{}

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, cleanupLockName, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !acquired {
			s.logger.Debug("cleanup lock held by another instance, skipping sweep")
			report.Skipped = true
			return report, nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), cleanupLockName); err != nil {
				s.logger.Warn("failed to release cleanup lock", "error", err)
			}
		}()
	}

	cutoff := s.now().UTC().Add(-s.retention)
	expired, err := s.registry.ListUploadedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	for _, doc := range expired {
		if err := s.remove(ctx, doc); err != nil {
			report.Failed++
			s.logger.Warn("failed to delete expired document", "document_id", doc.ID, "error", err)
			continue
		}
		report.Deleted++
	}

	if report.Deleted > 0 || report.Failed > 0 {
		s.logger.Info("cleanup sweep finished",
			"deleted", report.Deleted,
			"failed", report.Failed,
			"cutoff", cutoff,
		)
	}
	return report, nil
}

func (s *CleanupScheduler) remove(ctx context.Context, doc *domain.Document) error {
	if _, err := s.index.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if s.files != nil {
		return s.files.Delete(ctx, doc.ID)
	}
	return nil
}
