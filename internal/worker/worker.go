package worker

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-research/internal/core/services"
)

// ErrStopped is returned by Submit once the worker no longer accepts jobs.
var ErrStopped = errors.New("worker stopped")

// Job is one file to ingest, relative to the worker's file system.
type Job struct {
	Path string
}

// Result is the outcome of a Job.
type Result struct {
	Job      Job
	Document *domain.Document
	Err      error
	Duration time.Duration
}

// Worker ingests files with a fixed number of goroutines and, in worker
// mode, hosts the retention cleanup scheduler.
type Worker struct {
	documents driving.DocumentService
	files     fs.FS
	cleanup   *services.CleanupScheduler
	logger    *slog.Logger

	concurrency int
	queueSize   int

	mu       sync.RWMutex
	running  bool
	closed   bool
	jobs     chan Job
	results  chan Result
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// WorkerConfig holds configuration for the worker.
type WorkerConfig struct {
	Documents   driving.DocumentService   // nil disables ingestion
	Files       fs.FS                     // source of Job paths
	Cleanup     *services.CleanupScheduler // optional
	Logger      *slog.Logger
	Concurrency int // parallel uploads (default: 1)
	QueueSize   int // buffered jobs and results (default: 64)
}

// NewWorker creates a new worker.
func NewWorker(cfg WorkerConfig) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Worker{
		documents:   cfg.Documents,
		files:       cfg.Files,
		cleanup:     cfg.Cleanup,
		logger:      logger,
		concurrency: concurrency,
		queueSize:   queueSize,
	}
}

// Start launches the ingestion goroutines and the cleanup scheduler.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.jobs = make(chan Job, w.queueSize)
	w.results = make(chan Result, w.queueSize)
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"ingestion", w.documents != nil,
		"cleanup", w.cleanup != nil,
	)

	if w.cleanup != nil {
		w.cleanup.Start(ctx)
	}

	var wg sync.WaitGroup
	if w.documents != nil {
		for i := 0; i < w.concurrency; i++ {
			wg.Add(1)
			go func(workerID int) {
				defer wg.Done()
				w.processLoop(ctx, workerID)
			}(i)
		}
	}

	go func() {
		wg.Wait()
		close(w.results)
		close(w.doneCh)
	}()

	return nil
}

// Submit queues a job, blocking while the queue is full.
func (w *Worker) Submit(ctx context.Context, job Job) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.running || w.closed || w.documents == nil {
		return ErrStopped
	}

	select {
	case w.jobs <- job:
		return nil
	case <-w.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results streams job outcomes. The channel closes once every goroutine has exited.
func (w *Worker) Results() <-chan Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.results
}

// Close stops accepting jobs; queued jobs still run.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && !w.closed {
		w.closed = true
		close(w.jobs)
	}
}

// Stop abandons queued jobs, stops the scheduler and waits for goroutines.
func (w *Worker) Stop() {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()
	if !running {
		return
	}

	w.stopOnce.Do(func() { close(w.stopCh) })

	if w.cleanup != nil {
		w.cleanup.Stop()
	}

	// unblock goroutines waiting to hand over a result
	go func() {
		for range w.results {
		}
	}()
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until all ingestion goroutines have exited.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case job, ok := <-w.jobs:
			if !ok {
				return
			}
			result := w.process(ctx, job, logger)
			select {
			case w.results <- result:
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// process reads and uploads a single file.
func (w *Worker) process(ctx context.Context, job Job, logger *slog.Logger) Result {
	start := time.Now()
	result := Result{Job: job}

	content, err := fs.ReadFile(w.files, job.Path)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		logger.Error("read failed", "path", job.Path, "error", err)
		return result
	}

	result.Document, result.Err = w.documents.Upload(ctx, &driving.UploadRequest{
		Filename: path.Base(job.Path),
		Content:  content,
	})
	result.Duration = time.Since(start)

	if result.Err != nil {
		logger.Error("ingest failed", "path", job.Path, "duration", result.Duration, "error", result.Err)
	} else {
		logger.Debug("ingested", "path", job.Path, "document_id", result.Document.ID, "chunks", result.Document.ChunkCount)
	}
	return result
}
