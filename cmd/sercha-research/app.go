package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-research/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/bolt"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/files"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/memory"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/sercha-research/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/sercha-research/internal/adapters/driven/web"
	"github.com/custodia-labs/sercha-research/internal/config"
	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-research/internal/core/services"
	"github.com/custodia-labs/sercha-research/internal/normalisers"
	"github.com/custodia-labs/sercha-research/internal/postprocessors"
	"github.com/custodia-labs/sercha-research/internal/runtime"
)

// app is the fully wired application shared by the server, worker and CLI commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	runtime   *runtime.Services
	registry  driven.DocumentStore
	files     driven.FileStore
	index     *services.EmbeddingIndex
	limiter   driven.RateLimiter
	lock      driven.DistributedLock
	documents driving.DocumentService
	query     driving.QueryService

	closers []func() error
}

// newApp connects storage backends, configures AI clients and builds the services.
// Postgres and pgvector are used when a database URL is set, SQLite and bbolt otherwise.
// Redis backs rate limiting and the cleanup lock when a Redis URL is set.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// ===== Redis (optional) =====
	var redisClient *goredis.Client
	if cfg.Storage.RedisURL != "" {
		redisClient, err = redisadapter.Connect(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		logger.Info("redis connected")
	}

	// ===== Registry and vector store backends =====
	var db *postgres.DB
	registryBackend, vectorBackend := "sqlite", "bbolt"
	if cfg.Storage.DatabaseURL != "" {
		registryBackend, vectorBackend = "postgres", "pgvector"
		db, err = postgres.Connect(ctx, postgres.DefaultConfig(cfg.Storage.DatabaseURL))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err = db.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("initialize schema: %w", err)
		}
		logger.Info("postgres connected and schema initialized", "pgvector", db.VectorVersion())
	}

	limiterBackend := "memory"
	if redisClient != nil {
		limiterBackend = "redis"
	}

	// ===== AI services =====
	a.runtime = runtime.NewServices(domain.NewRuntimeConfig(registryBackend, vectorBackend, limiterBackend))
	a.closers = append(a.closers, a.runtime.Close)

	var factoryOpts []ai.FactoryOption
	if rps := cfg.LLM.RequestsPerSecond; rps > 0 {
		factoryOpts = append(factoryOpts, ai.WithRateLimit(rps, int(rps)+1))
	}
	if err = a.runtime.Configure(ctx, ai.NewFactory(factoryOpts...), cfg.AISettings(), logger); err != nil {
		return nil, err
	}

	// ===== Stores =====
	var vectors driven.VectorStore
	if db != nil {
		a.registry = postgres.NewDocumentStore(db)
		dimensions := 0
		if embedding := a.runtime.EmbeddingService(); embedding != nil {
			dimensions = embedding.Dimensions()
		}
		vectors = postgres.NewVectorStore(db, dimensions)
	} else {
		registry, err := sqlite.NewDocumentStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, registry.Close)
		a.registry = registry

		store, err := bolt.NewVectorStore(cfg.Storage.DataDir, 0)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		vectors = store
	}

	// Uploads stay on local disk with either registry backend
	uploads, err := files.NewStore(filepath.Join(cfg.Storage.DataDir, "uploads"))
	if err != nil {
		return nil, err
	}
	a.files = uploads

	// ===== Rate limiter and cleanup lock =====
	window := time.Minute
	switch {
	case redisClient != nil:
		a.limiter = redisadapter.NewRateLimiter(redisClient, cfg.Server.RateLimitPerMinute, window)
		a.lock = redisadapter.NewLock(redisClient)
	case db != nil:
		a.limiter = memory.NewRateLimiter(cfg.Server.RateLimitPerMinute, window)
		a.lock = postgres.NewAdvisoryLock(db)
	default:
		// single process: the cleanup sweep needs no lock
		a.limiter = memory.NewRateLimiter(cfg.Server.RateLimitPerMinute, window)
	}

	// ===== Core services =====
	a.index = services.NewEmbeddingIndex(services.EmbeddingIndexConfig{
		Services:  a.runtime,
		Store:     vectors,
		BatchSize: cfg.Embedding.BatchSize,
		Logger:    logger,
	})

	mentions := services.NewMentionResolver(services.MentionConfig{
		Threshold:        cfg.Mentions.FuzzyThreshold,
		SuggestThreshold: cfg.Mentions.SuggestThreshold,
	})

	a.documents = services.NewDocumentService(services.DocumentServiceConfig{
		Registry:   a.registry,
		Index:      a.index,
		Extractors: normalisers.DefaultRegistry(normalisers.ExecRunner{}),
		Pipeline: postprocessors.DefaultPipeline(postprocessors.ChunkConfig{
			ChunkSize: cfg.Ingestion.ChunkSize,
			Overlap:   cfg.Ingestion.ChunkOverlap,
		}),
		Fetcher: web.NewFetcher(web.Config{
			AllowPrivateHosts: cfg.Ingestion.AllowPrivateHosts,
		}),
		Files:       a.files,
		Mentions:    mentions,
		MaxFileSize: cfg.MaxFileSize(),
		Logger:      logger,
	})

	a.query = services.NewQueryService(services.QueryServiceConfig{
		Registry:    a.registry,
		Mentions:    mentions,
		Retriever:   services.NewRetrievalEngine(a.index),
		Synthesizer: services.NewSynthesizer(a.runtime, logger),
		History:     services.NewHistoryLedger(0),
		Timeout:     cfg.QueryTimeout(),
		Logger:      logger,
	})

	rc := a.runtime.Config()
	logger.Info("runtime configured",
		"registry", rc.RegistryBackend,
		"vectors", rc.VectorBackend,
		"limiter", rc.LimiterBackend,
		"embedding", rc.EmbeddingAvailable(),
		"llm", rc.LLMAvailable(),
	)

	return a, nil
}

// cleanupScheduler builds the retention sweep, or nil when disabled.
func (a *app) cleanupScheduler() *services.CleanupScheduler {
	if !a.cfg.Cleanup.Enabled {
		return nil
	}
	return services.NewCleanupScheduler(services.CleanupConfig{
		Registry:  a.registry,
		Index:     a.index,
		Files:     a.files,
		Lock:      a.lock,
		Logger:    a.logger,
		Interval:  a.cfg.CleanupInterval(),
		Retention: a.cfg.Retention(),
	})
}

// Close releases backends in reverse order of acquisition.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("shutdown", "error", err)
	}
}
