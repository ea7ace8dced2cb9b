package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/runtime"
)

// DefaultEmbeddingBatchSize is the number of chunks embedded per request
const DefaultEmbeddingBatchSize = 100

// EmbeddingIndex stores chunk embeddings and answers similarity queries.
// The embedding client is looked up per call since it can be replaced
// at runtime.
type EmbeddingIndex struct {
	services  *runtime.Services
	store     driven.VectorStore
	batchSize int
	logger    *slog.Logger
}

// EmbeddingIndexConfig holds configuration for the EmbeddingIndex.
type EmbeddingIndexConfig struct {
	Services  *runtime.Services
	Store     driven.VectorStore
	BatchSize int // chunks per embedding request (default: 100)
	Logger    *slog.Logger
}

// NewEmbeddingIndex creates an EmbeddingIndex.
func NewEmbeddingIndex(cfg EmbeddingIndexConfig) *EmbeddingIndex {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultEmbeddingBatchSize
	}
	return &EmbeddingIndex{
		services:  cfg.Services,
		store:     cfg.Store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Add embeds and stores the non-empty chunks of a document. Each record
// carries the flattened document metadata plus its chunk identity.
// Returns the number of records stored.
func (idx *EmbeddingIndex) Add(ctx context.Context, documentID string, chunks []domain.Chunk, metadata domain.DocumentMetadata) (int, error) {
	embedder, err := idx.services.RequireEmbedding()
	if err != nil {
		return 0, domain.NewStageError(domain.StageIngestion, "embed chunks", err)
	}

	docMeta := metadata.Flatten()
	records := make([]*domain.EmbeddingRecord, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		chunkID := domain.ChunkID(documentID, c.Index)
		records = append(records, &domain.EmbeddingRecord{
			ChunkID: chunkID,
			Text:    c.Text,
			Metadata: domain.ChunkMetadata{
				DocumentID: documentID,
				ChunkID:    chunkID,
				ChunkIndex: c.Index,
				PageNumber: c.PageNumber,
				Document:   docMeta,
			},
		})
	}

	stored := 0
	for start := 0; start < len(records); start += idx.batchSize {
		end := min(start+idx.batchSize, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return stored, domain.NewStageError(domain.StageIngestion, "embed chunks", err)
		}
		if len(vectors) != len(batch) {
			return stored, domain.NewStageError(domain.StageIngestion, "embed chunks",
				fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors)))
		}
		for i, v := range vectors {
			batch[i].Vector = v
		}

		if err := idx.store.Upsert(ctx, batch); err != nil {
			return stored, domain.NewStageError(domain.StageIngestion, "store vectors", err)
		}
		stored += len(batch)
	}

	idx.logger.Debug("indexed document", "document_id", documentID, "chunks", stored)
	return stored, nil
}

// Search embeds query and returns up to nResults nearest chunks, closest
// first. A non-empty documentIDs restricts the search to those documents.
// An empty index yields an empty slice.
func (idx *EmbeddingIndex) Search(ctx context.Context, query string, nResults int, documentIDs []string) ([]*domain.SearchResult, error) {
	embedder, err := idx.services.RequireEmbedding()
	if err != nil {
		return nil, domain.NewStageError(domain.StageRetrieval, "embed query", err)
	}

	vector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.NewStageError(domain.StageRetrieval, "embed query", err)
	}

	results, err := idx.store.Search(ctx, vector, nResults, documentIDs)
	if err != nil {
		return nil, domain.NewStageError(domain.StageRetrieval, "vector search", err)
	}
	if results == nil {
		results = []*domain.SearchResult{}
	}
	for _, r := range results {
		r.Score = domain.ScoreFromDistance(r.Distance)
		if r.DocumentID == "" {
			r.DocumentID = r.Metadata.DocumentID
		}
	}
	return results, nil
}

// Delete removes every record of a document. Deleting an unknown document
// succeeds.
func (idx *EmbeddingIndex) Delete(ctx context.Context, documentID string) (bool, error) {
	removed, err := idx.store.DeleteByDocument(ctx, documentID)
	if err != nil {
		return false, domain.NewStageError(domain.StageIngestion, "delete vectors", err)
	}
	idx.logger.Debug("removed document from index", "document_id", documentID, "chunks", removed)
	return true, nil
}

// Stats reports the index size and the embedding model in use.
func (idx *EmbeddingIndex) Stats(ctx context.Context) (*domain.IndexStats, error) {
	count, err := idx.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.IndexStats{
		TotalChunks: count,
		Backend:     idx.store.Backend(),
	}
	if embedder := idx.services.EmbeddingService(); embedder != nil {
		stats.EmbeddingModel = embedder.Model()
		stats.Dimensions = embedder.Dimensions()
	}
	return stats, nil
}

// HealthCheck verifies the vector store is reachable.
func (idx *EmbeddingIndex) HealthCheck(ctx context.Context) error {
	return idx.store.HealthCheck(ctx)
}
