package services

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// unknownDocumentName is shown for citations whose metadata lacks a filename
const unknownDocumentName = "Unknown"

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, nResults int, documentIDs []string) ([]*domain.SearchResult, error)
}

// Verify interface compliance
var _ Retriever = (*RetrievalEngine)(nil)

// RetrievalEngine runs similarity search over the embedding index.
type RetrievalEngine struct {
	index *EmbeddingIndex
}

// NewRetrievalEngine creates a RetrievalEngine over index.
func NewRetrievalEngine(index *EmbeddingIndex) *RetrievalEngine {
	return &RetrievalEngine{index: index}
}

// Retrieve returns up to nResults chunks ordered by decreasing relevance.
func (e *RetrievalEngine) Retrieve(ctx context.Context, query string, nResults int, documentIDs []string) ([]*domain.SearchResult, error) {
	if nResults <= 0 {
		nResults = domain.QueryModeAnswer.DefaultResults()
	}
	return e.index.Search(ctx, query, nResults, documentIDs)
}

// FormatCitations converts search results into citations, preserving order.
func FormatCitations(results []*domain.SearchResult) []domain.Citation {
	citations := make([]domain.Citation, 0, len(results))
	for _, r := range results {
		name := r.Metadata.Filename()
		if name == "" {
			name = unknownDocumentName
		}
		docID := r.DocumentID
		if docID == "" {
			docID = r.Metadata.DocumentID
		}
		citations = append(citations, domain.Citation{
			DocumentID:     docID,
			DocumentName:   name,
			ChunkID:        r.ChunkID,
			PageNumber:     r.Metadata.PageNumber,
			RelevanceScore: r.Score,
			TextSnippet:    domain.Snippet(r.Text, domain.SnippetLength),
		})
	}
	return citations
}
