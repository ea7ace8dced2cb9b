package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven/mocks"
)

func TestRetrievalEngine_Retrieve(t *testing.T) {
	ctx := context.Background()
	idx := NewEmbeddingIndex(EmbeddingIndexConfig{
		Services: createTestServices(mocks.NewMockEmbeddingService(), nil),
		Store:    mocks.NewMockVectorStore(),
	})
	engine := NewRetrievalEngine(idx)

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}
	_, err := idx.Add(ctx, "doc", textChunks(texts...), domain.DocumentMetadata{})
	require.NoError(t, err)

	// Default depth applies when unset
	results, err := engine.Retrieve(ctx, "x", 0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, "doc_chunk_0", results[0].ChunkID)

	results, err = engine.Retrieve(ctx, "x", 3, []string{"other"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFormatCitations(t *testing.T) {
	long := strings.Repeat("a", 250)
	results := []*domain.SearchResult{
		{
			ChunkID:    "d1_chunk_0",
			DocumentID: "d1",
			Text:       "short text",
			Score:      0.9,
			Metadata: domain.ChunkMetadata{
				DocumentID: "d1",
				PageNumber: domain.IntPtr(3),
				Document:   map[string]string{"filename": "paper.pdf"},
			},
		},
		{
			ChunkID: "d2_chunk_5",
			Text:    long,
			Score:   0.4,
			Metadata: domain.ChunkMetadata{
				DocumentID: "d2",
			},
		},
	}

	citations := FormatCitations(results)
	require.Len(t, citations, 2)

	assert.Equal(t, "d1", citations[0].DocumentID)
	assert.Equal(t, "paper.pdf", citations[0].DocumentName)
	assert.Equal(t, "d1_chunk_0", citations[0].ChunkID)
	assert.Equal(t, 3, *citations[0].PageNumber)
	assert.Equal(t, 0.9, citations[0].RelevanceScore)
	assert.Equal(t, "short text", citations[0].TextSnippet)

	assert.Equal(t, "d2", citations[1].DocumentID)
	assert.Equal(t, "Unknown", citations[1].DocumentName)
	assert.Nil(t, citations[1].PageNumber)
	assert.Equal(t, strings.Repeat("a", 200)+"...", citations[1].TextSnippet)
	assert.Equal(t, 0.4, citations[1].RelevanceScore)

	assert.Empty(t, FormatCitations(nil))
	assert.NotNil(t, FormatCitations(nil))
}
