package driven

import (
	"context"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// Extractor turns raw document bytes into text, pages and metadata.
type Extractor interface {
	// Extract parses raw content. Returns domain.ErrInvalidInput when the
	// content is not a valid document of a supported type.
	Extract(ctx context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error)

	// SupportedTypes returns MIME types this extractor handles.
	// Can include wildcards like "text/*" or specific types like "text/markdown".
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	// Priority ranges:
	//   50-89:  Format-specific (PDF, DOCX, Markdown, HTML)
	//   10-49:  Generic (plain text)
	//   1-9:    Fallback
	Priority() int
}

// ExtractorRegistry manages extractors.
// When multiple extractors match a MIME type, the highest priority one is used.
type ExtractorRegistry interface {
	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if no extractor is registered for the type.
	Get(mimeType string) Extractor

	// GetAll retrieves all extractors that match a MIME type, sorted by priority (highest first).
	GetAll(mimeType string) []Extractor

	// Register registers an extractor.
	Register(extractor Extractor)

	// List returns all registered MIME types.
	List() []string
}

// ChunkSource is the document text a chunk pipeline works from.
type ChunkSource struct {
	// Text is the full concatenated document text
	Text string

	// Pages holds per-page text for paginated documents, nil otherwise
	Pages []domain.Page
}

// PostProcessor is one stage of the chunk pipeline.
// Processors form a pipeline: Chunker -> PageAttributor -> EmptyChunkFilter.
type PostProcessor interface {
	// Process applies this stage to the chunks of the previous stage.
	// The first processor (Chunker) receives a single chunk with the full content.
	Process(src ChunkSource, chunks []Chunk) []Chunk

	// Name returns the processor name for logging/debugging.
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier).
	// Chunker should be 0, subsequent processors increment from there.
	Order() int
}

// Chunk represents a piece of document content for processing.
type Chunk struct {
	// Content is the text content of the chunk
	Content string

	// Position is the chunk index within the document (0-based).
	// Positions are assigned by the chunker and never renumbered.
	Position int

	// StartOffset is the character offset of the chunk's first occurrence
	// in the document text, -1 when unknown
	StartOffset int

	// EndOffset is the character offset for chunk end, -1 when unknown
	EndOffset int

	// PageNumber is the 1-based page containing StartOffset, nil when unknown
	PageNumber *int
}

// PostProcessorPipeline chains multiple post-processors in order.
type PostProcessorPipeline interface {
	// Process applies all processors in order.
	// Output is the processed chunks ready for embedding/indexing.
	Process(src ChunkSource) []Chunk

	// Add adds a processor to the pipeline.
	// Processors are sorted by Order() before processing.
	Add(processor PostProcessor)

	// List returns processor names in order.
	List() []string
}
