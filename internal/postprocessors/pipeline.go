package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// It chains multiple post-processors in order, starting with a Chunker.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
	sorted     bool
}

// NewPipeline creates a new post-processor pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]driven.PostProcessor, 0),
	}
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order.
// The first stage receives a single chunk holding the whole document text.
func (p *Pipeline) Process(src driven.ChunkSource) []driven.Chunk {
	p.mu.Lock()
	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	chunks := []driven.Chunk{
		{
			Content:     src.Text,
			Position:    0,
			StartOffset: 0,
			EndOffset:   utf8.RuneCountInString(src.Text),
		},
	}

	for _, proc := range processors {
		chunks = proc.Process(src, chunks)
	}

	return chunks
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline creates the ingestion pipeline: split, attribute pages,
// drop blank chunks.
func DefaultPipeline(config ChunkConfig) *Pipeline {
	p := NewPipeline()
	p.Add(NewChunker(config))
	p.Add(NewPageAttributor())
	p.Add(NewEmptyChunkFilter())
	return p
}

// EmptyChunkFilter drops chunks that are empty after trimming.
// Positions of the remaining chunks are left untouched, so indices may
// have gaps but never repeat.
type EmptyChunkFilter struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*EmptyChunkFilter)(nil)

// NewEmptyChunkFilter creates a new empty chunk filter.
func NewEmptyChunkFilter() *EmptyChunkFilter {
	return &EmptyChunkFilter{}
}

// Process removes blank chunks.
func (f *EmptyChunkFilter) Process(_ driven.ChunkSource, chunks []driven.Chunk) []driven.Chunk {
	result := make([]driven.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Content) == "" {
			continue
		}
		result = append(result, chunk)
	}
	return result
}

// Name returns the processor name.
func (f *EmptyChunkFilter) Name() string {
	return "empty-chunk-filter"
}

// Order returns 20 - runs last.
func (f *EmptyChunkFilter) Order() int {
	return 20
}
