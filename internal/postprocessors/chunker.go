package postprocessors

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// ChunkConfig configures the chunker behavior.
// Sizes are measured in characters.
type ChunkConfig struct {
	// ChunkSize is the target maximum characters per chunk
	ChunkSize int `yaml:"chunk_size"`

	// Overlap is the character overlap carried between adjacent chunks
	Overlap int `yaml:"chunk_overlap"`

	// Separators are tried coarsest first; "" splits into single characters
	Separators []string `yaml:"-"`
}

// DefaultSeparators are paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:  1000,
		Overlap:    200,
		Separators: DefaultSeparators,
	}
}

// Validate checks the size/overlap relationship.
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.ChunkSize, c.Overlap)
	}
	return nil
}

// Chunker splits content into overlapping chunks.
// This is the first processor in the pipeline (Order = 0).
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a new chunker with the given config.
// Invalid settings fall back to the defaults.
func NewChunker(config ChunkConfig) *Chunker {
	def := DefaultChunkConfig()
	if config.ChunkSize <= 0 {
		config.ChunkSize = def.ChunkSize
	}
	if config.Overlap < 0 || config.Overlap >= config.ChunkSize {
		config.Overlap = config.ChunkSize / 5
	}
	if len(config.Separators) == 0 {
		config.Separators = def.Separators
	}
	return &Chunker{config: config}
}

// Process splits every incoming chunk and numbers the results consecutively.
func (c *Chunker) Process(_ driven.ChunkSource, chunks []driven.Chunk) []driven.Chunk {
	var result []driven.Chunk
	position := 0

	for _, chunk := range chunks {
		for _, text := range c.Split(chunk.Content) {
			result = append(result, driven.Chunk{
				Content:     text,
				Position:    position,
				StartOffset: -1,
				EndOffset:   -1,
			})
			position++
		}
	}

	return result
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Order returns 0 - chunker should be first.
func (c *Chunker) Order() int {
	return 0
}

// Split breaks text into trimmed chunks of at most ChunkSize characters
// where the separators allow it. A finer separator is only applied to
// pieces the coarser one could not bring under the target size.
func (c *Chunker) Split(text string) []string {
	return c.split(text, c.config.Separators)
}

func (c *Chunker) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var finer []string
	for i, s := range separators {
		if s == "" {
			separator = s
			break
		}
		if strings.Contains(text, s) {
			separator = s
			finer = separators[i+1:]
			break
		}
	}

	var (
		final []string
		good  []string
	)
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < c.config.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, c.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, c.split(piece, finer)...)
		}
	}
	if len(good) > 0 {
		final = append(final, c.merge(good)...)
	}
	return final
}

// merge packs consecutive pieces into chunks no longer than ChunkSize,
// carrying up to Overlap characters of trailing pieces into the next chunk.
func (c *Chunker) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > c.config.ChunkSize && len(current) > 0 {
			if doc := joinTrimmed(current); doc != "" {
				chunks = append(chunks, doc)
			}
			for len(current) > 0 && (total > c.config.Overlap || total+n > c.config.ChunkSize) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if doc := joinTrimmed(current); doc != "" {
		chunks = append(chunks, doc)
	}
	return chunks
}

// splitKeepingSeparator splits text on sep, attaching each separator to the
// start of the piece that follows it. Empty pieces are dropped.
func splitKeepingSeparator(text, sep string) []string {
	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
		return pieces
	}

	parts := strings.Split(text, sep)
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

func joinTrimmed(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
