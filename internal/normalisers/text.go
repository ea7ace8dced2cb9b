package normalisers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.Extractor = (*PlaintextExtractor)(nil)
	_ driven.Extractor = (*MarkdownExtractor)(nil)
)

// PlaintextExtractor handles plain text content.
type PlaintextExtractor struct{}

// NewPlaintextExtractor creates a plain text extractor.
func NewPlaintextExtractor() *PlaintextExtractor {
	return &PlaintextExtractor{}
}

func (e *PlaintextExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(normaliseLineEndings(text))

	return &domain.ExtractedContent{
		Text: text,
		Metadata: domain.DocumentMetadata{
			DocumentType: domain.DocumentTypeText,
			WordCount:    wordCount(text),
		},
	}, nil
}

func (e *PlaintextExtractor) SupportedTypes() []string {
	return []string{"text/plain"}
}

func (e *PlaintextExtractor) Priority() int {
	return 10
}

// MarkdownExtractor handles Markdown content. Markup is kept; the
// embedding model reads it as text.
type MarkdownExtractor struct{}

// NewMarkdownExtractor creates a Markdown extractor.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

func (e *MarkdownExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	text = collapseBlankLines(normaliseLineEndings(text))

	meta := domain.DocumentMetadata{
		DocumentType: domain.DocumentTypeMarkdown,
		WordCount:    wordCount(text),
		Title:        markdownTitle(text),
	}
	return &domain.ExtractedContent{Text: text, Metadata: meta}, nil
}

func (e *MarkdownExtractor) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (e *MarkdownExtractor) Priority() int {
	return 50
}

// markdownTitle returns the text of the first level-one heading.
func markdownTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func decodeText(raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrInvalidInput, raw.Name)
	}
	return string(raw.Content), nil
}

func normaliseLineEndings(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// collapseBlankLines trims the ends and leaves at most one blank line
// between paragraphs.
func collapseBlankLines(content string) string {
	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(content)
}

// cleanText normalises whitespace inside each line and drops runs of blank
// lines. Used for formats whose extracted text carries layout noise.
func cleanText(content string) string {
	lines := strings.Split(normaliseLineEndings(content), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return collapseBlankLines(strings.Join(lines, "\n"))
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}
