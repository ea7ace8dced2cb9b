package normalisers

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Extractor = (*PDFExtractor)(nil)

// ErrPDFToolsMissing is returned by ExecRunner when poppler's pdftotext is not installed.
var ErrPDFToolsMissing = errors.New("pdftotext not found; install poppler (brew install poppler / apt install poppler-utils)")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		if name == "pdftotext" {
			return nil, ErrPDFToolsMissing
		}
		return nil, err
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFExtractor reads per-page text and the Info dictionary in process.
// When a runner is set, poppler's pdftotext and pdfinfo serve as a fallback
// for files the reader cannot decode or that yield no text.
type PDFExtractor struct {
	runner CommandRunner
}

// NewPDFExtractor creates a PDF extractor. A nil runner disables the poppler fallback.
func NewPDFExtractor(runner CommandRunner) *PDFExtractor {
	return &PDFExtractor{runner: runner}
}

func (e *PDFExtractor) Extract(ctx context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	if raw == nil || !bytes.HasPrefix(raw.Content, []byte("%PDF")) {
		return nil, domain.ErrInvalidInput
	}

	texts, meta, err := readPDF(raw.Content)
	if (err != nil || !hasText(texts)) && e.runner != nil {
		popplerTexts, info, popplerErr := e.poppler(ctx, raw.Content)
		switch {
		case popplerErr == nil:
			texts, meta, err = popplerTexts, meta.Merge(info), nil
		case err != nil && !errors.Is(popplerErr, ErrPDFToolsMissing):
			err = errors.Join(err, popplerErr)
		case err == nil && !errors.Is(popplerErr, ErrPDFToolsMissing):
			return nil, popplerErr
		}
	}
	if err != nil {
		return nil, err
	}

	pages := buildPages(texts)
	joined := make([]string, len(pages))
	for i, p := range pages {
		joined[i] = p.Text
	}

	meta.DocumentType = domain.DocumentTypePDF
	if meta.TotalPages == 0 {
		meta.TotalPages = len(texts)
	}

	text := strings.Join(joined, "\n\n")
	meta.WordCount = wordCount(text)

	return &domain.ExtractedContent{Text: text, Pages: pages, Metadata: meta}, nil
}

// readPDF returns the plain text of every page, in page order, plus the
// Info dictionary. The reader panics on some malformed files.
func readPDF(content []byte) (texts []string, meta domain.DocumentMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("%w: unreadable pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, meta, fmt.Errorf("%w: unreadable pdf: %v", domain.ErrInvalidInput, err)
	}

	n := reader.NumPage()
	texts = make([]string, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, meta, fmt.Errorf("%w: page %d: %v", domain.ErrInvalidInput, i, err)
		}
		texts[i-1] = text
	}

	meta = pdfInfo(reader.Trailer().Key("Info"))
	meta.TotalPages = n
	return texts, meta, nil
}

// pdfInfo maps the trailer's Info dictionary onto document metadata.
func pdfInfo(info pdf.Value) domain.DocumentMetadata {
	if info.IsNull() {
		return domain.DocumentMetadata{}
	}
	field := func(key string) string {
		return strings.TrimSpace(info.Key(key).Text())
	}
	return domain.DocumentMetadata{
		Title:        field("Title"),
		Author:       field("Author"),
		Subject:      field("Subject"),
		Creator:      field("Creator"),
		Producer:     field("Producer"),
		CreationDate: field("CreationDate"),
	}
}

// poppler runs pdftotext and pdfinfo on a temporary copy of content.
func (e *PDFExtractor) poppler(ctx context.Context, content []byte) ([]string, domain.DocumentMetadata, error) {
	var meta domain.DocumentMetadata

	tmp, err := os.CreateTemp("", "sercha-*.pdf")
	if err != nil {
		return nil, meta, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, meta, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, meta, fmt.Errorf("close temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", tmp.Name(), "-")
	if err != nil {
		return nil, meta, fmt.Errorf("pdftotext: %w", err)
	}
	if info, err := e.runner.Run(ctx, "pdfinfo", tmp.Name()); err == nil {
		meta = parsePDFInfo(info)
	}

	texts := strings.Split(string(out), "\f")
	if n := len(texts); n > 0 && strings.TrimSpace(texts[n-1]) == "" {
		// pdftotext ends every page, including the last, with a form feed
		texts = texts[:n-1]
	}
	return texts, meta, nil
}

func hasText(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

func (e *PDFExtractor) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (e *PDFExtractor) Priority() int {
	return 50
}

// buildPages numbers page texts from 1 and skips pages without text.
func buildPages(texts []string) []domain.Page {
	var pages []domain.Page
	for i, raw := range texts {
		text := cleanText(raw)
		if text == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i + 1, Text: text})
	}
	return pages
}

// parsePDFInfo reads the "Key: value" lines printed by pdfinfo.
func parsePDFInfo(out []byte) domain.DocumentMetadata {
	var meta domain.DocumentMetadata
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Title":
			meta.Title = value
		case "Author":
			meta.Author = value
		case "Subject":
			meta.Subject = value
		case "Creator":
			meta.Creator = value
		case "Producer":
			meta.Producer = value
		case "CreationDate":
			meta.CreationDate = value
		case "Pages":
			if n, err := strconv.Atoi(value); err == nil {
				meta.TotalPages = n
			}
		}
	}
	return meta
}
