package normalisers

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func TestPlaintextExtractor(t *testing.T) {
	e := NewPlaintextExtractor()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple text", "hello world", "hello world"},
		{"windows line endings", "hello\r\nworld", "hello\nworld"},
		{"old mac line endings", "hello\rworld", "hello\nworld"},
		{"mixed line endings", "a\r\nb\rc\n", "a\nb\nc"},
		{"trim whitespace", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractWith(t, e, tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	if e.Priority() != 10 {
		t.Errorf("expected priority 10, got %d", e.Priority())
	}
}

func TestPlaintextExtractor_Metadata(t *testing.T) {
	out, err := NewPlaintextExtractor().Extract(context.Background(), &domain.RawDocument{Content: []byte("one two three")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Metadata.WordCount != 3 {
		t.Errorf("expected 3 words, got %d", out.Metadata.WordCount)
	}
	if out.Metadata.DocumentType != domain.DocumentTypeText {
		t.Errorf("expected txt type, got %s", out.Metadata.DocumentType)
	}
	if out.Pages != nil {
		t.Error("plain text has no pages")
	}
}

func TestPlaintextExtractor_RejectsBinary(t *testing.T) {
	_, err := NewPlaintextExtractor().Extract(context.Background(), &domain.RawDocument{Name: "x.txt", Content: []byte{0xff, 0xfe, 0xfd}})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	_, err = NewPlaintextExtractor().Extract(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil input, got %v", err)
	}
}

func TestMarkdownExtractor(t *testing.T) {
	e := NewMarkdownExtractor()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple markdown", "# Hello\nWorld", "# Hello\nWorld"},
		{"excessive blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"windows line endings", "# Title\r\nContent", "# Title\nContent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractWith(t, e, tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}

	if e.Priority() != 50 {
		t.Errorf("expected priority 50, got %d", e.Priority())
	}
}

func TestMarkdownExtractor_Title(t *testing.T) {
	out, err := NewMarkdownExtractor().Extract(context.Background(), &domain.RawDocument{
		Content: []byte("intro line\n\n# Lecture Notes\n\n## Part one"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Metadata.Title != "Lecture Notes" {
		t.Errorf("expected first H1 as title, got %q", out.Metadata.Title)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapse spaces", "a    b\tc", "a b c"},
		{"trim lines", "  a  \n  b  ", "a\nb"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"whitespace only lines", "a\n   \n\t\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
