package normalisers

import (
	"context"
	"testing"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// Mock extractor for testing
type mockExtractor struct {
	name     string
	types    []string
	priority int
}

func (m *mockExtractor) Extract(_ context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	return &domain.ExtractedContent{Text: string(raw.Content) + "-" + m.name}, nil
}

func (m *mockExtractor) SupportedTypes() []string {
	return m.types
}

func (m *mockExtractor) Priority() int {
	return m.priority
}

var _ driven.Extractor = (*mockExtractor)(nil)

func extractWith(t *testing.T, e driven.Extractor, content string) string {
	t.Helper()
	out, err := e.Extract(context.Background(), &domain.RawDocument{Content: []byte(content)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out.Text
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	mock := &mockExtractor{name: "test", types: []string{"text/plain"}, priority: 50}

	r.Register(mock)

	types := r.List()
	if len(types) != 1 {
		t.Errorf("expected 1 type, got %d", len(types))
	}
	if types[0] != "text/plain" {
		t.Errorf("expected text/plain, got %s", types[0])
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	mock := &mockExtractor{name: "test", types: []string{"text/plain"}, priority: 50}
	r.Register(mock)

	// Should find registered type
	n := r.Get("text/plain")
	if n == nil {
		t.Fatal("expected to find extractor")
	}

	// Should not find unregistered type
	n = r.Get("application/json")
	if n != nil {
		t.Error("expected nil for unregistered type")
	}
}

func TestRegistry_Get_PrioritySelection(t *testing.T) {
	r := NewRegistry()

	lowPriority := &mockExtractor{name: "low", types: []string{"text/plain"}, priority: 10}
	highPriority := &mockExtractor{name: "high", types: []string{"text/plain"}, priority: 90}
	mediumPriority := &mockExtractor{name: "medium", types: []string{"text/plain"}, priority: 50}

	// Register in random order
	r.Register(lowPriority)
	r.Register(highPriority)
	r.Register(mediumPriority)

	// Should return highest priority
	n := r.Get("text/plain")
	if n == nil {
		t.Fatal("expected to find extractor")
	}

	result := extractWith(t, n, "test")
	if result != "test-high" {
		t.Errorf("expected high priority extractor, got %s", result)
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()

	n1 := &mockExtractor{name: "n1", types: []string{"text/plain"}, priority: 10}
	n2 := &mockExtractor{name: "n2", types: []string{"text/plain"}, priority: 90}
	n3 := &mockExtractor{name: "n3", types: []string{"text/html"}, priority: 50}

	r.Register(n1)
	r.Register(n2)
	r.Register(n3)

	// Should return 2 extractors for text/plain, sorted by priority
	all := r.GetAll("text/plain")
	if len(all) != 2 {
		t.Fatalf("expected 2 extractors, got %d", len(all))
	}

	// First should be highest priority
	if all[0].Priority() != 90 {
		t.Errorf("expected first priority 90, got %d", all[0].Priority())
	}
	if all[1].Priority() != 10 {
		t.Errorf("expected second priority 10, got %d", all[1].Priority())
	}

	// Should return 1 for text/html
	all = r.GetAll("text/html")
	if len(all) != 1 {
		t.Errorf("expected 1 extractor for text/html, got %d", len(all))
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()

	r.Register(&mockExtractor{name: "n1", types: []string{"text/plain", "text/csv"}, priority: 50})
	r.Register(&mockExtractor{name: "n2", types: []string{"text/html"}, priority: 50})

	types := r.List()

	// Should have 3 unique types
	if len(types) != 3 {
		t.Errorf("expected 3 types, got %d", len(types))
	}

	// Should be sorted
	expected := []string{"text/csv", "text/html", "text/plain"}
	for i, exp := range expected {
		if types[i] != exp {
			t.Errorf("expected type %s at index %d, got %s", exp, i, types[i])
		}
	}
}

func TestRegistry_WildcardMatching(t *testing.T) {
	r := NewRegistry()

	// Register a wildcard extractor
	wildcard := &mockExtractor{name: "text-wildcard", types: []string{"text/*"}, priority: 20}
	specific := &mockExtractor{name: "markdown", types: []string{"text/markdown"}, priority: 50}

	r.Register(wildcard)
	r.Register(specific)

	// text/markdown should match specific (higher priority)
	n := r.Get("text/markdown")
	if n == nil {
		t.Fatal("expected extractor for text/markdown")
	}
	result := extractWith(t, n, "test")
	if result != "test-markdown" {
		t.Errorf("expected markdown extractor, got %s", result)
	}

	// text/csv should match wildcard only
	n = r.Get("text/csv")
	if n == nil {
		t.Fatal("expected extractor for text/csv")
	}
	result = extractWith(t, n, "test")
	if result != "test-text-wildcard" {
		t.Errorf("expected text-wildcard extractor, got %s", result)
	}
}

func TestRegistry_UniversalWildcard(t *testing.T) {
	r := NewRegistry()

	universal := &mockExtractor{name: "universal", types: []string{"*/*"}, priority: 1}
	r.Register(universal)

	// Should match any type
	n := r.Get("application/octet-stream")
	if n == nil {
		t.Fatal("expected extractor for any type")
	}
}

func TestMatchesMIMEType(t *testing.T) {
	tests := []struct {
		name      string
		supported []string
		mimeType  string
		expected  bool
	}{
		{"exact match", []string{"text/plain"}, "text/plain", true},
		{"case insensitive", []string{"TEXT/PLAIN"}, "text/plain", true},
		{"with charset", []string{"text/plain"}, "text/plain; charset=utf-8", true},
		{"wildcard subtype", []string{"text/*"}, "text/plain", true},
		{"wildcard subtype html", []string{"text/*"}, "text/html", true},
		{"wildcard no match", []string{"text/*"}, "application/json", false},
		{"universal wildcard", []string{"*/*"}, "anything/here", true},
		{"no match", []string{"text/plain"}, "text/html", false},
		{"multiple supported", []string{"text/plain", "text/html"}, "text/html", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := matchesMIMEType(tt.supported, tt.mimeType)
			if result != tt.expected {
				t.Errorf("matchesMIMEType(%v, %s) = %v, want %v",
					tt.supported, tt.mimeType, result, tt.expected)
			}
		})
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(&mockRunner{})

	for _, dt := range []domain.DocumentType{
		domain.DocumentTypePDF,
		domain.DocumentTypeDOCX,
		domain.DocumentTypeText,
		domain.DocumentTypeMarkdown,
		domain.DocumentTypeURL,
	} {
		if r.Get(dt.MimeType()) == nil {
			t.Errorf("expected an extractor for %s (%s)", dt, dt.MimeType())
		}
	}

	if r.Get("application/octet-stream") != nil {
		t.Error("binary content must not fall back to an extractor")
	}
	if _, ok := r.Get("text/markdown").(*MarkdownExtractor); !ok {
		t.Error("markdown should be handled by the markdown extractor")
	}
}
