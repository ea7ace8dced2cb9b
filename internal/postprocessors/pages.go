package postprocessors

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
)

// PageAttributor locates each chunk in the document text and, for
// paginated documents, records the page that contains it.
//
// A chunk is located at the first occurrence of its text. Repeated text
// across pages is therefore attributed to the earliest page.
type PageAttributor struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*PageAttributor)(nil)

// NewPageAttributor creates a new page attributor.
func NewPageAttributor() *PageAttributor {
	return &PageAttributor{}
}

// Process fills StartOffset, EndOffset and PageNumber.
func (a *PageAttributor) Process(src driven.ChunkSource, chunks []driven.Chunk) []driven.Chunk {
	ranges := pageRanges(src.Text, src.Pages)

	result := make([]driven.Chunk, len(chunks))
	for i, chunk := range chunks {
		chunk.StartOffset, chunk.EndOffset, chunk.PageNumber = -1, -1, nil

		idx := -1
		if chunk.Content != "" {
			idx = strings.Index(src.Text, chunk.Content)
		}
		if idx >= 0 {
			start := utf8.RuneCountInString(src.Text[:idx])
			chunk.StartOffset = start
			chunk.EndOffset = start + utf8.RuneCountInString(chunk.Content)
			chunk.PageNumber = pageAt(ranges, idx)
		}
		result[i] = chunk
	}
	return result
}

// Name returns the processor name.
func (a *PageAttributor) Name() string {
	return "page-attributor"
}

// Order returns 10 - runs after the chunker.
func (a *PageAttributor) Order() int {
	return 10
}

type pageRange struct {
	number int
	start  int // byte offset into the full text
	end    int // exclusive; start of the next located page or len(text)
}

// pageRanges finds where each page's text begins in the full text. Pages
// are searched in order from the end of the previous match; pages that
// cannot be found are skipped. Range i spans [start_i, start_{i+1}).
func pageRanges(text string, pages []domain.Page) []pageRange {
	if len(pages) == 0 {
		return nil
	}

	var ranges []pageRange
	cursor := 0
	for _, page := range pages {
		needle := strings.TrimSpace(page.Text)
		if needle == "" {
			continue
		}
		idx := strings.Index(text[cursor:], needle)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		ranges = append(ranges, pageRange{number: page.Number, start: start})
		cursor = start + len(needle)
	}

	for i := range ranges {
		if i+1 < len(ranges) {
			ranges[i].end = ranges[i+1].start
		} else {
			ranges[i].end = len(text)
		}
	}
	return ranges
}

func pageAt(ranges []pageRange, offset int) *int {
	for _, r := range ranges {
		if offset >= r.start && offset < r.end {
			return domain.IntPtr(r.number)
		}
	}
	return nil
}
