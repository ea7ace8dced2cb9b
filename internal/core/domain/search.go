package domain

// SnippetLength is the number of characters kept in a citation snippet
const SnippetLength = 200

// SearchResult is one nearest-neighbour hit from the embedding index
type SearchResult struct {
	ChunkID    string        `json:"chunk_id"`
	DocumentID string        `json:"document_id"`
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Distance   float64       `json:"distance"`
	Score      float64       `json:"relevance_score"`
}

// ScoreFromDistance converts a non-negative distance into a relevance
// score in (0, 1], strictly decreasing in distance.
func ScoreFromDistance(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance)
}

// Citation is the user-facing reference to a retrieved chunk
type Citation struct {
	DocumentID     string  `json:"document_id"`
	DocumentName   string  `json:"document_name"`
	ChunkID        string  `json:"chunk_id"`
	PageNumber     *int    `json:"page_number,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	TextSnippet    string  `json:"text_snippet"`
}

// Snippet returns the first n characters of text, with "..." appended when
// anything was cut.
func Snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// IndexStats describes the embedding index
type IndexStats struct {
	TotalChunks    int    `json:"total_chunks"`
	TotalDocuments int    `json:"total_documents"`
	Backend        string `json:"backend"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
}
