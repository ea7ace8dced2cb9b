package domain

import (
	"fmt"
	"strings"
	"time"
)

// QueryMode selects the synthesis strategy for a query
type QueryMode string

const (
	QueryModeAnswer    QueryMode = "answer"
	QueryModeSummarize QueryMode = "summarize"
	QueryModeCompare   QueryMode = "compare"
	QueryModeExtract   QueryMode = "extract"
	QueryModeTimeline  QueryMode = "timeline"
)

// QueryModes lists every supported mode
var QueryModes = []QueryMode{
	QueryModeAnswer,
	QueryModeSummarize,
	QueryModeCompare,
	QueryModeExtract,
	QueryModeTimeline,
}

// ParseQueryMode validates a mode tag. An empty tag means answer.
func ParseQueryMode(s string) (QueryMode, error) {
	if s == "" {
		return QueryModeAnswer, nil
	}
	m := QueryMode(strings.ToLower(strings.TrimSpace(s)))
	if m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

// IsValid reports whether m is one of the supported modes.
func (m QueryMode) IsValid() bool {
	for _, known := range QueryModes {
		if m == known {
			return true
		}
	}
	return false
}

// DefaultResults is the retrieval depth used when a request leaves it unset
func (m QueryMode) DefaultResults() int {
	if m == QueryModeAnswer {
		return 5
	}
	return 10
}

// Query limits
const (
	MaxQuestionLength = 1000
	MinResults        = 1
	MaxResults        = 20
	HistoryWindow     = 10
)

// Conversation roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is one prior turn supplied with a query
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is a question to answer against the indexed documents
type QueryRequest struct {
	Question            string                `json:"question"`
	Mode                QueryMode             `json:"query_type"`
	NResults            int                   `json:"n_results"`
	DocumentIDs         []string              `json:"document_ids,omitempty"`
	ConversationHistory []ConversationMessage `json:"conversation_history,omitempty"`
}

// Normalize fills defaults and validates the request.
func (r *QueryRequest) Normalize() error {
	question := strings.TrimSpace(r.Question)
	if question == "" {
		return fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if len([]rune(question)) > MaxQuestionLength {
		return fmt.Errorf("%w: question exceeds %d characters", ErrInvalidInput, MaxQuestionLength)
	}
	r.Question = question

	mode, err := ParseQueryMode(string(r.Mode))
	if err != nil {
		return err
	}
	r.Mode = mode

	if r.NResults == 0 {
		r.NResults = mode.DefaultResults()
	}
	if r.NResults < MinResults || r.NResults > MaxResults {
		return fmt.Errorf("%w: n_results must be between %d and %d", ErrInvalidInput, MinResults, MaxResults)
	}
	return nil
}

// QueryResponse is the synthesized answer with supporting citations
type QueryResponse struct {
	Answer         string         `json:"answer"`
	Citations      []Citation     `json:"citations"`
	Mode           QueryMode      `json:"query_type"`
	ProcessingTime float64        `json:"processing_time"`
	Metadata       map[string]any `json:"metadata"`
}

// ContextFound reports the context_found flag in the response metadata.
func (r *QueryResponse) ContextFound() bool {
	found, _ := r.Metadata["context_found"].(bool)
	return found
}

// HistoryEntry is one recorded query in the history ledger
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Mode      QueryMode `json:"query_type"`
	Answer    string    `json:"answer"`
}

// MentionResult is the outcome of resolving @mentions in a query
type MentionResult struct {
	CleanQuery  string   `json:"clean_query"`
	DocumentIDs []string `json:"document_ids"`
	Names       []string `json:"document_names"`
	HasMentions bool     `json:"has_mentions"`
}
