package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// Mention matching defaults
const (
	DefaultMentionThreshold = 0.6
	DefaultSuggestThreshold = 0.4
	DefaultSuggestLimit     = 5
)

var (
	mentionPattern    = regexp.MustCompile(`@([\p{L}\p{N}_]+)`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonWordPattern    = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

// MentionResolver maps @name tokens in a query to documents.
type MentionResolver struct {
	matcher          Matcher
	threshold        float64
	suggestThreshold float64
}

// MentionConfig holds configuration for the MentionResolver.
type MentionConfig struct {
	Matcher          Matcher // default: SequenceMatcher
	Threshold        float64 // fuzzy match cutoff (default: 0.6)
	SuggestThreshold float64 // fuzzy suggestion cutoff (default: 0.4)
}

// NewMentionResolver creates a MentionResolver.
func NewMentionResolver(cfg MentionConfig) *MentionResolver {
	if cfg.Matcher == nil {
		cfg.Matcher = NewSequenceMatcher()
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultMentionThreshold
	}
	if cfg.SuggestThreshold <= 0 || cfg.SuggestThreshold > 1 {
		cfg.SuggestThreshold = DefaultSuggestThreshold
	}
	return &MentionResolver{
		matcher:          cfg.Matcher,
		threshold:        cfg.Threshold,
		suggestThreshold: cfg.SuggestThreshold,
	}
}

// Parse extracts @mentions from query and resolves them against docs.
// Exact normalised-name matches win over fuzzy ones; unresolved mentions
// are dropped. Every mention token is removed from the clean query.
func (r *MentionResolver) Parse(query string, docs []domain.DocumentRef) *domain.MentionResult {
	result := &domain.MentionResult{
		CleanQuery:  collapseWhitespace(mentionPattern.ReplaceAllString(query, "")),
		DocumentIDs: []string{},
		Names:       []string{},
	}

	tokens := mentionPattern.FindAllStringSubmatch(query, -1)
	if len(tokens) == 0 || len(docs) == 0 {
		return result
	}

	lowered := make([]string, len(docs))
	for i, d := range docs {
		lowered[i] = strings.ToLower(d.Name)
	}

	seenIDs := make(map[string]bool)
	seenNames := make(map[string]bool)
	for _, tok := range tokens {
		doc, ok := r.resolve(tok[1], docs, lowered)
		if !ok {
			continue
		}
		if !seenIDs[doc.ID] {
			seenIDs[doc.ID] = true
			result.DocumentIDs = append(result.DocumentIDs, doc.ID)
		}
		if !seenNames[doc.Name] {
			seenNames[doc.Name] = true
			result.Names = append(result.Names, doc.Name)
		}
	}

	result.HasMentions = len(result.DocumentIDs) > 0
	return result
}

func (r *MentionResolver) resolve(mention string, docs []domain.DocumentRef, lowered []string) (domain.DocumentRef, bool) {
	token := strings.ToLower(mention)
	for i, name := range lowered {
		if token == mentionKey(name) {
			return docs[i], true
		}
	}

	target := strings.ReplaceAll(token, "_", " ")
	best, ok := r.matcher.BestMatch(target, lowered, r.threshold)
	if !ok {
		return domain.DocumentRef{}, false
	}
	for i, name := range lowered {
		if name == best {
			return docs[i], true
		}
	}
	return domain.DocumentRef{}, false
}

// Suggest returns up to limit document names for a partial mention.
// Prefix matches come first; fuzzy matches are used only when no name
// starts with the prefix.
func (r *MentionResolver) Suggest(prefix string, docs []domain.DocumentRef, limit int) []domain.DocumentRef {
	prefix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(prefix), "@"))
	if prefix == "" {
		return []domain.DocumentRef{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	out := []domain.DocumentRef{}
	for _, d := range docs {
		if strings.HasPrefix(strings.ToLower(d.Name), prefix) {
			out = append(out, d)
		}
	}

	if len(out) == 0 {
		lowered := make([]string, len(docs))
		for i, d := range docs {
			lowered[i] = strings.ToLower(d.Name)
		}
		matched := make(map[string]bool)
		for _, m := range r.matcher.CloseMatches(prefix, lowered, r.suggestThreshold, limit) {
			matched[m] = true
		}
		for i, d := range docs {
			if matched[lowered[i]] {
				out = append(out, d)
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FormatMentionName renders a document name as a mention token,
// e.g. "My Document.pdf" becomes "my_document".
func FormatMentionName(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	name = nonWordPattern.ReplaceAllString(name, "_")
	return strings.Trim(strings.ToLower(name), "_")
}

// mentionKey normalises a lowercased document name for exact matching.
func mentionKey(name string) string {
	return strings.NewReplacer(" ", "_", ".", "_").Replace(name)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
