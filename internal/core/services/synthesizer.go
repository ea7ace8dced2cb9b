package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/runtime"
)

// Fixed answers for modes that need documents
const (
	NoDocumentsToSummarize = "No documents found to summarize."
	NoDocumentsToCompare   = "No documents found to compare."
	NoDocumentsFound       = "No documents found."
)

// GeneralKnowledgeMode marks answers produced without document context
const GeneralKnowledgeMode = "general_knowledge"

// contextAssembler turns retrieved chunks into the prompt context block and
// the mode-specific metadata fields.
type contextAssembler func(results []*domain.SearchResult) (string, map[string]any)

// modeStrategy is the synthesis path of one query mode
type modeStrategy struct {
	prompt      *template.Template
	assemble    contextAssembler
	withHistory bool
	// noContext is the fixed answer when nothing was retrieved; empty means
	// fall back to a general-knowledge answer instead
	noContext string
}

// SynthesisInput is everything the synthesizer needs for one query
type SynthesisInput struct {
	Mode    domain.QueryMode
	Query   string
	Results []*domain.SearchResult
	History []domain.ConversationMessage
}

// Synthesis is the outcome of one synthesis call
type Synthesis struct {
	Answer    string
	Citations []domain.Citation
	Metadata  map[string]any
	// Recordable is false for answers that must stay out of query history
	Recordable bool
}

// Synthesizer produces answers from retrieved chunks with the language model.
type Synthesizer struct {
	services   *runtime.Services
	strategies map[domain.QueryMode]modeStrategy
	logger     *slog.Logger
}

// NewSynthesizer creates a Synthesizer. The language model is looked up
// from services on every call.
func NewSynthesizer(services *runtime.Services, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		services: services,
		logger:   logger,
		strategies: map[domain.QueryMode]modeStrategy{
			domain.QueryModeAnswer:    {prompt: answerPrompt, assemble: labelledContext, withHistory: true},
			domain.QueryModeSummarize: {prompt: summarizePrompt, assemble: joinedContext, noContext: NoDocumentsToSummarize},
			domain.QueryModeCompare:   {prompt: comparePrompt, assemble: groupedContext, noContext: NoDocumentsToCompare},
			domain.QueryModeExtract:   {prompt: extractPrompt, assemble: joinedContext, noContext: NoDocumentsFound},
			domain.QueryModeTimeline:  {prompt: timelinePrompt, assemble: joinedContext, noContext: NoDocumentsFound},
		},
	}
}

// Synthesize answers in.Query according to in.Mode.
// Empty results are not an error: answer mode falls back to general
// knowledge and the other modes return their fixed message.
func (s *Synthesizer) Synthesize(ctx context.Context, in SynthesisInput) (*Synthesis, error) {
	strategy, ok := s.strategies[in.Mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedMode, in.Mode)
	}

	usedHistory := strategy.withHistory && len(in.History) > 0

	if len(in.Results) == 0 {
		if strategy.noContext != "" {
			// Fixed messages are not recorded in history
			return &Synthesis{
				Answer:    strategy.noContext,
				Citations: []domain.Citation{},
				Metadata:  map[string]any{"context_found": false},
			}, nil
		}

		s.logger.Debug("no document context, answering from general knowledge", "mode", in.Mode)
		answer, err := s.generate(ctx, in.Mode, generalPrompt, promptData{
			Query:   in.Query,
			History: formatConversation(in.History),
		})
		if err != nil {
			return nil, err
		}
		return &Synthesis{
			Answer:    answer,
			Citations: []domain.Citation{},
			Metadata: map[string]any{
				"context_found":             false,
				"mode":                      GeneralKnowledgeMode,
				"used_conversation_history": usedHistory,
			},
		}, nil
	}

	contextText, metadata := strategy.assemble(in.Results)
	data := promptData{Context: contextText, Query: in.Query}
	if strategy.withHistory {
		data.History = formatConversation(in.History)
		metadata["used_conversation_history"] = usedHistory
	}

	answer, err := s.generate(ctx, in.Mode, strategy.prompt, data)
	if err != nil {
		return nil, err
	}

	metadata["context_found"] = true
	return &Synthesis{
		Answer:     answer,
		Citations:  FormatCitations(in.Results),
		Metadata:   metadata,
		Recordable: true,
	}, nil
}

func (s *Synthesizer) generate(ctx context.Context, mode domain.QueryMode, t *template.Template, data promptData) (string, error) {
	op := "generate " + string(mode)

	llm, err := s.services.RequireLLM()
	if err != nil {
		return "", domain.NewStageError(domain.StageSynthesis, op, err)
	}

	prompt, err := renderPrompt(t, data)
	if err != nil {
		return "", domain.NewStageError(domain.StageSynthesis, op, err)
	}

	answer, err := llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.NewStageError(domain.StageSynthesis, op, err)
	}
	return answer, nil
}

// labelledContext prefixes every chunk with its source filename.
func labelledContext(results []*domain.SearchResult) (string, map[string]any) {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", documentName(r), r.Text)
	}
	return strings.Join(blocks, "\n\n"), map[string]any{"num_sources": len(results)}
}

// joinedContext concatenates chunk texts in relevance order.
func joinedContext(results []*domain.SearchResult) (string, map[string]any) {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n\n"), map[string]any{"num_sources": len(results)}
}

// groupedContext gathers chunks per document, in order of each document's
// first appearance, so the model sees one block per document.
func groupedContext(results []*domain.SearchResult) (string, map[string]any) {
	var order []string
	groups := make(map[string][]string)
	for _, r := range results {
		name := documentName(r)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], r.Text)
	}

	blocks := make([]string, len(order))
	for i, name := range order {
		blocks[i] = fmt.Sprintf("Document: %s\n%s", name, strings.Join(groups[name], " "))
	}
	return strings.Join(blocks, "\n\n"), map[string]any{
		"num_documents": len(order),
		"num_sources":   len(results),
	}
}

func documentName(r *domain.SearchResult) string {
	if name := r.Metadata.Filename(); name != "" {
		return name
	}
	return unknownDocumentName
}
