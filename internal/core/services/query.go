package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// DefaultQueryTimeout bounds one query end to end
const DefaultQueryTimeout = 120 * time.Second

// Verify interface compliance
var _ driving.QueryService = (*queryService)(nil)

// queryService runs the query pipeline:
// mentions -> retrieval -> synthesis -> history.
type queryService struct {
	registry    driven.DocumentStore
	mentions    *MentionResolver
	retriever   Retriever
	synthesizer *Synthesizer
	history     *HistoryLedger
	timeout     time.Duration
	logger      *slog.Logger
}

// QueryServiceConfig holds the collaborators of the query pipeline.
type QueryServiceConfig struct {
	Registry    driven.DocumentStore // Optional: @mentions are left in the question without it
	Mentions    *MentionResolver
	Retriever   Retriever
	Synthesizer *Synthesizer
	History     *HistoryLedger
	Timeout     time.Duration // per query (default: 120s)
	Logger      *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(cfg QueryServiceConfig) driving.QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mentions == nil {
		cfg.Mentions = NewMentionResolver(MentionConfig{})
	}
	if cfg.History == nil {
		cfg.History = NewHistoryLedger(DefaultHistoryCapacity)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &queryService{
		registry:    cfg.Registry,
		mentions:    cfg.Mentions,
		retriever:   cfg.Retriever,
		synthesizer: cfg.Synthesizer,
		history:     cfg.History,
		timeout:     timeout,
		logger:      logger,
	}
}

// Ask answers one question.
func (s *queryService) Ask(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
	start := time.Now()

	if req == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	question := req.Question
	documentIDs := req.DocumentIDs

	var mentioned *domain.MentionResult
	if s.registry != nil && mentionPattern.MatchString(question) {
		refs, err := s.references(ctx)
		if err != nil {
			return nil, domain.NewStageError(domain.StageRetrieval, "list documents", err)
		}
		mentioned = s.mentions.Parse(question, refs)
		if mentioned.CleanQuery != "" {
			question = mentioned.CleanQuery
		}
		if mentioned.HasMentions {
			documentIDs = mentioned.DocumentIDs
			s.logger.Debug("query scoped by mentions", "documents", mentioned.Names)
		}
	}

	results, err := s.retriever.Retrieve(ctx, question, req.NResults, documentIDs)
	if err != nil {
		return nil, err
	}

	out, err := s.synthesizer.Synthesize(ctx, SynthesisInput{
		Mode:    req.Mode,
		Query:   question,
		Results: results,
		History: req.ConversationHistory,
	})
	if err != nil {
		return nil, err
	}

	if mentioned != nil && mentioned.HasMentions {
		out.Metadata["mentioned_documents"] = mentioned.Names
	}

	if out.Recordable {
		s.history.Record(question, req.Mode, out.Answer)
	}

	elapsed := time.Since(start)
	s.logger.Info("query answered",
		"mode", req.Mode,
		"sources", len(out.Citations),
		"context_found", out.Metadata["context_found"],
		"duration", elapsed,
	)

	return &domain.QueryResponse{
		Answer:         out.Answer,
		Citations:      out.Citations,
		Mode:           req.Mode,
		ProcessingTime: elapsed.Seconds(),
		Metadata:       out.Metadata,
	}, nil
}

// History returns recent queries, oldest first.
func (s *queryService) History(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.history.Recent(limit), nil
}

func (s *queryService) references(ctx context.Context) ([]domain.DocumentRef, error) {
	docs, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.DocumentRef, len(docs))
	for i, d := range docs {
		refs[i] = d.Ref()
	}
	return refs, nil
}
