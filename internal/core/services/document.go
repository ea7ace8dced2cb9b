package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// Upload limits
const (
	DefaultMaxFileSize = 50 << 20
	maxFilenameLength  = 255
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService ingests documents and maintains the registry
type documentService struct {
	registry    driven.DocumentStore
	index       *EmbeddingIndex
	extractors  driven.ExtractorRegistry
	pipeline    driven.PostProcessorPipeline
	fetcher     driven.WebFetcher
	files       driven.FileStore
	mentions    *MentionResolver
	maxFileSize int64
	logger      *slog.Logger
	now         func() time.Time
}

// DocumentServiceConfig holds the collaborators of the DocumentService.
type DocumentServiceConfig struct {
	Registry    driven.DocumentStore
	Index       *EmbeddingIndex
	Extractors  driven.ExtractorRegistry
	Pipeline    driven.PostProcessorPipeline
	Fetcher     driven.WebFetcher // Optional: URL ingestion is disabled without it
	Files       driven.FileStore  // Optional: downloads are disabled without it
	Mentions    *MentionResolver
	MaxFileSize int64 // bytes (default: 50MB)
	Logger      *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mentions == nil {
		cfg.Mentions = NewMentionResolver(MentionConfig{})
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &documentService{
		registry:    cfg.Registry,
		index:       cfg.Index,
		extractors:  cfg.Extractors,
		pipeline:    cfg.Pipeline,
		fetcher:     cfg.Fetcher,
		files:       cfg.Files,
		mentions:    cfg.Mentions,
		maxFileSize: maxSize,
		logger:      logger,
		now:         time.Now,
	}
}

// Upload validates, extracts, chunks and indexes an uploaded file
func (s *documentService) Upload(ctx context.Context, req *driving.UploadRequest) (*domain.Document, error) {
	if req == nil {
		return nil, domain.ErrInvalidInput
	}
	name, err := validateFilename(req.Filename)
	if err != nil {
		return nil, err
	}

	docType, ok := domain.DocumentTypeFromExtension(filepath.Ext(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q (allowed: .pdf, .docx, .txt, .md)", domain.ErrUnsupportedType, filepath.Ext(name))
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	if int64(len(req.Content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", domain.ErrFileTooLarge, len(req.Content), s.maxFileSize)
	}

	extracted, err := s.extract(ctx, &domain.RawDocument{
		Name:     name,
		MimeType: docType.MimeType(),
		Content:  req.Content,
	})
	if err != nil {
		return nil, err
	}

	return s.ingest(ctx, name, docType, int64(len(req.Content)), req.Content, extracted)
}

// IngestURL fetches a web page and indexes its readable text
func (s *documentService) IngestURL(ctx context.Context, rawURL string) (*domain.Document, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: url ingestion not configured", domain.ErrServiceUnavailable)
	}

	raw, err := s.fetcher.Fetch(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		return nil, domain.NewStageError(domain.StageIngestion, "fetch url", err)
	}
	if raw.MimeType == "" {
		raw.MimeType = domain.DocumentTypeURL.MimeType()
	}

	extracted, err := s.extract(ctx, raw)
	if err != nil {
		return nil, err
	}

	name := extracted.Metadata.Title
	if name == "" {
		name = extracted.Metadata.Domain
	}
	if name == "" {
		name = raw.Name
	}
	return s.ingest(ctx, sanitizeName(name), domain.DocumentTypeURL, int64(len(raw.Content)), nil, extracted)
}

func (s *documentService) extract(ctx context.Context, raw *domain.RawDocument) (*domain.ExtractedContent, error) {
	extractor := s.extractors.Get(raw.MimeType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedType, raw.MimeType)
	}
	extracted, err := extractor.Extract(ctx, raw)
	if err != nil {
		return nil, domain.NewStageError(domain.StageIngestion, "extract text", err)
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return nil, domain.NewStageError(domain.StageIngestion, "extract text", domain.ErrEmptyContent)
	}
	return extracted, nil
}

// ingest chunks and indexes extracted content, stores the original bytes
// when given, then registers the document. Index records and stored bytes
// are removed again if any later step fails.
func (s *documentService) ingest(ctx context.Context, name string, docType domain.DocumentType, size int64, original []byte, extracted *domain.ExtractedContent) (*domain.Document, error) {
	now := s.now().UTC()
	doc := &domain.Document{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       docType,
		Size:       size,
		UploadedAt: now,
	}
	doc.Metadata = extracted.Metadata.Merge(domain.DocumentMetadata{
		Filename:     name,
		DocumentType: docType,
		FileSize:     size,
		UploadDate:   now.Format(time.RFC3339),
	})

	pieces := s.pipeline.Process(driven.ChunkSource{Text: extracted.Text, Pages: extracted.Pages})
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, domain.Chunk{
			ID:          domain.ChunkID(doc.ID, p.Position),
			DocumentID:  doc.ID,
			Index:       p.Position,
			Text:        p.Content,
			PageNumber:  p.PageNumber,
			StartOffset: p.StartOffset,
		})
	}

	added, err := s.index.Add(ctx, doc.ID, chunks, doc.Metadata)
	if err != nil {
		s.rollback(doc.ID)
		return nil, err
	}
	if added == 0 {
		return nil, domain.NewStageError(domain.StageIngestion, "chunk text", domain.ErrEmptyContent)
	}
	doc.ChunkCount = added

	if s.files != nil && original != nil {
		if err := s.files.Save(ctx, doc.ID, original); err != nil {
			s.rollback(doc.ID)
			return nil, domain.NewStageError(domain.StageIngestion, "store file", err)
		}
	}

	if err := s.registry.Save(ctx, doc); err != nil {
		s.rollback(doc.ID)
		return nil, domain.NewStageError(domain.StageIngestion, "register document", err)
	}

	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"name", doc.Name,
		"type", doc.Type,
		"chunks", doc.ChunkCount,
		"pages", doc.Metadata.TotalPages,
	)
	return doc, nil
}

// rollback removes partially indexed records and stored bytes. It runs on
// a fresh context so a cancelled request still cleans up.
func (s *documentService) rollback(documentID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.index.Delete(ctx, documentID); err != nil {
		s.logger.Warn("failed to roll back partial index", "document_id", documentID, "error", err)
	}
	if s.files != nil {
		if err := s.files.Delete(ctx, documentID); err != nil {
			s.logger.Warn("failed to remove stored file", "document_id", documentID, "error", err)
		}
	}
}

// Get retrieves a document by ID
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.registry.Get(ctx, id)
}

// List returns all documents, newest first
func (s *documentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.registry.List(ctx)
}

// Delete removes a document from the index and the registry
func (s *documentService) Delete(ctx context.Context, id string) error {
	if _, err := s.registry.Get(ctx, id); err != nil {
		return err
	}
	if _, err := s.index.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, id); err != nil {
		return err
	}
	if s.files != nil {
		if err := s.files.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to remove stored file", "document_id", id, "error", err)
		}
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// Download returns the original upload under the document's current name
func (s *documentService) Download(ctx context.Context, id string) (*driving.DownloadFile, error) {
	doc, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, fmt.Errorf("%w: file storage not configured", domain.ErrServiceUnavailable)
	}
	content, err := s.files.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &driving.DownloadFile{
		Name:    doc.Name,
		Content: content,
	}, nil
}

// Rename changes a document's display name. Names already stored with
// indexed chunks are not rewritten.
func (s *documentService) Rename(ctx context.Context, id, newName string) (*domain.Document, error) {
	name := sanitizeName(newName)
	if name == "" {
		return nil, fmt.Errorf("%w: new name is required", domain.ErrInvalidInput)
	}
	if len(name) > maxFilenameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidInput, maxFilenameLength)
	}
	if err := s.registry.Rename(ctx, id, name); err != nil {
		return nil, err
	}
	return s.registry.Get(ctx, id)
}

// References returns the id/name pairs used for @mention resolution
func (s *documentService) References(ctx context.Context) ([]domain.DocumentRef, error) {
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

// SuggestMentions completes a partial @mention
func (s *documentService) SuggestMentions(ctx context.Context, prefix string, limit int) ([]domain.DocumentRef, error) {
	refs, err := s.References(ctx)
	if err != nil {
		return nil, err
	}
	return s.mentions.Suggest(prefix, refs, limit), nil
}

// Stats describes the index and the registry
func (s *documentService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.registry.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalDocuments = count
	return stats, nil
}

// validateFilename rejects names that could escape a directory or are
// otherwise unusable.
func validateFilename(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: filename contains invalid characters", domain.ErrInvalidInput)
	}
	if len(name) > maxFilenameLength {
		return "", fmt.Errorf("%w: filename exceeds %d characters", domain.ErrInvalidInput, maxFilenameLength)
	}
	return name, nil
}

// sanitizeName strips path and control characters from a display name.
func sanitizeName(name string) string {
	name = strings.NewReplacer("..", "", "/", "", "\\", "", "\x00", "").Replace(name)
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(name)
}
