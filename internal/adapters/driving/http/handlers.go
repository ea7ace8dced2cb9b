package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/swaggo/swag"

	_ "github.com/custodia-labs/sercha-research/internal/adapters/driving/http/docs" // registers the OpenAPI doc
	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// HealthResponse reports service readiness
// @Description Service health
type HealthResponse struct {
	Success bool `json:"success" example:"true"`
	*domain.HealthStatus
}

// QueryRequest is the body of POST /query
// @Description Question to answer against the indexed documents
type QueryRequest struct {
	Question            string                       `json:"question" example:"What is entropy?"`
	QueryType           string                       `json:"query_type" example:"answer" enums:"answer,summarize,compare,extract,timeline"`
	NResults            *int                         `json:"n_results,omitempty" example:"5"`
	DocumentIDs         []string                     `json:"document_ids,omitempty"`
	ConversationHistory []domain.ConversationMessage `json:"conversation_history,omitempty"`
}

// QueryResponse wraps a synthesized answer
// @Description Synthesized answer with citations
type QueryResponse struct {
	Success bool `json:"success" example:"true"`
	*domain.QueryResponse
}

// HistoryResponse lists recent queries
// @Description Recent queries, oldest first
type HistoryResponse struct {
	Success bool                  `json:"success" example:"true"`
	History []domain.HistoryEntry `json:"history"`
	Count   int                   `json:"count" example:"3"`
}

// DocumentResponse wraps one document
// @Description Single document
type DocumentResponse struct {
	Success  bool             `json:"success" example:"true"`
	Message  string           `json:"message,omitempty" example:"document uploaded"`
	Document *domain.Document `json:"document"`
}

// DocumentListResponse lists documents
// @Description Documents, newest first
type DocumentListResponse struct {
	Success   bool               `json:"success" example:"true"`
	Documents []*domain.Document `json:"documents"`
	Count     int                `json:"count" example:"2"`
}

// SuggestResponse lists mention completions
// @Description Document names matching a partial @mention
type SuggestResponse struct {
	Success     bool                 `json:"success" example:"true"`
	Suggestions []domain.DocumentRef `json:"suggestions"`
	Count       int                  `json:"count" example:"1"`
}

// StatsResponse describes the embedding index
// @Description Embedding index statistics
type StatsResponse struct {
	Success bool `json:"success" example:"true"`
	*domain.IndexStats
}

// MessageResponse is a success acknowledgement
// @Description Success acknowledgement
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"document deleted"`
}

// URLRequest is the JSON body of POST /documents/upload-url
type URLRequest struct {
	URL string `json:"url" example:"https://example.com/article"`
}

// RenameRequest is the body of PATCH /documents/{id}/rename
type RenameRequest struct {
	NewName string `json:"new_name" example:"Thermodynamics notes.pdf"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Reports whether the AI providers are configured and the registry is reachable
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	databaseReady := false
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.database.Ping(ctx); err != nil {
			s.logger.Warn("registry health check failed", "error", err)
		} else {
			databaseReady = true
		}
	}

	status := domain.NewHealthStatus(s.version, s.llmConfigured, s.embeddingConfigured, databaseReady)
	writeJSON(w, http.StatusOK, HealthResponse{Success: true, HealthStatus: status})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "api documentation unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Query endpoints

// handleQuery godoc
// @Summary      Ask a question
// @Description  Answers, summarizes, compares, extracts or builds a timeline from the indexed documents. @mentions in the question scope retrieval to the named documents.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      QueryRequest   true  "Question"
// @Success      200      {object}  QueryResponse
// @Failure      400      {object}  ErrorResponse  "Invalid question, mode or n_results"
// @Failure      429      {object}  RateLimitResponse
// @Failure      502      {object}  ErrorResponse  "Embedding or LLM provider failed"
// @Router       /query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req := &domain.QueryRequest{
		Question:            body.Question,
		Mode:                domain.QueryMode(body.QueryType),
		DocumentIDs:         body.DocumentIDs,
		ConversationHistory: body.ConversationHistory,
	}
	if body.NResults != nil {
		if *body.NResults < domain.MinResults || *body.NResults > domain.MaxResults {
			writeError(w, http.StatusBadRequest, "n_results must be between 1 and 20")
			return
		}
		req.NResults = *body.NResults
	}

	resp, err := s.queryService.Ask(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Success: true, QueryResponse: resp})
}

// handleQueryHistory godoc
// @Summary      Query history
// @Description  Returns the most recent queries, oldest first
// @Tags         Query
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries"  default(10)
// @Success      200    {object}  HistoryResponse
// @Failure      400    {object}  ErrorResponse  "Invalid limit"
// @Router       /query/history [get]
func (s *Server) handleQueryHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", domain.HistoryWindow)
	if !ok {
		return
	}

	history, err := s.queryService.History(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Success: true, History: history, Count: len(history)})
}

// Document endpoints

// handleUpload godoc
// @Summary      Upload a document
// @Description  Extracts, chunks and indexes a PDF, DOCX, TXT or Markdown file
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document"
// @Success      200   {object}  DocumentResponse
// @Failure      400   {object}  ErrorResponse  "Missing file, bad name or unsupported type"
// @Failure      413   {object}  ErrorResponse  "File too large"
// @Failure      502   {object}  ErrorResponse  "Embedding provider failed"
// @Router       /documents/upload [post]
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// multipart framing needs a little room above the file itself
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	doc, err := s.docService.Upload(r.Context(), &driving.UploadRequest{
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Success: true, Message: "document uploaded", Document: doc})
}

// handleUploadURL godoc
// @Summary      Ingest a web page
// @Description  Fetches a public http(s) page and indexes its readable text. The URL may be given as a query parameter or JSON body.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        url      query     string      false  "Page URL"
// @Param        request  body      URLRequest  false  "Page URL"
// @Success      200      {object}  DocumentResponse
// @Failure      400      {object}  ErrorResponse  "Invalid or blocked URL"
// @Failure      502      {object}  ErrorResponse  "Fetch or embedding failed"
// @Router       /documents/upload-url [post]
func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" && r.ContentLength != 0 {
		var body URLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rawURL = body.URL
	}
	if strings.TrimSpace(rawURL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	doc, err := s.docService.IngestURL(r.Context(), rawURL)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Success: true, Message: "url ingested", Document: doc})
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  Returns all documents, newest upload first
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  DocumentListResponse
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docService.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Success: true, Documents: docs, Count: len(docs)})
}

// handleGetDocument godoc
// @Summary      Get document
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  DocumentResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Success: true, Document: doc})
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Removes a document and all of its indexed chunks
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  MessageResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.docService.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "document deleted"})
}

// handleDownloadDocument godoc
// @Summary      Download document
// @Description  Returns the original upload under the document's current name
// @Tags         Documents
// @Produce      octet-stream
// @Param        id   path      string  true  "Document ID"
// @Success      200  {file}    binary
// @Failure      404  {object}  ErrorResponse  "Document or stored file not found"
// @Router       /documents/{id}/download [get]
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	file, err := s.docService.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}

// handleRenameDocument godoc
// @Summary      Rename document
// @Description  Changes the display name used for citations and @mentions
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Document ID"
// @Param        request  body      RenameRequest  true  "New name"
// @Success      200      {object}  DocumentResponse
// @Failure      400      {object}  ErrorResponse  "Invalid name"
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id}/rename [patch]
func (s *Server) handleRenameDocument(w http.ResponseWriter, r *http.Request) {
	var body RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := s.docService.Rename(r.Context(), r.PathValue("id"), body.NewName)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Success: true, Message: "document renamed", Document: doc})
}

// handleSuggestMentions godoc
// @Summary      Suggest @mentions
// @Description  Returns documents whose names match a partial mention
// @Tags         Documents
// @Produce      json
// @Param        prefix  query     string  false  "Partial name"
// @Param        limit   query     int     false  "Maximum suggestions"  default(5)
// @Success      200     {object}  SuggestResponse
// @Router       /documents/mentions/suggest [get]
func (s *Server) handleSuggestMentions(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit", 5)
	if !ok {
		return
	}

	suggestions, err := s.docService.SuggestMentions(r.Context(), r.URL.Query().Get("prefix"), limit)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []domain.DocumentRef{}
	}
	writeJSON(w, http.StatusOK, SuggestResponse{Success: true, Suggestions: suggestions, Count: len(suggestions)})
}

// handleStats godoc
// @Summary      Index statistics
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  StatsResponse
// @Router       /stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.docService.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Success: true, IndexStats: stats})
}

// Helper functions

// queryInt reads a positive integer query parameter, writing 400 on bad input.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		writeError(w, http.StatusBadRequest, name+" must be between 1 and 100")
		return 0, false
	}
	return n, true
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedMode),
		errors.Is(err, domain.ErrUnsupportedType),
		errors.Is(err, domain.ErrBlockedURL),
		errors.Is(err, domain.ErrEmptyContent):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if _, ok := domain.StageOf(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "60")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
