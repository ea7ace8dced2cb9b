package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// Mock services for testing

type mockQueryService struct {
	askFn     func(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error)
	historyFn func(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
}

func (m *mockQueryService) Ask(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
	if m.askFn != nil {
		return m.askFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockQueryService) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, limit)
	}
	return []domain.HistoryEntry{}, nil
}

type mockDocumentService struct {
	uploadFn    func(ctx context.Context, req *driving.UploadRequest) (*domain.Document, error)
	ingestURLFn func(ctx context.Context, rawURL string) (*domain.Document, error)
	getFn       func(ctx context.Context, id string) (*domain.Document, error)
	listFn      func(ctx context.Context) ([]*domain.Document, error)
	deleteFn    func(ctx context.Context, id string) error
	downloadFn  func(ctx context.Context, id string) (*driving.DownloadFile, error)
	renameFn    func(ctx context.Context, id, name string) (*domain.Document, error)
	suggestFn   func(ctx context.Context, prefix string, limit int) ([]domain.DocumentRef, error)
	statsFn     func(ctx context.Context) (*domain.IndexStats, error)
}

func (m *mockDocumentService) Upload(ctx context.Context, req *driving.UploadRequest) (*domain.Document, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) IngestURL(ctx context.Context, rawURL string) (*domain.Document, error) {
	if m.ingestURLFn != nil {
		return m.ingestURLFn(ctx, rawURL)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*domain.Document{}, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return domain.ErrNotFound
}

func (m *mockDocumentService) Download(ctx context.Context, id string) (*driving.DownloadFile, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) Rename(ctx context.Context, id, name string) (*domain.Document, error) {
	if m.renameFn != nil {
		return m.renameFn(ctx, id, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) References(ctx context.Context) ([]domain.DocumentRef, error) {
	return nil, nil
}

func (m *mockDocumentService) SuggestMentions(ctx context.Context, prefix string, limit int) ([]domain.DocumentRef, error) {
	if m.suggestFn != nil {
		return m.suggestFn(ctx, prefix, limit)
	}
	return nil, nil
}

func (m *mockDocumentService) Stats(ctx context.Context) (*domain.IndexStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &domain.IndexStats{}, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func newTestServer(q *mockQueryService, d *mockDocumentService) *Server {
	if q == nil {
		q = &mockQueryService{}
	}
	if d == nil {
		d = &mockDocumentService{}
	}
	cfg := DefaultConfig()
	cfg.Version = "1.2.3"
	cfg.LLMConfigured = true
	cfg.EmbeddingConfigured = true
	cfg.MaxUploadBytes = 1024
	return NewServer(cfg, Services{Query: q, Documents: d, Database: &mockPinger{}})
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	s := newTestServer(nil, nil)

	rec := do(t, s, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["status"] != "healthy" || body["success"] != true {
		t.Errorf("unexpected body %v", body)
	}
	if body["database_status"] != "ready" || body["version"] != "1.2.3" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestHandleHealth_Degraded(t *testing.T) {
	s := NewServer(DefaultConfig(), Services{
		Query:     &mockQueryService{},
		Documents: &mockDocumentService{},
		Database:  &mockPinger{err: errors.New("connection refused")},
	})

	body := decode(t, do(t, s, "GET", "/health", nil))
	if body["status"] != "degraded" {
		t.Errorf("expected degraded, got %v", body["status"])
	}
	if body["database_status"] != "not_initialized" {
		t.Errorf("unexpected database_status %v", body["database_status"])
	}
	if body["llm_configured"] != false {
		t.Errorf("expected llm_configured false, got %v", body["llm_configured"])
	}
}

func TestHandleVersion(t *testing.T) {
	body := decode(t, do(t, newTestServer(nil, nil), "GET", "/version", nil))
	if body["version"] != "1.2.3" {
		t.Errorf("unexpected version %v", body["version"])
	}
}

func TestHandleSwagger(t *testing.T) {
	rec := do(t, newTestServer(nil, nil), "GET", "/swagger/doc.json", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["swagger"] != "2.0" {
		t.Errorf("unexpected doc %v", body["swagger"])
	}
	paths, _ := body["paths"].(map[string]any)
	if _, ok := paths["/query"]; !ok {
		t.Error("expected /query in api doc")
	}
}

// Query endpoints

func TestHandleQuery(t *testing.T) {
	var got *domain.QueryRequest
	q := &mockQueryService{
		askFn: func(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
			got = req
			return &domain.QueryResponse{
				Answer: "Entropy measures disorder [Source 1].",
				Citations: []domain.Citation{
					{DocumentID: "d1", DocumentName: "physics.pdf", ChunkID: "d1_chunk_0", RelevanceScore: 0.8},
				},
				Mode:           domain.QueryModeAnswer,
				ProcessingTime: 0.25,
				Metadata:       map[string]any{"context_found": true},
			}, nil
		},
	}
	s := newTestServer(q, nil)

	rec := do(t, s, "POST", "/api/v1/query", map[string]any{
		"question":     "What is entropy?",
		"query_type":   "answer",
		"n_results":    3,
		"document_ids": []string{"d1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got.Question != "What is entropy?" || got.Mode != domain.QueryModeAnswer || got.NResults != 3 {
		t.Errorf("unexpected request %+v", got)
	}
	if len(got.DocumentIDs) != 1 || got.DocumentIDs[0] != "d1" {
		t.Errorf("unexpected document ids %v", got.DocumentIDs)
	}

	body := decode(t, rec)
	if body["success"] != true || body["query_type"] != "answer" {
		t.Errorf("unexpected body %v", body)
	}
	citations, _ := body["citations"].([]any)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %v", body["citations"])
	}
	if meta, _ := body["metadata"].(map[string]any); meta["context_found"] != true {
		t.Errorf("unexpected metadata %v", body["metadata"])
	}
}

func TestHandleQuery_DefaultResults(t *testing.T) {
	var got *domain.QueryRequest
	q := &mockQueryService{
		askFn: func(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
			got = req
			return &domain.QueryResponse{Metadata: map[string]any{}}, nil
		},
	}

	rec := do(t, newTestServer(q, nil), "POST", "/api/v1/query", map[string]any{"question": "hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.NResults != 0 {
		t.Errorf("expected unset n_results to be left for the service, got %d", got.NResults)
	}
}

func TestHandleQuery_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		err    error
		status int
	}{
		{"malformed body", "{not json", nil, http.StatusBadRequest},
		{"zero n_results", map[string]any{"question": "q", "n_results": 0}, nil, http.StatusBadRequest},
		{"n_results too large", map[string]any{"question": "q", "n_results": 21}, nil, http.StatusBadRequest},
		{"invalid input", map[string]any{"question": ""}, domain.ErrInvalidInput, http.StatusBadRequest},
		{"unsupported mode", map[string]any{"question": "q", "query_type": "poem"}, domain.ErrUnsupportedMode, http.StatusBadRequest},
		{"provider failure", map[string]any{"question": "q"},
			domain.NewStageError(domain.StageSynthesis, "generate", errors.New("upstream 500")), http.StatusBadGateway},
		{"unavailable", map[string]any{"question": "q"}, domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"unexpected", map[string]any{"question": "q"}, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &mockQueryService{
				askFn: func(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
					return nil, tt.err
				},
			}
			rec := do(t, newTestServer(q, nil), "POST", "/api/v1/query", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if _, ok := decode(t, rec)["error"]; !ok {
				t.Error("expected error field")
			}
		})
	}
}

func TestHandleQuery_StageMessagePreserved(t *testing.T) {
	q := &mockQueryService{
		askFn: func(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
			return nil, domain.NewStageError(domain.StageRetrieval, "embed query", errors.New("quota exceeded"))
		},
	}
	body := decode(t, do(t, newTestServer(q, nil), "POST", "/api/v1/query", map[string]any{"question": "q"}))
	if msg, _ := body["error"].(string); !strings.Contains(msg, "quota exceeded") || !strings.Contains(msg, "retrieval") {
		t.Errorf("expected stage and cause in message, got %q", msg)
	}
}

func TestHandleQueryHistory(t *testing.T) {
	var gotLimit int
	q := &mockQueryService{
		historyFn: func(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
			gotLimit = limit
			return []domain.HistoryEntry{
				{Timestamp: time.Now(), Query: "first", Mode: domain.QueryModeAnswer, Answer: "a"},
				{Timestamp: time.Now(), Query: "second", Mode: domain.QueryModeSummarize, Answer: "b"},
			}, nil
		},
	}
	s := newTestServer(q, nil)

	body := decode(t, do(t, s, "GET", "/api/v1/query/history", nil))
	if gotLimit != 10 {
		t.Errorf("expected default limit 10, got %d", gotLimit)
	}
	if body["count"] != float64(2) {
		t.Errorf("unexpected count %v", body["count"])
	}

	do(t, s, "GET", "/api/v1/query/history?limit=3", nil)
	if gotLimit != 3 {
		t.Errorf("expected limit 3, got %d", gotLimit)
	}

	if rec := do(t, s, "GET", "/api/v1/query/history?limit=abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}
}

// Document endpoints

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUpload(t *testing.T) {
	var got *driving.UploadRequest
	d := &mockDocumentService{
		uploadFn: func(ctx context.Context, req *driving.UploadRequest) (*domain.Document, error) {
			got = req
			return &domain.Document{ID: "d1", Name: req.Filename, Type: domain.DocumentTypeText, ChunkCount: 2}, nil
		},
	}
	s := newTestServer(nil, d)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, multipartUpload(t, "notes.txt", []byte("entropy notes")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Filename != "notes.txt" || string(got.Content) != "entropy notes" {
		t.Errorf("unexpected upload %+v", got)
	}
	doc, _ := decode(t, rec)["document"].(map[string]any)
	if doc["document_id"] != "d1" || doc["num_chunks"] != float64(2) {
		t.Errorf("unexpected document %v", doc)
	}
}

func TestHandleUpload_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		rec := do(t, newTestServer(nil, nil), "POST", "/api/v1/documents/upload", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("body over limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestServer(nil, nil).Handler().ServeHTTP(rec, multipartUpload(t, "big.txt", bytes.Repeat([]byte("x"), 3<<20)))
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("expected 413, got %d", rec.Code)
		}
	})

	for _, tt := range []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: .exe", domain.ErrUnsupportedType), http.StatusBadRequest},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{domain.NewStageError(domain.StageIngestion, "extract text", domain.ErrEmptyContent), http.StatusBadRequest},
		{domain.NewStageError(domain.StageIngestion, "embed chunks", errors.New("timeout")), http.StatusBadGateway},
	} {
		t.Run(tt.err.Error(), func(t *testing.T) {
			d := &mockDocumentService{
				uploadFn: func(ctx context.Context, req *driving.UploadRequest) (*domain.Document, error) {
					return nil, tt.err
				},
			}
			rec := httptest.NewRecorder()
			newTestServer(nil, d).Handler().ServeHTTP(rec, multipartUpload(t, "a.txt", []byte("x")))
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleUploadURL(t *testing.T) {
	var got string
	d := &mockDocumentService{
		ingestURLFn: func(ctx context.Context, rawURL string) (*domain.Document, error) {
			got = rawURL
			if strings.Contains(rawURL, "localhost") {
				return nil, domain.NewStageError(domain.StageIngestion, "fetch url", domain.ErrBlockedURL)
			}
			return &domain.Document{ID: "u1", Name: "Entropy Explained", Type: domain.DocumentTypeURL}, nil
		},
	}
	s := newTestServer(nil, d)

	rec := do(t, s, "POST", "/api/v1/documents/upload-url?url=https://example.com/a", nil)
	if rec.Code != http.StatusOK || got != "https://example.com/a" {
		t.Fatalf("query param: status %d url %q", rec.Code, got)
	}

	rec = do(t, s, "POST", "/api/v1/documents/upload-url", map[string]string{"url": "https://example.com/b"})
	if rec.Code != http.StatusOK || got != "https://example.com/b" {
		t.Fatalf("json body: status %d url %q", rec.Code, got)
	}

	if rec := do(t, s, "POST", "/api/v1/documents/upload-url", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without url, got %d", rec.Code)
	}
	if rec := do(t, s, "POST", "/api/v1/documents/upload-url?url=http://localhost/", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blocked url, got %d", rec.Code)
	}
}

func TestHandleListDocuments(t *testing.T) {
	d := &mockDocumentService{
		listFn: func(ctx context.Context) ([]*domain.Document, error) {
			return []*domain.Document{{ID: "b"}, {ID: "a"}}, nil
		},
	}
	body := decode(t, do(t, newTestServer(nil, d), "GET", "/api/v1/documents", nil))
	if body["count"] != float64(2) {
		t.Errorf("unexpected count %v", body["count"])
	}
	docs, _ := body["documents"].([]any)
	if first, _ := docs[0].(map[string]any); first["document_id"] != "b" {
		t.Errorf("expected service order preserved, got %v", docs)
	}
}

func TestHandleGetDocument(t *testing.T) {
	d := &mockDocumentService{
		getFn: func(ctx context.Context, id string) (*domain.Document, error) {
			if id != "d1" {
				return nil, domain.ErrNotFound
			}
			return &domain.Document{ID: "d1", Name: "physics.pdf"}, nil
		},
	}
	s := newTestServer(nil, d)

	if rec := do(t, s, "GET", "/api/v1/documents/d1", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, s, "GET", "/api/v1/documents/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteDocument(t *testing.T) {
	var deleted string
	d := &mockDocumentService{
		deleteFn: func(ctx context.Context, id string) error {
			if id == "missing" {
				return domain.ErrNotFound
			}
			deleted = id
			return nil
		},
	}
	s := newTestServer(nil, d)

	if rec := do(t, s, "DELETE", "/api/v1/documents/d1", nil); rec.Code != http.StatusOK || deleted != "d1" {
		t.Errorf("expected 200 deleting d1, got %d (%q)", rec.Code, deleted)
	}
	if rec := do(t, s, "DELETE", "/api/v1/documents/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDownloadDocument(t *testing.T) {
	names := map[string]string{"d1": "Thermo Notes.pdf", "d2": "Résumé.txt"}
	d := &mockDocumentService{
		downloadFn: func(ctx context.Context, id string) (*driving.DownloadFile, error) {
			name, ok := names[id]
			if !ok {
				return nil, domain.ErrNotFound
			}
			return &driving.DownloadFile{Name: name, Content: []byte("%PDF-1.4 body")}, nil
		},
	}
	s := newTestServer(nil, d)

	rec := do(t, s, "GET", "/api/v1/documents/d1/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("expected octet-stream, got %q", ct)
	}
	if rec.Body.String() != "%PDF-1.4 body" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	if err != nil || params["filename"] != "Thermo Notes.pdf" {
		t.Errorf("expected current name in disposition, got %v (%v)", params, err)
	}

	// a rename in the registry shows up in the next download
	names["d1"] = "Thermodynamics.pdf"
	rec = do(t, s, "GET", "/api/v1/documents/d1/download", nil)
	if _, params, _ := mime.ParseMediaType(rec.Header().Get("Content-Disposition")); params["filename"] != "Thermodynamics.pdf" {
		t.Errorf("expected renamed file, got %v", params)
	}

	rec = do(t, s, "GET", "/api/v1/documents/d2/download", nil)
	if _, params, _ := mime.ParseMediaType(rec.Header().Get("Content-Disposition")); params["filename"] != "Résumé.txt" {
		t.Errorf("expected non-ascii name preserved, got %v", params)
	}

	if rec := do(t, s, "GET", "/api/v1/documents/missing/download", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleRenameDocument(t *testing.T) {
	d := &mockDocumentService{
		renameFn: func(ctx context.Context, id, name string) (*domain.Document, error) {
			if strings.TrimSpace(name) == "" {
				return nil, domain.ErrInvalidInput
			}
			return &domain.Document{ID: id, Name: name}, nil
		},
	}
	s := newTestServer(nil, d)

	rec := do(t, s, "PATCH", "/api/v1/documents/d1/rename", map[string]string{"new_name": "Thermo.pdf"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if doc, _ := decode(t, rec)["document"].(map[string]any); doc["filename"] != "Thermo.pdf" {
		t.Errorf("unexpected document %v", doc)
	}

	if rec := do(t, s, "PATCH", "/api/v1/documents/d1/rename", map[string]string{"new_name": " "}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSuggestMentions(t *testing.T) {
	var gotPrefix string
	var gotLimit int
	d := &mockDocumentService{
		suggestFn: func(ctx context.Context, prefix string, limit int) ([]domain.DocumentRef, error) {
			gotPrefix, gotLimit = prefix, limit
			return []domain.DocumentRef{{ID: "d1", Name: "physics.pdf"}}, nil
		},
	}
	body := decode(t, do(t, newTestServer(nil, d), "GET", "/api/v1/documents/mentions/suggest?prefix=phy", nil))
	if gotPrefix != "phy" || gotLimit != 5 {
		t.Errorf("unexpected args %q %d", gotPrefix, gotLimit)
	}
	if body["count"] != float64(1) {
		t.Errorf("unexpected count %v", body["count"])
	}
}

func TestHandleStats(t *testing.T) {
	d := &mockDocumentService{
		statsFn: func(ctx context.Context) (*domain.IndexStats, error) {
			return &domain.IndexStats{TotalChunks: 12, TotalDocuments: 3, Backend: "bbolt", Dimensions: 768}, nil
		},
	}
	body := decode(t, do(t, newTestServer(nil, d), "GET", "/api/v1/stats", nil))
	if body["total_chunks"] != float64(12) || body["backend"] != "bbolt" {
		t.Errorf("unexpected stats %v", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrBlockedURL, http.StatusBadRequest},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrServiceUnavailable, http.StatusServiceUnavailable},
		{domain.NewStageError(domain.StageRetrieval, "search", errors.New("x")), http.StatusBadGateway},
		{domain.NewStageError(domain.StageIngestion, "save", domain.ErrNotFound), http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
