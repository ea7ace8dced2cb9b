package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-research/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger

	queryService driving.QueryService
	docService   driving.DocumentService

	database            Pinger // registry health check
	llmConfigured       bool
	embeddingConfigured bool
	maxUploadBytes      int64
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	CORSOrigins    []string
	MaxUploadBytes int64

	// Reported by /health
	LLMConfigured       bool
	EmbeddingConfigured bool

	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: 50 << 20,
	}
}

// Services are the ports the API drives
type Services struct {
	Query     driving.QueryService
	Documents driving.DocumentService
	Limiter   driven.RateLimiter // nil disables rate limiting
	Database  Pinger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}

	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		logger:              logger,
		queryService:        svc.Query,
		docService:          svc.Documents,
		database:            svc.Database,
		llmConfigured:       cfg.LLMConfigured,
		embeddingConfigured: cfg.EmbeddingConfigured,
		maxUploadBytes:      cfg.MaxUploadBytes,
	}
	s.setupRoutes()

	// Outermost first: recovery, logging, CORS, rate limit
	var h http.Handler = s.router
	if svc.Limiter != nil {
		h = NewRateLimitMiddleware(svc.Limiter, logger).Handler(h)
	}
	h = NewCORSMiddleware(cfg.CORSOrigins).Handler(h)
	h = NewLoggingMiddleware(logger).Handler(h)
	h = NewRecoveryMiddleware(logger).Handler(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Synthesis can take a while on slow providers
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwagger)

	// Query endpoints
	s.router.HandleFunc("POST /api/v1/query", s.handleQuery)
	s.router.HandleFunc("GET /api/v1/query/history", s.handleQueryHistory)

	// Document endpoints
	s.router.HandleFunc("POST /api/v1/documents/upload", s.handleUpload)
	s.router.HandleFunc("POST /api/v1/documents/upload-url", s.handleUploadURL)
	s.router.HandleFunc("GET /api/v1/documents", s.handleListDocuments)
	s.router.HandleFunc("GET /api/v1/documents/mentions/suggest", s.handleSuggestMentions)
	s.router.HandleFunc("GET /api/v1/documents/{id}", s.handleGetDocument)
	s.router.HandleFunc("DELETE /api/v1/documents/{id}", s.handleDeleteDocument)
	s.router.HandleFunc("GET /api/v1/documents/{id}/download", s.handleDownloadDocument)
	s.router.HandleFunc("PATCH /api/v1/documents/{id}/rename", s.handleRenameDocument)

	s.router.HandleFunc("GET /api/v1/stats", s.handleStats)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
