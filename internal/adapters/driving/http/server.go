package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/ingest-core/internal/core/ports/driven"
	"github.com/custodia-labs/ingest-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	analyzeTimeout time.Duration

	// Services
	analysisService     driving.AnalysisService
	confirmationService driving.ConfirmationService
	suggestionService   driving.SuggestionService
	knowledgeService    driving.KnowledgeService

	// Infrastructure
	authAdapter driven.AuthAdapter
	db          Pinger // PostgreSQL health check
	lock        Pinger // Lock backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string

	// AnalyzeTimeout bounds a whole analysis request. Analysis fans out to
	// the classifier per chunk, so it gets longer than the write timeout default.
	AnalyzeTimeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Version:        "dev",
		AllowedOrigins: []string{"*"},
		AnalyzeTimeout: 2 * time.Minute,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	logger *slog.Logger,
	analysisService driving.AnalysisService,
	confirmationService driving.ConfirmationService,
	suggestionService driving.SuggestionService,
	knowledgeService driving.KnowledgeService,
	authAdapter driven.AuthAdapter,
	db Pinger,
	lock Pinger, // can be nil
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = DefaultConfig().AnalyzeTimeout
	}

	s := &Server{
		router:              http.NewServeMux(),
		version:             cfg.Version,
		logger:              logger,
		analyzeTimeout:      cfg.AnalyzeTimeout,
		analysisService:     analysisService,
		confirmationService: confirmationService,
		suggestionService:   suggestionService,
		knowledgeService:    knowledgeService,
		authAdapter:         authAdapter,
		db:                  db,
		lock:                lock,
	}

	s.setupRoutes()

	handler := NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.AnalyzeTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.authAdapter)
	read := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireProject(false)(h))
	}
	write := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Authenticate(authMiddleware.RequireProject(true)(h))
	}

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// Analysis
	s.router.Handle("POST /api/v1/projects/{project}/analyze", write(s.handleAnalyze))

	// Suggestions
	s.router.Handle("GET /api/v1/projects/{project}/suggestions", read(s.handleListSuggestions))
	s.router.Handle("POST /api/v1/projects/{project}/suggestions", write(s.handleCreateSuggestion))
	s.router.Handle("GET /api/v1/projects/{project}/suggestions/{id}", read(s.handleGetSuggestion))
	s.router.Handle("PUT /api/v1/projects/{project}/suggestions/{id}", write(s.handleUpdateSuggestion))
	s.router.Handle("DELETE /api/v1/projects/{project}/suggestions/{id}", write(s.handleDeleteSuggestion))

	// Confirmation
	s.router.Handle("POST /api/v1/projects/{project}/suggestions/confirm", write(s.handleConfirmSelected))
	s.router.Handle("POST /api/v1/projects/{project}/suggestions/reject", write(s.handleRejectSelected))
	s.router.Handle("POST /api/v1/projects/{project}/suggestions/{id}/confirm", write(s.handleConfirmItem))

	// Knowledge base
	s.router.Handle("POST /api/v1/projects/{project}/knowledge/search", read(s.handleKnowledgeSearch))
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
