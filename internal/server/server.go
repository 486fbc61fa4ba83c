// Package server exposes the AI writer over HTTP: draft generation, update
// and apply, the per-issue widget configuration, and a small issue API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"aiwriter/internal/metrics"
	"aiwriter/internal/services"
)

const maxBodyBytes = 1 << 20

// Config holds what the server needs to run.
type Config struct {
	Services *services.DbServices
	Metrics  *metrics.Metrics
	Secret   []byte // HMAC secret for CSRF tokens
	Logger   *slog.Logger
	// WriteTimeout bounds a whole request, including waiting for the model.
	WriteTimeout time.Duration
}

// Server handles HTTP requests for the writer.
type Server struct {
	services     *services.DbServices
	metrics      *metrics.Metrics
	csrf         *CSRF
	logger       *slog.Logger
	writeTimeout time.Duration
	handler      http.Handler
	httpServer   *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Services == nil {
		return nil, errors.New("services are required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("csrf secret is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 2 * time.Minute
	}
	s := &Server{
		services:     cfg.Services,
		metrics:      cfg.Metrics,
		csrf:         NewCSRF(cfg.Secret),
		logger:       cfg.Logger,
		writeTimeout: cfg.WriteTimeout,
	}
	s.handler = logRequests(s.logger, s.routes())
	return s, nil
}

func (s *Server) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /issues/{issue_id}/ai_writer/generate", s.handleGenerate)
	api.HandleFunc("POST /issues/{issue_id}/ai_writer/apply/{content_id}", s.handleApply)
	api.HandleFunc("PATCH /ai_writer_contents/{content_id}", s.handleUpdate)
	api.HandleFunc("GET /issues/{issue_id}/ai_writer/config", s.handleWriterConfig)
	api.HandleFunc("GET /issues/{issue_id}/ai_writer/contents", s.handleListDrafts)
	api.HandleFunc("GET /issues/{issue_id}", s.handleGetIssue)
	api.HandleFunc("PUT /issues/{issue_id}", s.handleUpdateIssue)
	api.HandleFunc("POST /projects/{project_id}/issues", s.handleCreateIssue)
	api.HandleFunc("GET /settings/ai_writer", s.handleGetSettings)
	api.HandleFunc("PUT /settings/ai_writer", s.handleUpdateSettings)
	api.HandleFunc("GET /ai_writer/models", s.handleListModels)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.Handle("/", s.authenticate(api))
	return mux
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.logger.Info("ai writer listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Handler returns the HTTP handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// CSRFToken returns the token a user must send on mutating requests.
func (s *Server) CSRFToken(userID uint) string {
	return s.csrf.Token(userID)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
