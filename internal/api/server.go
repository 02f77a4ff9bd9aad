// Package api serves the news import and scrape endpoints used by the
// moderation dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/IshaanNene/sporhaber/internal/config"
	"github.com/IshaanNene/sporhaber/internal/observability"
	"github.com/IshaanNene/sporhaber/internal/sites"
	"github.com/IshaanNene/sporhaber/internal/types"
)

// NewsService is the orchestration surface the handlers call.
type NewsService interface {
	Import(ctx context.Context, listingURL string) ([]types.NewsItem, error)
	Scrape(ctx context.Context, listingURL string) ([]types.ScrapedArticle, error)
}

// Server provides the REST API.
type Server struct {
	mux         *http.ServeMux
	cfg         config.ServerConfig
	metricsPath string
	metrics     *observability.Metrics
	service     NewsService
	registry    *sites.Registry
	logger      *slog.Logger
}

// NewServer creates a new API server. Metrics are served at the configured
// path when metrics is non-nil and metrics are enabled.
func NewServer(cfg *config.Config, service NewsService, registry *sites.Registry, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if !cfg.Metrics.Enabled {
		metrics = nil
	}
	s := &Server{
		mux:         http.NewServeMux(),
		cfg:         cfg.Server,
		metricsPath: cfg.Metrics.Path,
		metrics:     metrics,
		service:     service,
		registry:    registry,
		logger:      logger.With("component", "api_server"),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/sites", s.handleSites)

	s.mux.HandleFunc("POST /api/news/import", s.handleImport)
	s.mux.HandleFunc("POST /api/news/scrape", s.handleScrape)
	s.mux.HandleFunc("OPTIONS /api/", s.handlePreflight)

	if s.metrics != nil {
		s.mux.Handle("GET "+s.metricsPath, s.metrics)
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.recoverPanics(s.mux))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.registry.All())
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	w.WriteHeader(http.StatusNoContent)
}

func setCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	setCORS(w)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
