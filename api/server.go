// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input ingestion, engine orchestration, output serialization.
// The API NEVER performs cost logic.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-cost/core/engine"
)

type contextKey struct{}

// RequestID returns the request ID stored by the server, or a fresh one
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return uuid.New().String()
}

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	version string
	logger  *zap.Logger
}

// NewServer creates a new API server without a catalog
func NewServer(version string, eng *engine.Engine, logger *zap.Logger) *Server {
	return NewServerWithStore(version, eng, nil, logger)
}

// NewServerWithStore creates a new API server that also serves the ingredient catalog
func NewServerWithStore(version string, eng *engine.Engine, store IngredientStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		handler: NewHandler(eng, store, logger),
		mux:     http.NewServeMux(),
		version: version,
		logger:  logger,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /convert", s.handler.HandleConvert)
	s.mux.HandleFunc("POST /usage-cost", s.handler.HandleUsageCost)
	s.mux.HandleFunc("POST /recipe-cost", s.handler.HandleRecipeCost)
	s.mux.HandleFunc("POST /best-tier", s.handler.HandleBestTier)
	s.mux.HandleFunc("POST /margin", s.handler.HandleMargin)

	// Catalog
	s.mux.HandleFunc("GET /ingredients", s.handler.HandleListIngredients)
	s.mux.HandleFunc("GET /ingredients/{name}", s.handler.HandleGetIngredient)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"request_id": RequestID(r.Context()),
		"status":     "healthy",
		"version":    s.version,
		"time":       time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	cfg := s.handler.engine.Config()
	writeJSON(w, map[string]string{
		"request_id":  RequestID(r.Context()),
		"version":     s.version,
		"engine":      "recipe-cost",
		"currency":    cfg.Currency.String(),
		"api_version": "v1",
	}, http.StatusOK)
}

// ServeHTTP implements http.Handler. Every request gets an ID, echoed in X-Request-ID.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}
	w.Header().Set("X-Request-ID", id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), contextKey{}, id)))

	s.logger.Info("request",
		zap.String("request_id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
