// Package api exposes the classification engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	shutdownTimeout     = 10 * time.Second
)

// Server is the HTTP filter: a JSON API over core.EmailService
type Server struct {
	service    *core.EmailService
	cfg        config.HTTPConfig
	logger     *zap.Logger
	limiter    *RateLimiter
	httpServer *http.Server
}

// NewServer creates the HTTP API server
func NewServer(service *core.EmailService, cfg config.HTTPConfig, logger *zap.Logger) *Server {
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	return &Server{
		service: service,
		cfg:     cfg,
		logger:  logger,
		limiter: NewRateLimiter(cfg.RateLimitPerHour),
	}
}

// Handler returns the router with all middleware applied
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware)

		r.Post("/email/process/", s.handleProcess)
		r.Post("/emails", s.handleProcess)
		r.Post("/emails/batch", s.handleBatch)
		r.Get("/emails", s.handleHistory)
		r.Get("/analytics", s.handleAnalytics)
	})

	return r
}

// Start starts listening in the background
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("HTTP API starting", zap.String("address", s.cfg.Address))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// ProcessEmail classifies an email without storing it
func (s *Server) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.EmailResult, error) {
	return s.service.ProcessEmail(ctx, *email), nil
}
