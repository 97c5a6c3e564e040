// Package server exposes the EBR HTTP API: batch record CRUD, lifecycle
// transitions, template synchronization, and QMIB event acknowledgement.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/elinasafina23/EBR/config"
	"github.com/elinasafina23/EBR/integration"
	"github.com/elinasafina23/EBR/storage"
)

// EBRServer serves the batch record API
type EBRServer struct {
	db      *sql.DB
	cfg     *config.Config
	store   *storage.BatchStore
	service *integration.Service
	logger  *zap.SugaredLogger

	httpServer *http.Server
	mux        *http.ServeMux
}

// New creates an EBR API server
func New(db *sql.DB, cfg *config.Config, store *storage.BatchStore, service *integration.Service, log *zap.SugaredLogger) *EBRServer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &EBRServer{
		db:      db,
		cfg:     cfg,
		store:   store,
		service: service,
		logger:  log,
		mux:     http.NewServeMux(),
	}
	s.setupHTTPRoutes()
	return s
}

// Handler returns the configured route handler (used directly in tests)
func (s *EBRServer) Handler() http.Handler {
	return s.mux
}

// Start begins serving HTTP and blocks until the server stops
func (s *EBRServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // covers QMIB retries plus backoff
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Infow("Starting EBR server",
		"port", s.cfg.Server.Port,
		"environment", s.cfg.Environment)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *EBRServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Infow("Shutting down EBR server")
	return s.httpServer.Shutdown(ctx)
}
