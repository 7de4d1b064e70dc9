package backend

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/plain-errors-kit/pkg/backend/handlers"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/backend/middleware"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/backendtypes"
	"github.com/cecil-the-coder/plain-errors-kit/pkg/config"
)

// Server is the debug HTTP server that hosts the PlainErrors middleware
type Server struct {
	config config.BackendConfig
	logger logrus.FieldLogger
	mux    *http.ServeMux
	chain  []backendtypes.MiddlewareInfo

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
}

// NewServer creates a new debug server. A nil logger is replaced by one built
// from cfg.Logging.
func NewServer(cfg config.BackendConfig, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = cfg.Logging.NewLogger()
	}
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		chain: []backendtypes.MiddlewareInfo{
			{Order: 1, Name: "request_id", Description: "reuses or generates X-Request-ID"},
			{Order: 2, Name: "logging", Description: "writes one access log entry per request"},
			{Order: 3, Name: "plain_errors", Description: "replaces failed responses with plain-text reports for machine clients"},
			{Order: 4, Name: "recovery", Description: "turns panics into JSON 500 responses and captures the error"},
		},
	}

	// Setup routes with handlers
	s.setupRoutes()

	return s
}

// setupRoutes registers all HTTP routes with their corresponding handlers
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.config.PlainErrors, s.config.Server.Version)
	debugHandler := handlers.NewDebugHandler(s.chain)

	// Health and status endpoints
	s.mux.HandleFunc("/health", healthHandler.Health)
	s.mux.HandleFunc("/status", healthHandler.Status)
	s.mux.HandleFunc("/version", healthHandler.Version)

	// Routes that fail on purpose
	s.mux.HandleFunc("/debug/error", debugHandler.Error)
	s.mux.HandleFunc("/debug/nil", debugHandler.Nil)
	s.mux.HandleFunc("/debug/captured", debugHandler.Captured)
	s.mux.HandleFunc("/debug/middleware", debugHandler.Middleware)

	s.mux.HandleFunc("/", handlers.NotFound)
}

// Handler returns the routes wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.applyMiddleware(s.mux)
}

// Start starts the HTTP server and begins listening for requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	// Create HTTP server with configured timeouts
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"addr":    addr,
		"version": s.config.Server.Version,
		"enabled": s.config.PlainErrors.Enabled,
	}).Info("Starting server")

	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// applyMiddleware builds the middleware chain and applies it to the handler.
// Execution order: RequestID -> Logging -> PlainErrors -> Recovery -> Handler
func (s *Server) applyMiddleware(h http.Handler) http.Handler {
	// Apply in reverse order - outer middleware wraps inner
	h = middleware.Recovery(s.logger)(h)
	h = middleware.PlainErrors(s.config.PlainErrors, middleware.WithLogger(s.logger))(h)
	h = middleware.Logging(s.logger)(h)
	h = middleware.RequestID(h)
	return h
}

// MiddlewareChain lists the middleware layers, outermost first
func (s *Server) MiddlewareChain() []backendtypes.MiddlewareInfo {
	return s.chain
}

// GetConfig returns the server configuration
func (s *Server) GetConfig() config.BackendConfig {
	return s.config
}

// ListenAndServeWithGracefulShutdown starts the server and handles graceful shutdown
// This is a convenience method that starts the server and waits for shutdown signal
func (s *Server) ListenAndServeWithGracefulShutdown(shutdownSignal <-chan struct{}) error {
	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errChan:
		return err
	case <-shutdownSignal:
		timeout := s.config.Server.ShutdownTimeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return s.Shutdown(ctx)
	}
}
