// Package server wires the relay's HTTP surface: the Fonnte webhook, the
// plain-text liveness root, health, and metrics, behind the shared
// middleware stack.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tht-digital/theo-relay/config"
	"github.com/tht-digital/theo-relay/server/handlers"
	"github.com/tht-digital/theo-relay/server/metrics"
	"github.com/tht-digital/theo-relay/server/middleware"
	"go.uber.org/zap"
)

// webhookTimeout bounds the whole webhook exchange: classification, one
// completion call, and one send attempt. Both outbound legs carry their own
// tighter timeouts.
const webhookTimeout = 60 * time.Second

// Router handles HTTP routing for the relay.
type Router struct {
	router chi.Router
}

// NewRouter creates the relay router. The webhook handler is passed in
// fully wired; the router only contributes middleware and the fixed
// endpoints around it.
func NewRouter(cfg *config.Config, webhook http.Handler, m *metrics.Metrics, logger *zap.Logger) *Router {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.PrometheusMetrics(m))

	r.Group(func(router chi.Router) {
		if cfg.RateLimit.Enabled {
			router.Use(middleware.RateLimit(m, cfg.RateLimit))
		}
		router.Use(middleware.Timeout(webhookTimeout))

		// All methods route to the handler; it owns the 405 envelope.
		router.Handle("/webhook", webhook)
	})

	r.Get("/", handlers.Root())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return &Router{router: r}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Port),
			Handler:        handler,
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Start starts the server and blocks until shutdown
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("Server started", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down server")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}
