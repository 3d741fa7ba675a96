// Package http exposes the assistant over a small REST surface.
package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/voxmail-core/internal/core/ports/driven"
	"github.com/custodia-labs/voxmail-core/internal/core/ports/driving"
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

	// Services
	assistantService driving.AssistantService
	tokenIssuer      driven.RoomTokenIssuer
	realtimeURL      string
	roomName         string

	// Infrastructure health checks (optional)
	mailbox Pinger
	llm     Pinger
	redis   Pinger
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// RealtimeURL is returned with minted tokens so clients know where to
	// connect.
	RealtimeURL string

	// RoomName is the realtime room tokens are scoped to.
	RoomName string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		Version:     "dev",
		RealtimeURL: "ws://localhost:7880",
		RoomName:    "inbox",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	assistantService driving.AssistantService,
	tokenIssuer driven.RoomTokenIssuer,
	logger *slog.Logger,
	mailbox Pinger, // can be nil
	llm Pinger, // can be nil
	redis Pinger, // can be nil
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		logger:           logger,
		assistantService: assistantService,
		tokenIssuer:      tokenIssuer,
		realtimeURL:      cfg.RealtimeURL,
		roomName:         cfg.RoomName,
		mailbox:          mailbox,
		llm:              llm,
		redis:            redis,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      LoggingMiddleware(logger)(MetricsMiddleware()(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // full-mode answers can be slow
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.Handle("GET /metrics", promhttp.Handler())

	// Assistant endpoints
	s.router.HandleFunc("POST /token-issue", s.handleTokenIssue)
	s.router.HandleFunc("POST /ask", s.handleAsk)
	s.router.HandleFunc("GET /jobs/{id}", s.handleGetJob)
}

// Handler returns the routed handler with middleware, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
