// Package server exposes the codec and editor workspaces over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cybergodev/jwtcodec"
	"github.com/cybergodev/jwtcodec/internal/logger"
	"github.com/cybergodev/jwtcodec/internal/workspace"
)

// DefaultMaxBodySize bounds JSON request bodies.
const DefaultMaxBodySize = 4 << 20

const shutdownTimeout = 5 * time.Second

// Options configure a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimit requests per RateWindow and client. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration

	// MaxBodySize bounds JSON request bodies. Zero uses DefaultMaxBodySize.
	MaxBodySize int64
}

// Server serves the HTTP API. Workspaces routes are only registered when a
// manager is given.
type Server struct {
	codec       *jwtcodec.Codec
	workspaces  *workspace.Manager
	limiter     *clientLimiter
	metrics     *metrics
	log         *logger.Logger
	opts        Options
	maxBodySize int64
	handler     http.Handler
}

// New builds a server. manager may be nil; a nil log discards output.
func New(codec *jwtcodec.Codec, manager *workspace.Manager, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		codec:      codec,
		workspaces: manager,
		log:        log.For(logger.ComponentServer),
		opts:       opts,
	}

	s.maxBodySize = opts.MaxBodySize
	if s.maxBodySize <= 0 {
		s.maxBodySize = DefaultMaxBodySize
	}

	if opts.RateLimit > 0 {
		s.limiter = newClientLimiter(opts.RateLimit, opts.RateWindow)
	}

	var workspaces func() float64
	if manager != nil {
		workspaces = func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			n, err := manager.Size(ctx)
			if err != nil {
				return 0
			}
			return float64(n)
		}
	}
	s.metrics = newMetrics(workspaces)

	s.handler = s.routes()
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /v1/encode", s.handleEncode)
	mux.HandleFunc("POST /v1/decode", s.handleDecode)
	mux.HandleFunc("POST /v1/verify", s.handleVerify)
	mux.HandleFunc("POST /v1/inspect", s.handleInspect)
	mux.HandleFunc("GET /v1/timestamp", s.handleTimestamp)

	if s.workspaces != nil {
		mux.HandleFunc("POST /v1/workspaces", s.handleCreateWorkspace)
		mux.HandleFunc("GET /v1/workspaces/{id}", s.handleGetWorkspace)
		mux.HandleFunc("DELETE /v1/workspaces/{id}", s.handleDeleteWorkspace)
		mux.HandleFunc("POST /v1/workspaces/{id}/decode", s.handleWorkspaceDecode)
		mux.HandleFunc("POST /v1/workspaces/{id}/encode", s.handleWorkspaceEncode)
		mux.HandleFunc("POST /v1/workspaces/{id}/clear", s.handleWorkspaceClear)
	}

	return s.logRequests(s.rateLimit(mux))
}

// ListenAndServe listens on Options.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if s.limiter != nil {
		s.limiter.close()
	}
	s.log.Info("server stopped")
	return nil
}
