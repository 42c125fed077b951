// Package server exposes the fetch layer as a JSON API for the dashboard
// frontend. Every handler delegates to the shared github.Client, so the
// API inherits its caching, retry, and quota behavior without extra state.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/mkessler/repolens/pkg/github"
)

// Server serves the dashboard API.
type Server struct {
	client *github.Client
	logger *log.Logger
	http   *http.Server
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, host:port.
	Addr string

	// Client is the shared fetch client. Required.
	Client *github.Client

	// Logger receives request logs. Defaults to a discard-free default
	// logger when nil.
	Logger *log.Logger
}

// New creates a Server. The listener is not opened until ListenAndServe.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		client: opts.Client,
		logger: logger,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed separately so tests can drive the
// mux without a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverPanics)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/ratelimit", s.handleRateLimit)
	r.Post("/api/token", s.handleSetToken)
	r.Delete("/api/token", s.handleClearToken)

	r.Route("/api/repos/{owner}/{repo}", func(r chi.Router) {
		r.Get("/", s.handleRepoDetails)
		r.Get("/contributors", s.handleContributors)
		r.Get("/activity", s.handleActivity)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/tree", s.handleTree)
		r.Get("/file", s.handleFile)
	})

	return r
}

// ListenAndServe blocks serving requests until the context is cancelled or
// the listener fails. Shutdown waits for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
