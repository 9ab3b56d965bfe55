// Package api implements the sersmask HTTP API.
//
// Routes:
//
//	GET  /healthz            build information
//	POST /v1/build?format=   JSON batch in, one artifact out
//	POST /v1/plan            JSON batch in, shape sequences out
//	GET  /v1/runs            recorded runs, newest first (?limit=)
//	GET  /v1/runs/{id}       one run with its waveguides
//
// Errors are JSON bodies whose status follows the error code, see
// [httputil.WriteError].
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sersmask/pkg/catalog"
	"github.com/matzehuels/sersmask/pkg/observability"
	"github.com/matzehuels/sersmask/pkg/pipeline"
)

const (
	// DefaultMaxBody bounds request bodies (1 MiB).
	DefaultMaxBody = 1 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	// Catalog records builds and serves /v1/runs. Nil disables both.
	Catalog *catalog.Catalog
	Logger  *log.Logger
	MaxBody int64
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	catalog *catalog.Catalog
	logger  *log.Logger
	maxBody int64
	router  chi.Router
}

// New creates a server. A nil runner gets an uncached one.
func New(cfg Config) *Server {
	s := &Server{
		runner:  cfg.Runner,
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
		maxBody: cfg.MaxBody,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(api chi.Router) {
		api.Post("/build", s.handleBuild)
		api.Post("/plan", s.handlePlan)
		api.Get("/runs", s.handleRuns)
		api.Get("/runs/{id}", s.handleRun)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// observe reports every request to the HTTP hooks, keyed by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
