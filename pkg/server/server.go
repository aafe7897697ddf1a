// Package server exposes the analysis over HTTP.
//
// Routes:
//
//	POST /v1/analyze        analyze a GraphML (or JSON) document, returns the report
//	GET  /v1/reports        list archived reports, most recent first
//	GET  /v1/reports/{id}   fetch an archived report
//	GET  /v1/library        node type library for ?vx_version=
//	GET  /healthz           liveness probe
//	GET  /metrics           Prometheus metrics
//
// Analysis problems with the document are part of the report and answered
// with 200; only unusable requests get an error status.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/vxgraph/pkg/observability"
	"github.com/matzehuels/vxgraph/pkg/pipeline"
	"github.com/matzehuels/vxgraph/pkg/store"
)

// DefaultMaxBodyBytes bounds uploaded documents.
const DefaultMaxBodyBytes = 8 << 20

// Config wires the server to its backends.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store

	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer

	Logger       *log.Logger
	MaxBodyBytes int64
}

// Server is the HTTP front of the analysis pipeline.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	maxBody  int64
	router   chi.Router
	http     *http.Server
	gatherer prometheus.Gatherer
}

// New builds a server. A nil Runner gets an uncached one, a nil Store an
// in-memory archive.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
		gatherer: cfg.Gatherer,
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
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
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/library", s.handleLibrary)
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
	})
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown failed", "error", err)
		return err
	}
	return nil
}

// Close releases the runner cache and the store.
func (s *Server) Close(ctx context.Context) error {
	return stderrors.Join(s.runner.Close(), s.store.Close(ctx))
}

// observe reports every response to the server hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
