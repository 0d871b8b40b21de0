// Package server exposes the layout pipeline over HTTP.
//
// The console posts a graph and its expand-set and receives either the
// routed view as JSON or a rendering. Routes:
//
//	POST /v1/layout   graph + expand-set → view JSON
//	POST /v1/render   graph + expand-set + format → DOT, SVG, PNG or JSON
//	GET  /healthz     liveness
//	GET  /metrics     Prometheus exposition
//
// Errors are answered as {"error": {"code", "message", "request_id"}} with
// the status derived from the error code.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 4 << 20

// Config configures a Server.
type Config struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Gatherer backs /metrics. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Defaults are applied to every request before its own options.
	Defaults pipeline.Options

	MaxBodyBytes int64
}

// Server handles HTTP requests. It is safe for concurrent use.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	gatherer prometheus.Gatherer
	defaults pipeline.Options
	maxBody  int64
	started  time.Time
}

// New creates a server. A nil runner gets an uncached one.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		logger:   cfg.Logger,
		gatherer: cfg.Gatherer,
		defaults: cfg.Defaults,
		maxBody:  cfg.MaxBodyBytes,
		started:  time.Now(),
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	s.defaults.SetDefaults()
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound(r))
	})
	return r
}
