// Package gateway exposes the modeling engine to the web client over HTTP
// and websocket. Every route is a thin shell: decode the request, run the
// pure transform, encode the response. The one stateful surface is the
// layout session API, which owns continuous background layout runners.
package gateway

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/johnymontana/dgraph-client-app-sub001/autocomplete"
	"github.com/johnymontana/dgraph-client-app-sub001/config"
	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/geo"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
	"github.com/johnymontana/dgraph-client-app-sub001/metric"
	"github.com/johnymontana/dgraph-client-app-sub001/schema"
)

// Server is the HTTP gateway for the modeling engine.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *metric.MetricsRegistry

	parser    *schema.Parser
	schemas   *schema.ModelCache
	builder   *graph.Builder
	extractor *geo.Extractor
	resolver  *autocomplete.Resolver
	sessions  *SessionManager
	limiter   *clientLimiter

	httpServer *http.Server
	baseCtx    context.Context
	baseCancel context.CancelFunc
	running    atomic.Bool
}

// NewServer creates a gateway server from configuration.
func NewServer(cfg *config.Config, logger *slog.Logger, registry *metric.MetricsRegistry) (*Server, error) {
	if cfg == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Gateway", "NewServer", "config required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = metric.NewMetricsRegistry()
	}

	return &Server{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		parser:    schema.NewParser(),
		schemas:   schema.NewModelCache(schema.DefaultCacheSize),
		builder:   graph.NewBuilder(),
		extractor: geo.NewExtractor(),
		resolver:  autocomplete.NewResolver(),
		sessions: NewSessionManager(
			cfg.Layout.MaxSessions,
			cfg.Layout.TickInterval.Std(),
			registry.CoreMetrics(),
			logger,
		),
		limiter: newClientLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
	}, nil
}

// Routes builds the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/schema/parse", s.instrument("schema_parse", s.handleSchemaParse))
	mux.HandleFunc("POST /api/v1/graph/build", s.instrument("graph_build", s.handleGraphBuild))
	mux.HandleFunc("POST /api/v1/geo/extract", s.instrument("geo_extract", s.handleGeoExtract))
	mux.HandleFunc("POST /api/v1/geo/check", s.instrument("geo_check", s.handleGeoCheck))
	mux.HandleFunc("POST /api/v1/result/model", s.instrument("result_model", s.handleResultModel))
	mux.HandleFunc("POST /api/v1/autocomplete", s.instrument("autocomplete", s.handleAutocomplete))

	mux.HandleFunc("POST /api/v1/layout/sessions", s.instrument("layout_start", s.handleLayoutStart))
	mux.HandleFunc("DELETE /api/v1/layout/sessions/{id}", s.instrument("layout_stop", s.handleLayoutStop))
	mux.HandleFunc("POST /api/v1/layout/sessions/{id}/pause", s.instrument("layout_pause", s.handleLayoutPause))
	mux.HandleFunc("POST /api/v1/layout/sessions/{id}/resume", s.instrument("layout_resume", s.handleLayoutResume))
	mux.HandleFunc("GET /api/v1/layout/sessions/{id}/stream", s.handleLayoutStream)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", s.registry.Handler())

	return s.limiter.middleware(mux)
}

// Start begins serving. It returns once the listener is up; serve errors
// after that are logged, not returned.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start", "server already running")
	}

	s.baseCtx, s.baseCancel = context.WithCancel(ctx)
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout.Std(),
		WriteTimeout: s.cfg.Server.WriteTimeout.Std(),
		BaseContext:  func(net.Listener) context.Context { return s.baseCtx },
	}
	s.running.Store(true)

	go func() {
		s.logger.Info("Gateway listening",
			"component", "gateway",
			"addr", s.cfg.Server.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Gateway serve failed",
				"component", "gateway",
				"error", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests and tears down every layout session.
func (s *Server) Stop(timeout time.Duration) error {
	if !s.running.Load() {
		return nil
	}
	s.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.sessions.StopAll()
	s.baseCancel()

	if err != nil {
		return errors.WrapTransient(err, "Gateway", "Stop", "graceful shutdown")
	}
	return nil
}

// IsStarted reports whether the server is running.
func (s *Server) IsStarted() bool {
	return s.running.Load()
}

// Sessions exposes the session manager, used by the stream handler and tests.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// instrument wraps a handler with request counting and stage timing.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.registry.CoreMetrics().RequestsTotal.WithLabelValues(route).Inc()
		next(w, r)
		s.registry.CoreMetrics().ObserveStage(route, time.Since(start))
	}
}

// handleHealthz reports liveness and the live session count.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"layout_sessions": s.sessions.Count(),
	})
}
