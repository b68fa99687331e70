package gateway

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/johnymontana/dgraph-client-app-sub001/autocomplete"
	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/geo"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
	"github.com/johnymontana/dgraph-client-app-sub001/layout"
	"github.com/johnymontana/dgraph-client-app-sub001/schema"
)

// schemaParseRequest carries raw DQL schema text.
type schemaParseRequest struct {
	Schema string `json:"schema"`
}

type schemaParseResponse struct {
	Model *schema.Model `json:"model"`
}

// graphBuildRequest carries a decoded Dgraph query result. Layout, when
// requested, runs a bounded one-shot relaxation before responding.
type graphBuildRequest struct {
	Result any            `json:"result"`
	Layout *layoutRequest `json:"layout,omitempty"`
}

type layoutRequest struct {
	Iterations    int     `json:"iterations,omitempty"`
	Gravity       float64 `json:"gravity,omitempty"`
	ScalingRatio  float64 `json:"scaling_ratio,omitempty"`
	SlowDown      float64 `json:"slow_down,omitempty"`
	LinLogMode    bool    `json:"lin_log_mode,omitempty"`
	StrongGravity bool    `json:"strong_gravity,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
}

func (lr *layoutRequest) config() layout.Config {
	if lr == nil {
		return layout.DefaultConfig()
	}
	return layout.Config{
		Gravity:       lr.Gravity,
		ScalingRatio:  lr.ScalingRatio,
		SlowDown:      lr.SlowDown,
		LinLogMode:    lr.LinLogMode,
		StrongGravity: lr.StrongGravity,
		Seed:          lr.Seed,
	}
}

type graphBuildResponse struct {
	Model     *graph.Model `json:"model"`
	NodeCount int          `json:"node_count"`
	EdgeCount int          `json:"edge_count"`
}

type geoExtractRequest struct {
	Result any `json:"result"`
}

type geoExtractResponse struct {
	Model      *geo.Model            `json:"model"`
	Placements []layout.GeoPlacement `json:"placements"`
}

type geoCheckResponse struct {
	HasGeo bool `json:"has_geo"`
}

// resultModelResponse bundles every view of a query result in one round
// trip: the graph model, the geo model with its map placements, and the
// presence flag.
type resultModelResponse struct {
	Graph      *graph.Model          `json:"graph"`
	Geo        *geo.Model            `json:"geo"`
	Placements []layout.GeoPlacement `json:"placements"`
	HasGeo     bool                  `json:"has_geo"`
}

type autocompleteRequest struct {
	Text   string `json:"query"`
	Cursor int    `json:"cursor"`
	Schema string `json:"schema_text,omitempty"`
}

type autocompleteResponse struct {
	Context     string                    `json:"context"`
	Suggestions []autocomplete.Suggestion `json:"suggestions"`
}

type layoutStartRequest struct {
	Result any            `json:"result"`
	Layout *layoutRequest `json:"layout,omitempty"`
}

type layoutSessionResponse struct {
	SessionID string    `json:"session_id"`
	NodeCount int       `json:"node_count"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSchemaParse(w http.ResponseWriter, r *http.Request) {
	var req schemaParseRequest
	if !s.decode(w, r, &req) {
		return
	}

	model := s.parseSchema(req.Schema)

	writeJSON(w, http.StatusOK, schemaParseResponse{Model: model})
}

func (s *Server) handleGraphBuild(w http.ResponseWriter, r *http.Request) {
	var req graphBuildRequest
	if !s.decode(w, r, &req) {
		return
	}

	model := s.builder.BuildModel(req.Result)
	s.registry.CoreMetrics().GraphBuilds.Inc()

	// ?layout=static requests a default one-shot layout without a body block.
	if req.Layout == nil && r.URL.Query().Get("layout") == "static" {
		req.Layout = &layoutRequest{}
	}

	if req.Layout != nil {
		iterations := req.Layout.Iterations
		if iterations <= 0 {
			iterations = s.cfg.Layout.OneShotIterations
		}
		engine := layout.NewEngine(req.Layout.config())
		if err := engine.Run(r.Context(), model, iterations); err != nil {
			s.fail(w, r, http.StatusInternalServerError, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, graphBuildResponse{
		Model:     model,
		NodeCount: model.NodeCount(),
		EdgeCount: model.EdgeCount(),
	})
}

func (s *Server) handleGeoExtract(w http.ResponseWriter, r *http.Request) {
	var req geoExtractRequest
	if !s.decode(w, r, &req) {
		return
	}

	model := s.extractor.ExtractModel(req.Result)
	s.registry.CoreMetrics().GeoExtractions.Inc()

	writeJSON(w, http.StatusOK, geoExtractResponse{
		Model:      model,
		Placements: layout.GeoPlacements(model),
	})
}

func (s *Server) handleGeoCheck(w http.ResponseWriter, r *http.Request) {
	var req geoExtractRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.registry.CoreMetrics().GeoChecks.Inc()

	writeJSON(w, http.StatusOK, geoCheckResponse{HasGeo: geo.HasGeoData(req.Result)})
}

// handleResultModel builds every model of a result concurrently. The
// transforms are pure and share only the decoded input, so the group
// exists for latency, not coordination.
func (s *Server) handleResultModel(w http.ResponseWriter, r *http.Request) {
	var req geoExtractRequest
	if !s.decode(w, r, &req) {
		return
	}

	var resp resultModelResponse
	g, _ := errgroup.WithContext(r.Context())
	g.Go(func() error {
		resp.Graph = s.builder.BuildModel(req.Result)
		return nil
	})
	g.Go(func() error {
		resp.Geo = s.extractor.ExtractModel(req.Result)
		resp.Placements = layout.GeoPlacements(resp.Geo)
		return nil
	})
	g.Go(func() error {
		resp.HasGeo = geo.HasGeoData(req.Result)
		return nil
	})
	_ = g.Wait()

	s.registry.CoreMetrics().GraphBuilds.Inc()
	s.registry.CoreMetrics().GeoExtractions.Inc()
	s.registry.CoreMetrics().GeoChecks.Inc()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	var req autocompleteRequest
	if !s.decode(w, r, &req) {
		return
	}

	var model *schema.Model
	if req.Schema != "" {
		model = s.parseSchema(req.Schema)
	}

	ctx, _ := s.resolver.Classify(req.Text, req.Cursor)
	suggestions := s.resolver.Resolve(req.Text, req.Cursor, model)
	s.registry.CoreMetrics().Autocompletes.Inc()

	writeJSON(w, http.StatusOK, autocompleteResponse{
		Context:     ctx.String(),
		Suggestions: suggestions,
	})
}

func (s *Server) handleLayoutStart(w http.ResponseWriter, r *http.Request) {
	var req layoutStartRequest
	if !s.decode(w, r, &req) {
		return
	}

	model := s.builder.BuildModel(req.Result)
	session, err := s.sessions.Start(s.baseContext(r), model, req.Layout.config())
	if err != nil {
		if stderrors.Is(err, errors.ErrRateLimited) {
			s.fail(w, r, http.StatusTooManyRequests, err)
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, layoutSessionResponse{
		SessionID: session.ID,
		NodeCount: model.NodeCount(),
		CreatedAt: session.CreatedAt,
	})
}

func (s *Server) handleLayoutStop(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.sessions.Stop(id); err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "stopped"})
}

func (s *Server) handleLayoutPause(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, errors.ErrSessionNotFound)
		return
	}
	session.Runner.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": session.ID, "status": "paused"})
}

func (s *Server) handleLayoutResume(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, errors.ErrSessionNotFound)
		return
	}
	session.Runner.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"session_id": session.ID, "status": "running"})
}

// parseSchema parses through the model cache; autocomplete clients re-send
// the same schema text on every request.
func (s *Server) parseSchema(text string) *schema.Model {
	if model, ok := s.schemas.Get(text); ok {
		return model
	}
	model := s.parser.Parse(text)
	s.schemas.Put(text, model)
	s.registry.CoreMetrics().SchemaParses.Inc()
	return model
}

// baseContext prefers the server's lifecycle context so layout runners
// outlive the request that created them.
func (s *Server) baseContext(r *http.Request) context.Context {
	if s.baseCtx != nil {
		return s.baseCtx
	}
	return r.Context()
}

// decode reads a size-limited JSON body into dst. On failure it writes the
// error response and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		s.fail(w, r, http.StatusBadRequest,
			errors.WrapInvalid(err, "Gateway", "decode", "malformed request body"))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	// Label by the matched route pattern, not the raw path: per-session
	// paths would otherwise mint a label value per UUID.
	route := r.Pattern
	if route == "" {
		route = r.URL.Path
	}
	s.registry.CoreMetrics().RequestsFailed.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
	s.logger.Warn("Request failed",
		"component", "gateway",
		"path", r.URL.Path,
		"status", status,
		"error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
