package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/flowlayout/pkg/buildinfo"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
	"github.com/matzehuels/flowlayout/pkg/view"
)

// LayoutRequest is the body of /v1/layout and /v1/render. The pipeline
// options (layout, expand, format, detailed, refresh) sit next to the graph.
type LayoutRequest struct {
	Graph json.RawMessage `json:"graph"`
	pipeline.Options
}

// LayoutResponse is the body of a successful /v1/layout.
type LayoutResponse struct {
	View   *view.View `json:"view"`
	Cached bool       `json:"cached"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

// handleLayout projects the posted graph.
// POST /v1/layout
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := pipeline.ParseBytes(r.Context(), "request.json", req.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	v, hit, err := s.runner.Layout(r.Context(), p, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{View: v, Cached: hit})
}

// handleRender projects and paints the posted graph. The format defaults
// to SVG here rather than JSON.
// POST /v1/render
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = pipeline.FormatSVG
	}
	p, err := pipeline.ParseBytes(r.Context(), "request.json", req.Graph)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), p, req.Options)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cache := "miss"
	if res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit {
		cache = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

// decode reads a request body on top of the server defaults, so a request
// that names one layout field keeps the configured values for the rest.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*LayoutRequest, error) {
	req := &LayoutRequest{Options: s.defaults}
	req.Expand = nil

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if len(req.Graph) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is required")
	}
	return req, nil
}
