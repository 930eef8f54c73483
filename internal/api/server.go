// Package api exposes the planning pipeline over HTTP.
//
// The API is a thin stateless front on pipeline.Runner: requests carry a
// full options payload, responses carry the full result, and nothing is
// stored between calls beyond the runner's cache.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sliceplan/sliceplan/pkg/errors"
	"github.com/sliceplan/sliceplan/pkg/optimize"
	"github.com/sliceplan/sliceplan/pkg/pipeline"
)

// Server handles planning requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around a pipeline runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/plan", s.handlePlan)
		r.Post("/windowsize", s.handleWindowSize)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePlan runs the full pipeline for a JSON options payload.
// Rendered artifacts are not returned inline; clients requesting charts use
// the formats field and fetch the JSON result's embedded plan instead.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	// Chart artifacts are a CLI concern; the API returns the plan itself.
	opts.Formats = nil
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// windowSizeRequest is the payload of the brute-force fallback endpoint.
type windowSizeRequest struct {
	ItemCount      int     `json:"item_count"`
	WindowCount    int     `json:"window_count"`
	OverlapPercent float64 `json:"overlap_percent"`
}

type windowSizeResponse struct {
	WindowSize int `json:"window_size"`
}

func (s *Server) handleWindowSize(w http.ResponseWriter, r *http.Request) {
	var req windowSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	size, err := optimize.WindowSize(req.ItemCount, req.WindowCount, req.OverlapPercent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, windowSizeResponse{WindowSize: size})
}

// errorResponse is the JSON shape of every error.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps structured error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case strings.HasPrefix(string(code), "INVALID"):
		status = http.StatusBadRequest
	case code == errors.ErrCodeAllStartsFailed:
		status = http.StatusUnprocessableEntity
	case code == errors.ErrCodeNoFeasibleWindow:
		status = http.StatusUnprocessableEntity
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	}

	s.logger.Error("request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"code", code,
		"err", err)

	writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
