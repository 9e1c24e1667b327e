// Package httpapi exposes the planner as a JSON API over net/http.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"garden-planner/internal/clock"
	"garden-planner/internal/metrics"
	"garden-planner/internal/planner"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the plan API.
type Server struct {
	planner *planner.Planner
	secret  []byte
	logger  *zap.Logger
	clock   clock.Clock
	locale  string
	health  func() metrics.SysHealth
}

// Option customizes a Server.
type Option func(*Server)

// WithClock overrides the clock used for token validation.
func WithClock(clk clock.Clock) Option {
	return func(s *Server) { s.clock = clk }
}

// WithLocale sets the document language of HTML exports.
func WithLocale(locale string) Option {
	return func(s *Server) { s.locale = locale }
}

// WithHealth adds process statistics to /health.
func WithHealth(fn func() metrics.SysHealth) Option {
	return func(s *Server) { s.health = fn }
}

// NewServer creates a Server authenticating /api requests with secret.
func NewServer(p *planner.Planner, secret []byte, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		planner: p,
		secret:  secret,
		logger:  logger,
		clock:   clock.Real{},
		locale:  "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the API routes and /health on mux.
func (s *Server) Register(mux *http.ServeMux) {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/plans", s.handleListPlans)
	api.HandleFunc("POST /api/plans", s.handleCreatePlan)
	api.HandleFunc("GET /api/plans/{id}", s.handleGetPlan)
	api.HandleFunc("PATCH /api/plans/{id}", s.handleUpdatePlan)
	api.HandleFunc("DELETE /api/plans/{id}", s.handleDeletePlan)
	api.HandleFunc("POST /api/plans/{id}/duplicate", s.handleDuplicatePlan)
	api.HandleFunc("POST /api/plans/{id}/place", s.handlePlace)
	api.HandleFunc("POST /api/plans/{id}/remove", s.handleRemove)
	api.HandleFunc("POST /api/plans/{id}/move", s.handleMove)
	api.HandleFunc("POST /api/plans/{id}/toggle", s.handleToggle)
	api.HandleFunc("POST /api/plans/{id}/resize", s.handleResize)
	api.HandleFunc("GET /api/plans/{id}/summary", s.handleSummary)
	api.HandleFunc("GET /api/plans/{id}/cells/{cellId}/companions", s.handleCompanions)
	api.HandleFunc("GET /api/plans/{id}/export", s.handleExport)
	api.HandleFunc("GET /api/vegetables", s.handleVegetables)

	mux.Handle("/api/", s.logRequests(s.authenticate(api)))
	mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns a mux serving only this API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writePlannerError maps planner errors to status codes.
func (s *Server) writePlannerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidDimensions),
		errors.Is(err, planner.ErrInvalidCellSize),
		errors.Is(err, planner.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("planner operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "plan not found")
}
