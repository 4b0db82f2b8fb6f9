// Package server exposes the scheduling engine over HTTP.
//
// It provides:
//   - POST /v1/schedule, running the full scheduling pipeline per request
//   - Kubernetes-style health probes (liveness, readiness, startup)
//   - Prometheus metrics on /metrics
//   - Graceful shutdown with connection draining
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/internal/health"
	"github.com/runsheethq/runsheet/internal/log"
	"github.com/runsheethq/runsheet/internal/metrics"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Server serves the scheduling API with health endpoints.
type Server struct {
	httpServer      *http.Server
	engine          *schedule.Engine
	probeManager    *health.ProbeManager
	logger          *log.Logger
	metrics         *metrics.Metrics
	maxBodyBytes    int64
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address (e.g., ":8080", "0.0.0.0:8080")
	Address string

	// ShutdownTimeout is the maximum time to wait for connections to drain during shutdown.
	// Defaults to 30 seconds if not specified.
	ShutdownTimeout time.Duration

	// ReadTimeout is the maximum duration for reading the entire request.
	// Defaults to 10 seconds if not specified.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Defaults to 10 seconds if not specified.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request.
	// Defaults to 60 seconds if not specified.
	IdleTimeout time.Duration

	// MaxBodyBytes caps the accepted request body size.
	// Defaults to 1 MiB if not specified.
	MaxBodyBytes int64
}

// NewServer creates a new HTTP server around the given engine.
// The probe manager backs the health endpoints; register an
// health.EngineChecker on it to make readiness exercise the pipeline.
func NewServer(engine *schedule.Engine, probeManager *health.ProbeManager, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		engine:          engine,
		probeManager:    probeManager,
		logger:          log.DefaultLogger().With("component", "server"),
		metrics:         metrics.GetDefault(),
		maxBodyBytes:    cfg.MaxBodyBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/v1/schedule", s.handleSchedule)

	mux.HandleFunc("/health/live", s.handleLiveness)
	mux.HandleFunc("/health/ready", s.handleReadiness)
	mux.HandleFunc("/health/startup", s.handleStartup)

	// Backward compatibility: /healthz endpoint (maps to readiness)
	mux.HandleFunc("/healthz", s.handleReadiness)

	mux.Handle("/metrics", metrics.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.instrument(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start starts the HTTP server.
// This is a blocking call that returns when the server is stopped or encounters an error.
// Returns http.ErrServerClosed when the server is shut down gracefully.
func (s *Server) Start() error {
	s.probeManager.MarkInitialized()
	s.logger.Info("server listening", "address", s.httpServer.Addr)

	return s.httpServer.ListenAndServe()
}

// Shutdown performs graceful shutdown of the HTTP server.
//
// It:
//  1. Marks the server as shutting down (readiness probes will fail)
//  2. Disables HTTP keep-alives to stop accepting new requests
//  3. Waits for existing connections to drain (up to ShutdownTimeout)
//  4. Forces closure of any remaining connections after timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()

	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown returns whether the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// statusRecorder captures the status code written by a handler so the
// instrumentation middleware can label metrics with it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps the mux with request counting and latency observation.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := routeLabel(r.URL.Path)
		s.metrics.HTTPRequests.WithLabelValues(path, r.Method, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

// routeLabel collapses unknown paths into one bucket so metric label
// cardinality stays bounded no matter what clients request.
func routeLabel(path string) string {
	switch path {
	case "/v1/schedule", "/health/live", "/health/ready", "/health/startup", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

// errorResponse is the JSON body served for failed schedule requests.
type errorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// handleSchedule handles scheduling requests.
// POST /v1/schedule
//
// The body is a JSON types.Request; the response is the full types.Result.
//
// Returns:
//   - 200 OK with the schedule result (conflicts included; a conflicted
//     schedule is still a schedule)
//   - 400 Bad Request for malformed JSON or an invalid request
//   - 413 Request Entity Too Large when the body exceeds the size cap
//   - 422 Unprocessable Entity when consolidation finds no usable task data
//   - 503 Service Unavailable while shutting down
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.inShutdown.Load() {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("server is shutting down"))
		return
	}

	ctx := r.Context()

	var req types.Request
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if tooLarge, ok := err.(*http.MaxBytesError); ok {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				errors.Wrap(errors.ErrCodeRequestUnmarshal, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), err))
			return
		}
		s.writeError(w, http.StatusBadRequest,
			errors.Wrap(errors.ErrCodeRequestUnmarshal, "request body is not valid JSON", err))
		return
	}

	result, err := s.engine.Run(ctx, &req)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	s.logger.InfoContext(ctx, "schedule request served",
		"run_id", result.RunID,
		"tasks", result.Stats.TaskCount,
		"conflicts", result.Stats.ConflictCount,
	)
	s.writeJSON(w, http.StatusOK, result)
}

// statusForError maps pipeline errors onto HTTP statuses. Client mistakes
// (bad JSON, invalid fields) are 400s, requests that parse but carry no
// usable task data are 422s, and anything else is a 500.
func statusForError(err error) int {
	schedErr, ok := err.(*errors.ScheduleError)
	if !ok {
		return http.StatusInternalServerError
	}

	switch schedErr.Code {
	case errors.ErrCodeRequestInvalid, errors.ErrCodeRequestUnmarshal, errors.ErrCodeAllocBadWorkingHours:
		return http.StatusBadRequest
	case errors.ErrCodeConsolidateNoData, errors.ErrCodeConsolidateInvalidAnnotation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError serves an error as JSON, lifting code and suggestions out of
// coded errors so API clients get the same guidance CLI users do.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}

	if schedErr, ok := err.(*errors.ScheduleError); ok {
		resp.Error = schedErr.Message
		if schedErr.Cause != nil {
			resp.Error = fmt.Sprintf("%s: %v", schedErr.Message, schedErr.Cause)
		}
		resp.Code = string(schedErr.Code)
		resp.Suggestions = schedErr.Suggestions
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("schedule request failed", "status", status, "error", err)
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeProbeResponse is a helper function to write probe responses with consistent error handling.
func (s *Server) writeProbeResponse(w http.ResponseWriter, result *health.ProbeResult, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if result.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// handleLiveness handles liveness probe requests.
// GET /health/live
//
// Returns:
//   - 200 OK with JSON: server is running normally
//   - 200 OK with JSON (degraded status): server is shutting down but still alive
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckLiveness(r.Context())

	// Liveness always returns 200, even during shutdown
	s.writeProbeResponse(w, result, http.StatusOK)
}

// handleReadiness handles readiness probe requests.
// GET /health/ready
//
// Returns:
//   - 200 OK with JSON: server is ready to take schedule requests
//   - 503 Service Unavailable with JSON: shutting down or a health check failed
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckReadiness(r.Context())

	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}

// handleStartup handles startup probe requests.
// GET /health/startup
//
// Returns:
//   - 200 OK with JSON: server has finished initialization
//   - 503 Service Unavailable with JSON: server is still starting up
func (s *Server) handleStartup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := s.probeManager.CheckStartup(r.Context())

	s.writeProbeResponse(w, result, http.StatusServiceUnavailable)
}
