// Package api exposes the routing pipeline over HTTP.
//
// Endpoints:
//
//	GET  /healthz          liveness probe
//	POST /v1/route         route an inline program onto an inline device
//	POST /v1/render        render a device coupling graph as SVG
//	GET  /v1/runs          list archived runs, newest first
//	GET  /v1/runs/{id}     fetch one archived run
//
// Routed results are archived in the configured store so they can be
// fetched again by id.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
	"github.com/matzehuels/qroute/pkg/metrics"
	"github.com/matzehuels/qroute/pkg/pipeline"
	"github.com/matzehuels/qroute/pkg/render"
	"github.com/matzehuels/qroute/pkg/route"
	"github.com/matzehuels/qroute/pkg/store"
)

// DefaultListLimit caps /v1/runs responses when no limit is given.
const DefaultListLimit = 50

// Server wires the pipeline runner and run store into an HTTP handler.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// NewServer creates a server. A nil store disables run archiving; a nil
// logger falls back to the default logger.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/route", s.handleRoute)
		r.Post("/render", s.handleRender)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	return r
}

// routeResponse is the POST /v1/route response body.
type routeResponse struct {
	ID     string         `json:"id,omitempty"`
	Report metrics.Report `json:"report"`
	Routed *route.Routed  `json:"routed"`
	Cached bool           `json:"cached"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if opts.Device == nil || opts.Program == nil {
		s.respondError(w, http.StatusBadRequest, "device and program are required")
		return
	}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	resp := routeResponse{
		Report: result.Report,
		Routed: result.Routed,
		Cached: result.CacheInfo.RouteHit,
	}

	if s.store != nil {
		run, err := store.NewRun(result.Spec.Name, opts.SearchDepth, result.Routed, result.Report)
		if err == nil {
			err = s.store.Put(r.Context(), run)
		}
		if err != nil {
			// Routing succeeded; archiving failure must not fail the request.
			s.logger.Error("archive run", "err", err)
		} else {
			resp.ID = run.ID
		}
	}

	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var spec device.Spec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	svg, cached, err := s.runner.RenderDevice(r.Context(), spec, render.Options{ShowWeights: true})
	if err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if cached {
		w.Header().Set("X-Cache", "hit")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "run archive disabled")
		return
	}

	limit := DefaultListLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "run archive disabled")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

// statusFor maps routing failures to HTTP statuses. Input problems are the
// client's fault; everything else is a server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, route.ErrTopologyMismatch),
		errors.Is(err, route.ErrSearchDepth),
		errors.Is(err, circuit.ErrNoQubits),
		errors.Is(err, circuit.ErrQubitRange),
		errors.Is(err, device.ErrQubitRange),
		errors.Is(err, device.ErrSelfLink),
		errors.Is(err, device.ErrDuplicateLink),
		errors.Is(err, device.ErrDisconnected),
		errors.Is(err, device.ErrWeightRange),
		errors.Is(err, device.ErrMissingWeight):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
