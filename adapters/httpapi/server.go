// Package httpapi serves randomization tests over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gorandtest/app"
	"gorandtest/domain/randtest"
	"gorandtest/internal"
	"gorandtest/internal/errors"
	"gorandtest/internal/report"
)

// maxRequestBytes bounds the JSON body of a run request
const maxRequestBytes = 8 << 20

// Server routes API requests to the randomization test service
type Server struct {
	router  *chi.Mux
	service *app.RandTestService
	logger  *internal.Logger
}

// NewServer wires the routes. metrics serves /metrics and may be nil.
func NewServer(service *app.RandTestService, metrics http.Handler, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewDiscardLogger()
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Get("/health", s.handleHealth)
	if metrics != nil {
		s.router.Handle("/metrics", metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/randtest", s.handleRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/report", s.handleRunReport)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req app.RunRequest
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed run request", err))
		return
	}

	outcome, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome.Record())
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.InvalidInput("limit must be a positive integer", err))
			return
		}
		limit = parsed
	}

	outcomes, err := s.service.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	records := make([]randtest.Record, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, o.Record())
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome.Record())
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	format := report.FormatHTML
	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := report.ParseFormat(raw)
		if err != nil {
			s.writeError(w, err)
			return
		}
		format = parsed
	}

	outcome, err := s.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format {
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case report.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case report.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err := report.Render(w, outcome, format); err != nil {
		s.logger.Error("failed to render report for %s: %v", outcome.RunID(), err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
