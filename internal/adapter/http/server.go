package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/geo-linkage-etl/internal/pipeline"
)

// RunStatus reports readiness and the outcome of the last linkage run.
type RunStatus interface {
	CheckReadiness(ctx context.Context) error
	LastRun() (pipeline.RunResult, bool)
}

// Server exposes health, readiness, run status, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /runs/last, and /metrics routes.
func NewServer(addr string, status RunStatus, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(status))
	mux.HandleFunc("GET /runs/last", handleLastRun(status))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker RunStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type overlayView struct {
	Column      string  `json:"column"`
	Mode        string  `json:"mode"`
	Points      int     `json:"indexed_points"`
	MatchedRows int     `json:"matched_rows"`
	MatchRate   float64 `json:"match_rate"`
}

type fillView struct {
	Column  string  `json:"column"`
	Present int     `json:"present"`
	Rate    float64 `json:"rate"`
}

type runView struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	BaseSamples  int           `json:"base_samples"`
	Rows         int           `json:"rows"`
	RowsDropped  int           `json:"rows_dropped"`
	CompleteRows int           `json:"complete_rows"`
	Overlays     []overlayView `json:"overlays"`
	Fill         []fillView    `json:"fill"`
}

func newRunView(r pipeline.RunResult) runView {
	v := runView{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		BaseSamples:  r.BaseSamples,
		Rows:         r.Summary.Rows,
		RowsDropped:  r.RowsDropped,
		CompleteRows: r.Summary.CompleteRows,
		Overlays:     make([]overlayView, len(r.Overlays)),
		Fill:         make([]fillView, len(r.Summary.Fill)),
	}
	for i, o := range r.Overlays {
		v.Overlays[i] = overlayView{
			Column:      o.Column,
			Mode:        o.Stats.Mode.String(),
			Points:      o.Stats.OverlayPoints,
			MatchedRows: o.Stats.MatchedRows,
			MatchRate:   o.Stats.MatchRate(),
		}
	}
	for i, f := range r.Summary.Fill {
		v.Fill[i] = fillView{Column: f.Column, Present: f.Present, Rate: f.Rate}
	}
	return v
}

func handleLastRun(status RunStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		run, ok := status.LastRun()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed run"})
			return
		}
		writeJSON(w, http.StatusOK, newRunView(run))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
