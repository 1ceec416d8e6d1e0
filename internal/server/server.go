package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/export"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

// Server provides the read-only dashboard API and Prometheus metrics.
type Server struct {
	store    *tracker.Store
	mux      *http.ServeMux
	logger   *slog.Logger
	registry *prometheus.Registry
	window   int

	reloadOnRequest bool
}

// Option configures a Server.
type Option func(*Server)

// WithRequestReload controls whether every API request reloads the snapshot
// from the backend first. Disable it when a Watch loop keeps the store fresh.
func WithRequestReload(enabled bool) Option {
	return func(s *Server) { s.reloadOnRequest = enabled }
}

// NewServer creates an API server. window is the default averaging window for stats.
func NewServer(store *tracker.Store, window int, logger *slog.Logger, opts ...Option) *Server {
	if window <= 0 {
		window = tracker.DefaultWindow
	}
	s := &Server{
		store:           store,
		mux:             http.NewServeMux(),
		logger:          logger,
		registry:        prometheus.NewRegistry(),
		window:          window,
		reloadOnRequest: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(
		newUsageCollector(store),
		collectors.NewGoCollector(),
	)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/services", s.handleServices)
	s.mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	s.mux.HandleFunc("GET /api/v1/insights", s.handleInsights)
	s.mux.HandleFunc("GET /api/v1/trend", s.handleTrend)
	s.mux.HandleFunc("GET /api/v1/export", s.handleExport)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// refresh picks up writes made by other processes sharing the backend.
func (s *Server) refresh(ctx context.Context) {
	if !s.reloadOnRequest {
		return
	}
	if err := s.store.Reload(ctx); err != nil {
		s.logger.Warn("reload snapshot", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	s.refresh(ctx)

	writeJSON(w, s.store.ServiceStatuses(ctx, s.store.Now()))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	limit, err := intParam(r, "limit", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.refresh(ctx)

	events := s.store.ListHistory(tracker.HistoryFilter{
		Service:  r.URL.Query().Get("service"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
	})
	writeJSON(w, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	window, err := intParam(r, "window", s.window)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.refresh(ctx)

	writeJSON(w, s.store.Stats(ctx, window))
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	s.refresh(ctx)

	writeJSON(w, s.store.Insights(ctx))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	window, err := intParam(r, "window", s.window)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.refresh(ctx)

	writeJSON(w, s.store.Trend(window))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(export.FormatJSON)
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.refresh(ctx)

	data := export.ReportData{
		GeneratedAt: s.store.Now(),
		Snapshot:    s.store.ExportSnapshot(ctx),
		Stats:       s.store.Stats(ctx, s.window),
		Trend:       s.store.Trend(s.window),
	}

	switch format {
	case export.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	case export.FormatReport:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))

	if err := export.Write(w, format, data); err != nil {
		s.logger.Error("write export", "format", format, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
