// Package web exposes the process-boundary HTTP surface: health check,
// status snapshot and a rate-limited manual trigger. Glue only — all
// behavior lives in the monitor.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"jobwatch/monitor-service/internal/model"
	"jobwatch/monitor-service/internal/monitor"
)

// StatsReader provides the store snapshot for the status endpoint.
type StatsReader interface {
	Stats(ctx context.Context) (model.StoreStats, error)
}

// Server bundles the HTTP handlers around the monitor session.
type Server struct {
	monitor *monitor.Monitor
	stats   StatsReader
	version string
}

// NewServer constructs the HTTP surface.
func NewServer(m *monitor.Monitor, stats StatsReader, version string) *Server {
	return &Server{monitor: m, stats: stats, version: version}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("POST /trigger", s.handleTrigger)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"service":   "jobwatch-monitor",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if last, running := s.monitor.LastStart(); !last.IsZero() {
		resp["last_cycle_start"] = last.Format(time.RFC3339)
		resp["minutes_since_last_cycle"] = int(time.Since(last).Minutes())
		resp["cycle_running"] = running
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		slog.Error("status stats failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "stats unavailable"})
		return
	}
	last, running := s.monitor.LastStart()
	resp := map[string]any{
		"service":       "jobwatch-monitor",
		"cycle_running": running,
		"stats":         stats,
	}
	if !last.IsZero() {
		resp["last_cycle_start"] = last.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	result, err := s.monitor.Trigger(r.Context())
	switch {
	case errors.Is(err, monitor.ErrCycleInFlight), errors.Is(err, monitor.ErrTriggerTooSoon):
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"status": "rejected", "message": err.Error(),
		})
	case err != nil:
		slog.Error("manual trigger failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status": "error", "message": err.Error(),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "success",
			"new_jobs":  result.TotalNew,
			"sent_jobs": result.TotalSent,
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "err", err)
	}
}
