package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	"github.com/couchcryptid/inmet-alerts-service/internal/monitor"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AlertSource exposes the latest poll result.
type AlertSource interface {
	Snapshot() monitor.Snapshot
	Location() *time.Location
}

// Server exposes health, readiness, metrics and the current alert set over HTTP.
type Server struct {
	httpServer *http.Server
	source     AlertSource
	logger     *slog.Logger
}

type alertsResponse struct {
	Count     int                `json:"count"`
	Alerts    []domain.AlertView `json:"alerts"`
	Outcome   monitor.Outcome    `json:"outcome,omitempty"`
	UpdatedAt *time.Time         `json:"updated_at"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /alerts routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, source AlertSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /alerts", s.handleAlerts)

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

func (s *Server) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Snapshot()
	loc := s.source.Location()

	resp := alertsResponse{
		Count:   snap.Count(),
		Alerts:  make([]domain.AlertView, 0, len(snap.Alerts)),
		Outcome: snap.Outcome,
	}
	for _, a := range snap.Alerts {
		resp.Alerts = append(resp.Alerts, a.View(loc))
	}
	if !snap.UpdatedAt.IsZero() {
		updated := snap.UpdatedAt.UTC()
		resp.UpdatedAt = &updated
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
