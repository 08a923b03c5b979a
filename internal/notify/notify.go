// Package notify fans new-alert events out to the configured delivery sinks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	"github.com/couchcryptid/inmet-alerts-service/internal/observability"
)

// Notifier delivers one alert event.
type Notifier interface {
	Notify(ctx context.Context, event domain.AlertEvent) error
}

// Sink is a named Notifier.
type Sink struct {
	Name     string
	Notifier Notifier
}

// Fanout delivers each event to every sink. A failing sink does not stop
// delivery to the others.
type Fanout struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFanout creates a Fanout over sinks.
func NewFanout(logger *slog.Logger, metrics *observability.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, logger: logger, metrics: metrics}
}

// Sinks returns the sink names in delivery order.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name
	}
	return names
}

// Notify implements monitor.Notifier. The returned error joins every sink failure.
func (f *Fanout) Notify(ctx context.Context, event domain.AlertEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Notifier.Notify(ctx, event); err != nil {
			f.metrics.Notifications.WithLabelValues(s.Name, "error").Inc()
			f.logger.Warn("sink delivery failed", "sink", s.Name, "id", event.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		f.metrics.Notifications.WithLabelValues(s.Name, "success").Inc()
	}
	return errors.Join(errs...)
}

// Log writes each event as a structured log line.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a log sink.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(_ context.Context, event domain.AlertEvent) error {
	l.logger.Info("new alert",
		"event", event.Name,
		"event_id", event.EventID,
		"id", event.ID,
		"status", event.Status,
		"severity", event.Severity,
		"start", event.Start,
		"end", event.End,
		"area", event.Area,
	)
	return nil
}
