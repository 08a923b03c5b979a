package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	"github.com/couchcryptid/inmet-alerts-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Fetcher downloads the raw feed body.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Notifier delivers the event for a newly seen alert.
type Notifier interface {
	Notify(ctx context.Context, event domain.AlertEvent) error
}

// Outcome classifies a whole cycle.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFetchError Outcome = "fetch_error"
	OutcomeEmptyBody  Outcome = "empty_body"
	OutcomeParseError Outcome = "parse_error"
)

// Snapshot is the externally visible result of the latest cycle.
type Snapshot struct {
	Alerts    []domain.Alert
	Outcome   Outcome
	UpdatedAt time.Time
}

// Count is the number of currently valid alerts.
func (s Snapshot) Count() int { return len(s.Alerts) }

// Report describes one completed cycle.
type Report struct {
	Outcome Outcome
	Err     error
	Alerts  []domain.Alert
	New     []domain.Alert
	Skipped int
	Expired int
}

// Monitor owns the poll state for one feed: the last output and the IDs seen
// in the previous cycle. Cycles must not run concurrently; Snapshot may be
// read from any goroutine.
type Monitor struct {
	fetcher  Fetcher
	notifier Notifier
	clock    clockwork.Clock
	location *time.Location
	logger   *slog.Logger
	metrics  *observability.Metrics

	previous domain.IDSet
	snapshot atomic.Pointer[Snapshot]
	ready    atomic.Bool
}

// New creates a Monitor. A nil clock uses real time and a nil location
// renders notification timestamps in UTC.
func New(f Fetcher, n Notifier, clock clockwork.Clock, location *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if location == nil {
		location = time.UTC
	}
	m := &Monitor{
		fetcher:  f,
		notifier: n,
		clock:    clock,
		location: location,
		logger:   logger,
		metrics:  metrics,
		previous: domain.IDSet{},
	}
	m.snapshot.Store(&Snapshot{Alerts: []domain.Alert{}})
	return m
}

// Snapshot returns the output of the most recent cycle.
func (m *Monitor) Snapshot() Snapshot {
	return *m.snapshot.Load()
}

// Location is the display location used when rendering alerts.
func (m *Monitor) Location() *time.Location { return m.location }

// CheckReadiness returns nil once a cycle has fetched and parsed the feed.
func (m *Monitor) CheckReadiness(_ context.Context) error {
	if !m.ready.Load() {
		return errors.New("monitor has not completed a successful poll yet")
	}
	return nil
}

// Run polls once immediately and then on every interval tick until the
// context is cancelled. Each cycle completes before the next tick is read.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if ctx.Err() != nil {
		return nil
	}

	m.logger.Info("monitor started", "interval", interval)
	m.metrics.MonitorRunning.Set(1)
	defer m.metrics.MonitorRunning.Set(0)

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	m.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			m.RunCycle(ctx)
		}
	}
}

// RunCycle performs one fetch-parse-filter-diff-notify cycle. It never fails:
// cycle-level faults produce an empty output and reset the previous-ID set.
func (m *Monitor) RunCycle(ctx context.Context) Report {
	start := m.clock.Now()
	report := m.collect(ctx, start)

	ids := domain.AlertIDs(report.Alerts)
	fresh := domain.NewIDSet(domain.NewIDs(ids, m.previous))
	for _, a := range report.Alerts {
		if fresh.Has(a.ID) {
			report.New = append(report.New, a)
		}
	}

	m.previous = domain.NewIDSet(ids)
	m.snapshot.Store(&Snapshot{Alerts: report.Alerts, Outcome: report.Outcome, UpdatedAt: start})
	if report.Outcome == OutcomeSuccess {
		m.ready.Store(true)
	}

	for _, a := range report.New {
		m.notify(ctx, a, start)
	}

	m.metrics.Cycles.WithLabelValues(string(report.Outcome)).Inc()
	m.metrics.AlertsActive.Set(float64(len(report.Alerts)))
	m.metrics.AlertsNew.Add(float64(len(report.New)))
	m.metrics.CycleDuration.Observe(m.clock.Since(start).Seconds())

	m.logger.Info("cycle complete",
		"outcome", report.Outcome,
		"alerts", len(report.Alerts),
		"new", len(report.New),
		"expired", report.Expired,
		"skipped", report.Skipped,
	)
	return report
}

// collect fetches, parses and extracts the valid alerts for one cycle.
func (m *Monitor) collect(ctx context.Context, now time.Time) Report {
	fetchStart := m.clock.Now()
	body, err := m.fetcher.Fetch(ctx)
	m.metrics.FetchDuration.Observe(m.clock.Since(fetchStart).Seconds())
	if err != nil {
		m.logFetchError(err)
		return Report{Outcome: OutcomeFetchError, Err: err, Alerts: []domain.Alert{}}
	}

	items, err := domain.ParseFeed(body)
	switch {
	case errors.Is(err, domain.ErrEmptyFeed):
		m.logger.Warn("feed response is empty")
		return Report{Outcome: OutcomeEmptyBody, Err: err, Alerts: []domain.Alert{}}
	case err != nil:
		m.logger.Error("feed is not valid xml", "error", err)
		return Report{Outcome: OutcomeParseError, Err: err, Alerts: []domain.Alert{}}
	}

	report := Report{Outcome: OutcomeSuccess}
	results := domain.ExtractItems(items, now)
	for _, r := range results {
		switch r.Outcome {
		case domain.OutcomeSkipped:
			report.Skipped++
			m.logger.Warn("skipping feed item", "index", r.Index, "error", r.Err)
		case domain.OutcomeExpired:
			report.Expired++
			m.logger.Debug("dropping expired alert", "id", r.Alert.ID, "end_time", r.Alert.EndTime)
		}
	}
	m.metrics.ItemsSkipped.Add(float64(report.Skipped))
	m.metrics.AlertsExpired.Add(float64(report.Expired))

	report.Alerts = domain.ActiveAlerts(results)
	return report
}

func (m *Monitor) logFetchError(err error) {
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 {
		m.logger.Warn("feed returned unexpected status", "status", fetchErr.StatusCode, "url", fetchErr.URL)
		return
	}
	m.logger.Error("feed fetch failed", "error", err)
}

func (m *Monitor) notify(ctx context.Context, a domain.Alert, now time.Time) {
	if m.notifier == nil {
		return
	}
	event := domain.NewAlertEvent(a, m.location, now)
	if err := m.notifier.Notify(ctx, event); err != nil {
		m.logger.Error("notify new alert failed", "id", a.ID, "event_id", event.EventID, "error", err)
	}
}
