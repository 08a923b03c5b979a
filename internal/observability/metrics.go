package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inmet_alerts"

// Metrics holds the Prometheus counters, histograms, and gauges for the alert monitor.
type Metrics struct {
	Cycles         *prometheus.CounterVec // labels: outcome={success,fetch_error,empty_body,parse_error}
	ItemsSkipped   prometheus.Counter
	AlertsExpired  prometheus.Counter
	AlertsActive   prometheus.Gauge
	AlertsNew      prometheus.Counter
	MonitorRunning prometheus.Gauge

	CycleDuration prometheus.Histogram
	FetchDuration prometheus.Histogram

	// Notification delivery, labels: sink, outcome={success,error}.
	Notifications *prometheus.CounterVec
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Cycles,
		m.ItemsSkipped,
		m.AlertsExpired,
		m.AlertsActive,
		m.AlertsNew,
		m.MonitorRunning,
		m.CycleDuration,
		m.FetchDuration,
		m.Notifications,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),
		ItemsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_skipped_total",
			Help:      "Feed items dropped because they could not be extracted.",
		}),
		AlertsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_expired_total",
			Help:      "Feed items dropped because their end time has passed.",
		}),
		AlertsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alerts_active",
			Help:      "Valid alerts in the most recent cycle.",
		}),
		AlertsNew: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_new_total",
			Help:      "Alerts not present in the preceding cycle.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 when the poll loop is active, 0 when shut down.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-parse-diff-notify cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the feed HTTP request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "New-alert notifications by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
