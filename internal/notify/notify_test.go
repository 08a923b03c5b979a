package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	"github.com/couchcryptid/inmet-alerts-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(context.Context, domain.AlertEvent) error {
	s.calls++
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent() domain.AlertEvent {
	alert := domain.Alert{
		ID:        "alert-1",
		Status:    "Chuva Intensa",
		Severity:  "Perigo",
		Area:      "Sul Goiano",
		StartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	return domain.NewAlertEvent(alert, time.UTC, time.Date(2024, 1, 1, 10, 5, 0, 0, time.UTC))
}

func TestFanout_DeliversToEverySink(t *testing.T) {
	kafka, mqtt := &stubNotifier{}, &stubNotifier{}
	metrics := observability.NewMetricsForTesting()
	f := NewFanout(discardLogger(), metrics, Sink{"kafka", kafka}, Sink{"mqtt", mqtt})

	require.NoError(t, f.Notify(context.Background(), testEvent()))

	assert.Equal(t, 1, kafka.calls)
	assert.Equal(t, 1, mqtt.calls)
	assert.Equal(t, []string{"kafka", "mqtt"}, f.Sinks())
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Notifications.WithLabelValues("kafka", "success")), 0)
}

func TestFanout_FailingSinkDoesNotBlockOthers(t *testing.T) {
	broken := &stubNotifier{err: errors.New("connection refused")}
	healthy := &stubNotifier{}
	metrics := observability.NewMetricsForTesting()
	f := NewFanout(discardLogger(), metrics, Sink{"nats", broken}, Sink{"log", healthy})

	err := f.Notify(context.Background(), testEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats: connection refused")
	assert.Equal(t, 1, healthy.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Notifications.WithLabelValues("nats", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Notifications.WithLabelValues("log", "success")), 0)
}

func TestFanout_NoSinks(t *testing.T) {
	f := NewFanout(discardLogger(), observability.NewMetricsForTesting())
	assert.NoError(t, f.Notify(context.Background(), testEvent()))
	assert.Empty(t, f.Sinks())
}

func TestLog_Notify(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, l.Notify(context.Background(), testEvent()))

	out := buf.String()
	assert.Contains(t, out, `msg="new alert"`)
	assert.Contains(t, out, "event=inmet_alerta_novo")
	assert.Contains(t, out, "id=alert-1")
	assert.Contains(t, out, "severity=Perigo")
	assert.Contains(t, out, "end=Indefinido")
}
