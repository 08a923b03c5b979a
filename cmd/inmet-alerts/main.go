package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/inmet-alerts-service/internal/adapter/apprise"
	"github.com/couchcryptid/inmet-alerts-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/inmet-alerts-service/internal/adapter/inmet"
	kafkaadapter "github.com/couchcryptid/inmet-alerts-service/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/inmet-alerts-service/internal/adapter/mqtt"
	natsadapter "github.com/couchcryptid/inmet-alerts-service/internal/adapter/nats"
	"github.com/couchcryptid/inmet-alerts-service/internal/config"
	"github.com/couchcryptid/inmet-alerts-service/internal/monitor"
	"github.com/couchcryptid/inmet-alerts-service/internal/notify"
	"github.com/couchcryptid/inmet-alerts-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

type closer struct {
	name string
	io.Closer
}

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks, closers := buildSinks(ctx, cfg, logger)
	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name)
	}
	logger.Info("notification sinks configured", "sinks", names)

	fetcher := inmet.NewClient(cfg.FeedURL, logger)
	fanout := notify.NewFanout(logger, metrics, sinks...)
	m := monitor.New(fetcher, fanout, clockwork.NewRealClock(), cfg.DisplayLocation, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, m, m, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start feed monitor.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := m.Run(ctx, cfg.PollInterval); err != nil {
			logger.Error("monitor error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("monitor did not stop before shutdown timeout")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "sink", c.name, "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// buildSinks enables the log sink plus every sink whose address is configured.
// A sink that fails to connect is logged and left out.
func buildSinks(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]notify.Sink, []closer) {
	sinks := []notify.Sink{{Name: "log", Notifier: notify.NewLog(logger)}}
	var closers []closer

	if len(cfg.KafkaBrokers) > 0 {
		p := kafkaadapter.NewPublisher(cfg, logger)
		sinks = append(sinks, notify.Sink{Name: "kafka", Notifier: p})
		closers = append(closers, closer{"kafka", p})
	}

	if cfg.MQTTBroker != "" {
		p := mqttadapter.NewPublisher(cfg, logger)
		if err := p.Connect(ctx); err != nil {
			logger.Error("mqtt sink disabled", "broker", cfg.MQTTBroker, "error", err)
		} else {
			sinks = append(sinks, notify.Sink{Name: "mqtt", Notifier: p})
			closers = append(closers, closer{"mqtt", p})
		}
	}

	if cfg.NATSURL != "" {
		p, err := natsadapter.Connect(cfg, logger)
		if err != nil {
			logger.Error("nats sink disabled", "url", cfg.NATSURL, "error", err)
		} else {
			sinks = append(sinks, notify.Sink{Name: "nats", Notifier: p})
			closers = append(closers, closer{"nats", p})
		}
	}

	if cfg.AppriseURL != "" {
		sinks = append(sinks, notify.Sink{Name: "apprise", Notifier: apprise.NewClient(cfg.AppriseURL, logger)})
	}

	return sinks, closers
}
