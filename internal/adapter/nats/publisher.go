package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/config"
	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	natsgo "github.com/nats-io/nats.go"
)

type conn interface {
	PublishMsg(m *natsgo.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher sends new-alert events to a NATS subject.
// It implements notify.Notifier.
type Publisher struct {
	conn    conn
	subject string
	logger  *slog.Logger
}

// Connect dials the configured NATS server and returns a ready publisher.
func Connect(cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	nc, err := natsgo.Connect(cfg.NATSURL,
		natsgo.Name("inmet-alerts"),
		natsgo.Timeout(10*time.Second),
		natsgo.MaxReconnects(-1),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	logger.Info("nats connected", "subject", cfg.NATSSubject)
	return newPublisher(nc, cfg.NATSSubject, logger), nil
}

func newPublisher(c conn, subject string, logger *slog.Logger) *Publisher {
	return &Publisher{conn: c, subject: subject, logger: logger}
}

// Notify publishes the event and flushes so delivery errors surface here
// rather than on a later cycle.
func (p *Publisher) Notify(ctx context.Context, event domain.AlertEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize alert event: %w", err)
	}
	msg := natsgo.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set("Nats-Msg-Id", event.EventID)
	msg.Header.Set("Event-Name", event.Name)

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish to %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	p.logger.Debug("alert event published", "subject", p.subject, "id", event.ID)
	return nil
}

// Close drains pending messages before closing the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
