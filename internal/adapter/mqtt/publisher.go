package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/config"
	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qosAtLeastOnce = 1
	connectTimeout = 10 * time.Second
)

// Publisher sends new-alert events to an MQTT topic, where Home Assistant
// automations can subscribe to them. It implements notify.Notifier.
type Publisher struct {
	client pahomqtt.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a publisher for the configured broker. Call Connect
// before publishing.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return newPublisher(pahomqtt.NewClient(opts), cfg.MQTTTopic, logger)
}

func newPublisher(client pahomqtt.Client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, logger: logger}
}

// Connect dials the broker and waits for the handshake.
func (p *Publisher) Connect(ctx context.Context) error {
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.logger.Info("mqtt connected", "topic", p.topic)
	return nil
}

// Notify publishes the event as JSON with QoS 1.
func (p *Publisher) Notify(ctx context.Context, event domain.AlertEvent) error {
	if !p.client.IsConnected() {
		return errors.New("mqtt: not connected")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize alert event: %w", err)
	}
	if err := wait(ctx, p.client.Publish(p.topic, qosAtLeastOnce, false, payload)); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects, allowing in-flight messages a short grace period.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, token pahomqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
