package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/config"
	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces new-alert events to a Kafka topic.
// It implements notify.Notifier.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured alert topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Notify publishes one event keyed by alert ID so every event for the same
// alert lands on the same partition.
func (p *Publisher) Notify(ctx context.Context, event domain.AlertEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write alert event: %w", err)
	}
	p.logger.Debug("alert event published", "topic", p.writer.Topic, "id", event.ID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an AlertEvent into a Kafka message.
func serializeToMessage(event domain.AlertEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: "event_name", Value: []byte(event.Name)},
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "severity", Value: []byte(event.Severity)},
			{Key: "emitted_at", Value: []byte(event.EmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
