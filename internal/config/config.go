package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve in minimal images

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFeedURL is the public INMET alerts RSS feed.
const DefaultFeedURL = "https://apiprevmet3.inmet.gov.br/avisos/rss"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedURL         string
	PollInterval    time.Duration
	DisplayLocation *time.Location
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Notification sinks. Each is disabled when its address is empty.
	KafkaBrokers []string
	KafkaTopic   string

	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string

	NATSURL     string
	NATSSubject string

	AppriseURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pollInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("POLL_INTERVAL", "5m"))
	if err != nil || pollInterval <= 0 {
		return nil, errors.New("invalid POLL_INTERVAL")
	}

	location, err := time.LoadLocation(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		FeedURL:         sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		PollInterval:    pollInterval,
		DisplayLocation: location,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "inmet-alerts"),

		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTClientID: sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "inmet-alerts"),
		MQTTTopic:    sharedcfg.EnvOrDefault("MQTT_TOPIC", "inmet/alertas/novo"),
		MQTTUsername: os.Getenv("MQTT_USERNAME"),
		MQTTPassword: os.Getenv("MQTT_PASSWORD"),

		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: sharedcfg.EnvOrDefault("NATS_SUBJECT", "inmet.alerta_novo"),

		AppriseURL: os.Getenv("APPRISE_URL"),
	}

	if err := validateURL("FEED_URL", cfg.FeedURL); err != nil {
		return nil, err
	}
	if cfg.AppriseURL != "" {
		if err := validateURL("APPRISE_URL", cfg.AppriseURL); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid %s: %q", name, raw)
	}
	return nil
}
