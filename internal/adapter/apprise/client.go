package apprise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
)

const requestTimeout = 10 * time.Second

// Client posts new-alert notifications to an Apprise API endpoint such as
// http://apprise:8000/notify/inmet. It implements notify.Notifier.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

type payload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Format string `json:"format"`
}

func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

func (c *Client) Notify(ctx context.Context, event domain.AlertEvent) error {
	data, err := json.Marshal(formatMessage(event))
	if err != nil {
		return fmt.Errorf("marshal apprise payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create apprise request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send apprise request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("apprise api error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	c.logger.Debug("apprise notification sent", "id", event.ID)
	return nil
}

func formatMessage(event domain.AlertEvent) payload {
	title := fmt.Sprintf("INMET: %s (%s)", event.Status, event.Severity)

	var b strings.Builder
	if event.Description != "" {
		b.WriteString(event.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Evento: %s\n", event.Event)
	fmt.Fprintf(&b, "Início: %s\n", event.Start)
	fmt.Fprintf(&b, "Fim: %s\n", event.End)
	fmt.Fprintf(&b, "Área: %s", event.Area)

	return payload{Title: title, Body: b.String(), Format: "text"}
}
