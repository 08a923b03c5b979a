package inmet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/inmet-alerts-service/internal/domain"
)

// maxBodyBytes caps the feed download. The live feed is well under 1 MiB.
const maxBodyBytes = 16 << 20

// Client downloads the INMET alerts RSS feed. It implements monitor.Fetcher.
type Client struct {
	feedURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client. The transport defaults apply; there is no
// client-side timeout, so callers bound the request through the context.
func NewClient(feedURL string, logger *slog.Logger) *Client {
	return &Client{
		feedURL:    feedURL,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// URL returns the feed address the client polls.
func (c *Client) URL() string { return c.feedURL }

// Fetch performs a single GET of the feed. Transport failures and non-2xx
// responses are returned as *domain.FetchError.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.1")
	req.Header.Set("User-Agent", "inmet-alerts-service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.FetchError{URL: c.feedURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.FetchError{URL: c.feedURL, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("feed fetched", "url", c.feedURL, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}
