package wdc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/dst-index-etl/internal/domain"
	"github.com/couchcryptid/dst-index-etl/internal/observability"
)

// DefaultBaseURL is the WDC Kyoto service hosting the real-time Dst bulletins.
const DefaultBaseURL = "https://wdc.kugi.kyoto-u.ac.jp"

// Fetcher retrieves the raw text of one monthly bulletin.
type Fetcher interface {
	FetchMonth(ctx context.Context, m domain.Month) (string, error)
}

// Client fetches monthly Dst bulletins over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a WDC bulletin client. Pass an empty baseURL to use
// the public Kyoto service.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchMonth downloads the raw bulletin text for one month.
func (c *Client) FetchMonth(ctx context.Context, m domain.Month) (string, error) {
	url := c.bulletinURL(m)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.BulletinFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("fetch bulletin %s: %w", m, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.BulletinFetches.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch bulletin %s: status %d: %s", m, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.BulletinFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("read bulletin %s: %w", m, err)
	}

	c.metrics.BulletinFetches.WithLabelValues("success").Inc()
	c.metrics.BulletinFetchDuration.Observe(time.Since(start).Seconds())
	c.logger.Debug("bulletin fetched", "month", m.String(), "bytes", len(body))
	return string(body), nil
}

// bulletinURL builds the real-time bulletin path, e.g.
// /dst_realtime/202404/dst2404.for.request for April 2024.
func (c *Client) bulletinURL(m domain.Month) string {
	return fmt.Sprintf("%s/dst_realtime/%04d%02d/dst%02d%02d.for.request",
		c.baseURL, m.Year, int(m.Month), m.Year%100, int(m.Month))
}
