package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edgewatchlabs/edgewatch/internal/matcher"
)

const maxResponseBodySize = 1 << 20 // 1MB

// bodyPreviewSize bounds how much of a non-JSON body is logged.
const bodyPreviewSize = 200

// connection pooling limits to prevent resource exhaustion on long runs
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const (
	requestTimeout    = 10 * time.Second
	defaultRetryAfter = 60 * time.Second
)

// userAgent identifies edgewatch to the upstream status API.
const userAgent = "edgewatch/1.0 (+https://github.com/edgewatchlabs/edgewatch)"

// componentsResponse mirrors the status-page feed shape. Fields beyond
// name and status exist upstream but are ignored here.
type componentsResponse struct {
	Components []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"components"`
}

// Client fetches the component list from a status-page endpoint.
//
// Client never lets a single failed poll escape as an error: network
// failures, bad status codes, unexpected content types, and parse errors
// are all logged and collapse to an empty component list, which the
// watcher treats as "no data this cycle". Rate limiting (HTTP 429) is
// honored by sleeping the advertised Retry-After before returning empty.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a [Client] polling the given components URL.
//
// The underlying HTTP client uses connection pooling tuned for a single
// host polled on a long interval. Request timeouts are applied per call
// via context rather than a global client timeout.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		url:    url,
		logger: logger,
	}
}

// Fetch performs one GET against the components endpoint and returns the
// component records it contained.
//
// An empty result is a valid, expected outcome: it means either the feed
// had no components or this cycle's fetch failed (the difference is only
// visible in the logs). On HTTP 429 Fetch sleeps the Retry-After hint
// (default 60s) before returning, so the caller does not need a separate
// backoff; the sleep is cut short if ctx is cancelled.
func (c *Client) Fetch(ctx context.Context) []matcher.Component {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.url, nil)
	if err != nil {
		c.logger.Error("failed to create components request", "url", c.url, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch components", "url", c.url, "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Warn("rate limited by status API",
			"retry_after", retryAfter.String(),
		)
		c.sleep(ctx, retryAfter)
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("unexpected status from components endpoint",
			"url", c.url,
			"status_code", resp.StatusCode,
		)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		c.logger.Error("failed to read components response", "url", c.url, "error", err)
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "json") {
		c.logger.Error("components endpoint returned non-JSON content",
			"content_type", contentType,
			"body_preview", preview(body),
		)
		return nil
	}

	var parsed componentsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("failed to parse components response",
			"url", c.url,
			"error", err,
			"body_preview", preview(body),
		)
		return nil
	}

	components := make([]matcher.Component, 0, len(parsed.Components))
	for _, comp := range parsed.Components {
		components = append(components, matcher.Component{
			Name:   comp.Name,
			Status: comp.Status,
		})
	}

	c.logger.Debug("fetched components", "count", len(components))
	return components
}

// Close closes idle connections in the client's pool.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// sleep blocks for d or until ctx is cancelled, whichever comes first.
func (c *Client) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// parseRetryAfter interprets a Retry-After header as whole seconds,
// falling back to the default when absent or malformed.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// preview returns a bounded, printable prefix of a response body for logs.
func preview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyPreviewSize {
		return fmt.Sprintf("%s... (%d bytes total)", s[:bodyPreviewSize], len(body))
	}
	return s
}
