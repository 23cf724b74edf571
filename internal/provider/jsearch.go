// Package provider implements the HTTP client for the external job-listing
// search provider (a JSearch-compatible RapidAPI endpoint).
package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/nikhilcherian/jobscout/internal/listing"
	"github.com/nikhilcherian/jobscout/pkg/config"
	"github.com/nikhilcherian/jobscout/pkg/metrics"
)

const searchPath = "/search"

// Client queries the listing provider over HTTPS. Any failure, transport
// error, non-200 status, or unparsable body, degrades to zero listings and
// is logged; the caller never sees an error. Each call decodes into a fresh
// record set, so returned records are safe to mutate per request.
type Client struct {
	baseURL    string
	key        string
	host       string
	country    string
	language   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a provider client. Credential absence is deliberately
// not validated here: calls without credentials are rejected upstream and
// degrade to empty results, and the health check reports the gap.
func NewClient(cfg config.ProviderConfig, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		key:      cfg.Key,
		host:     cfg.Host,
		country:  cfg.Country,
		language: cfg.Language,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  slog.Default().With("component", "provider-client"),
		metrics: m,
	}
}

// Configured reports whether provider credentials are present.
func (c *Client) Configured() bool {
	return c.key != "" && c.host != ""
}

// Search fetches the first page of listings for the query. datePosted
// defaults to "all" and country to the configured locale when unset.
func (c *Client) Search(ctx context.Context, query, datePosted, country string) []listing.Record {
	if datePosted == "" {
		datePosted = "all"
	}
	if country == "" {
		country = c.country
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page", "1")
	q.Set("num_pages", "1")
	q.Set("date_posted", datePosted)
	q.Set("country", country)
	q.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath, nil)
	if err != nil {
		c.logger.Error("building provider request", "error", err)
		return nil
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("x-rapidapi-key", c.key)
	req.Header.Set("x-rapidapi-host", c.host)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe("error", start)
		c.logger.Warn("provider request failed, returning zero listings", "query", query, "error", err)
		return nil
	}
	defer resp.Body.Close()

	c.observe(statusClass(resp.StatusCode), start)
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("provider returned non-200, returning zero listings",
			"query", query, "status", resp.StatusCode)
		return nil
	}

	var body struct {
		Data []listing.Record `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("decoding provider response, returning zero listings", "error", err)
		return nil
	}

	c.logger.Debug("provider search completed", "query", query, "listings", len(body.Data))
	return body.Data
}

func (c *Client) observe(status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(status).Inc()
	c.metrics.ProviderLatency.Observe(time.Since(start).Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
