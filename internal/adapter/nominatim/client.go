package nominatim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/geocoding-service/internal/domain"
	"github.com/couchcryptid/geocoding-service/internal/observability"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Search/
// Sample request: https://nominatim.openstreetmap.org/search?q=Berlin&format=json&limit=1
const DefaultBaseURL = "https://nominatim.openstreetmap.org/search"

// errorBodyLimit caps how much of a non-2xx body is kept for the error message.
const errorBodyLimit = 512

// Client implements domain.Geocoder against a Nominatim-compatible search API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a geocoding client for baseURL. The URL is parsed once
// here and reused for every request.
func NewClient(baseURL, userAgent string, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be an absolute http(s) URL", baseURL)
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    u,
		userAgent:  userAgent,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// Resolve looks up location and returns the first match. Cancelling ctx
// aborts the in-flight request.
func (c *Client) Resolve(ctx context.Context, location string) (domain.Geocode, error) {
	start := time.Now()
	geocode, err := c.resolve(ctx, location)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = domain.ErrorKind(err)
	}
	c.metrics.GeocodeRequests.WithLabelValues(outcome).Inc()

	return geocode, err
}

func (c *Client) resolve(ctx context.Context, location string) (domain.Geocode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(location), nil)
	if err != nil {
		return domain.Geocode{}, &domain.TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Geocode{}, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The snippet only decorates the error message; a failed read leaves it short.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return domain.Geocode{}, &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Geocode{}, &domain.TransportError{Err: fmt.Errorf("read response body: %w", err)}
	}

	c.logger.DebugContext(ctx, "geocode response",
		"location", location,
		"status", resp.StatusCode,
		"body", string(body),
	)

	return parseFirstResult(location, body)
}

// searchURL adds the search parameters to the base URL, keeping any query
// parameters it already carries. Spaces are sent as %20.
func (c *Client) searchURL(location string) string {
	u := *c.baseURL
	q := u.Query()
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = strings.ReplaceAll(q.Encode(), "+", "%20")
	return u.String()
}
