// Package client provides the core Nuxeo HTTP client with basic
// authentication, request metrics, and fail-fast error handling.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for repository client operations.
var (
	nuxRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuxeo_requests_total",
		Help: "Total repository requests by endpoint and status",
	}, []string{"endpoint", "status"})

	nuxRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nuxeo_request_duration_seconds",
		Help:    "Repository request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

// Client is the low-level repository HTTP client. All calls are
// synchronous and fail fast: a non-success status surfaces as a
// *RequestError without retry or backoff.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration. Components never read
// process-wide state; everything they need is passed in here at
// construction time.
type Config struct {
	// BaseURL is the repository REST API root,
	// e.g. "http://localhost:8080/nuxeo/site/api/v1".
	BaseURL string

	// ImporterURL is the bulk file importer API root,
	// e.g. "http://localhost:8080/nuxeo/site/fileImporter".
	ImporterURL string

	// Credentials for HTTP basic authentication. Opaque to this
	// library; the repository decides what they mean.
	Username string
	Password string

	// DocumentSchemas is sent as the X-NXDocumentProperties header on
	// metadata reads and writes.
	DocumentSchemas string

	// Timeout bounds a single HTTP request. It does not bound waits
	// that span many requests (status polling, streaming); callers
	// bound those through their context.
	Timeout time.Duration
}

// DefaultConfig returns a configuration pointing at a local repository
// instance.
func DefaultConfig(username, password string) Config {
	return Config{
		BaseURL:         "http://localhost:8080/nuxeo/site/api/v1",
		ImporterURL:     "http://localhost:8080/nuxeo/site/fileImporter",
		Username:        username,
		Password:        password,
		DocumentSchemas: "dublincore",
		Timeout:         30 * time.Second,
	}
}

// New creates a new repository client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if cfg.ImporterURL != "" {
		if _, err := url.Parse(cfg.ImporterURL); err != nil {
			return nil, fmt.Errorf("parse importer URL: %w", err)
		}
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("username is required")
	}

	logger := log.With().Str("component", "nuxeo-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// BaseURL returns the configured REST API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// ImporterURL returns the configured file importer API root.
func (c *Client) ImporterURL() string {
	return c.config.ImporterURL
}

// DocumentSchemas returns the schemas requested on metadata calls.
func (c *Client) DocumentSchemas() string {
	return c.config.DocumentSchemas
}

// APIPath joins path elements onto the REST API root.
func (c *Client) APIPath(elem ...string) string {
	u, err := url.JoinPath(c.config.BaseURL, elem...)
	if err != nil {
		// BaseURL was validated in New; JoinPath cannot fail on it.
		return c.config.BaseURL
	}
	return u
}

// ImporterPath joins path elements onto the file importer root.
func (c *Client) ImporterPath(elem ...string) string {
	u, err := url.JoinPath(c.config.ImporterURL, elem...)
	if err != nil {
		return c.config.ImporterURL
	}
	return u
}

// Get performs a single authenticated GET. The caller owns the
// response body on success.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	return c.do(req)
}

// GetText performs a GET and returns the response body as a string.
// Used for endpoints that answer with a literal text body, such as the
// importer status endpoint.
func (c *Client) GetText(ctx context.Context, rawURL string, params url.Values) (string, error) {
	resp, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(body), nil
}

// GetJSON performs a GET and decodes the JSON response body into out.
// Extra headers are applied to the request.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// PutJSON performs a PUT with a JSON-encoded payload and decodes the
// JSON response body into out. A nil out discards the response.
func (c *Client) PutJSON(ctx context.Context, rawURL string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, rawURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// do executes a request with basic auth and metrics. Any status >= 400
// is closed and converted to a *RequestError; there is no retry.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path

	req.SetBasicAuth(c.config.Username, c.config.Password)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	nuxRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Repository request failed")
		nuxRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, fmt.Errorf("repository request: %w", err)
	}

	nuxRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Repository request error")
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			URL:        req.URL.String(),
		}
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("Repository request complete")

	return resp, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
