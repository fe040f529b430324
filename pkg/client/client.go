// Package client provides the SWAPI HTTP client: a plain GET-and-decode
// fetcher for paginated resources with typed failures and metrics.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for SWAPI client operations.
var (
	swapiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_requests_total",
		Help: "Total SWAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	swapiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "swapi_request_duration_seconds",
		Help:    "SWAPI request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	swapiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapi_errors_total",
		Help: "Total SWAPI errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents connection and transport errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents requests that exceeded their deadline.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassCancelled represents requests whose context was cancelled.
	ErrorClassCancelled ErrorClass = "cancelled"

	// ErrorClassDecode represents bodies that are not valid JSON.
	ErrorClassDecode ErrorClass = "decode"
)

// DefaultBaseURL is the public SWAPI root.
const DefaultBaseURL = "https://swapi.dev/api"

// Client fetches and decodes SWAPI resources.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://swapi.dev/api".
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout bounds a whole request including the body read. 0 disables it.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration against the public API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new SWAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{},
		config:     cfg,
		logger:     logging.NewLogger("swapi-client"),
	}, nil
}

// ResourceURL builds the URL of one page of a resource.
func (c *Client) ResourceURL(resource Resource, page int) string {
	return fmt.Sprintf("%s/%s/?page=%d", c.config.BaseURL, resource, page)
}

// Get fetches rawURL and returns the decoded JSON value.
func (c *Client) Get(ctx context.Context, rawURL string) (any, error) {
	var v any
	if err := c.GetJSON(ctx, rawURL, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetJSON fetches rawURL, reads the full body and decodes it into v.
// The status code is not checked: a non-2xx response carrying a JSON body
// decodes like any other.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &RequestError{Class: ErrorClassNetwork, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		swapiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Executing SWAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(err)
		swapiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		swapiRequestsTotal.WithLabelValues(endpoint, string(errClass)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return &RequestError{Class: errClass, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	swapiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if resp.StatusCode >= 400 {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("SWAPI returned non-success status, decoding body anyway")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errClass := c.classifyError(err)
		swapiErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Reading response body failed")
		return &RequestError{
			Class:      errClass,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read body: %w", err),
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		swapiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("body_bytes", len(body)).
			Msg("Response body is not valid JSON")
		return &RequestError{
			Class:      ErrorClassDecode,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	return nil
}

// classifyError categorizes a transport error for observability and handling.
func (c *Client) classifyError(err error) ErrorClass {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorClassCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorClassTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorClassTimeout
	default:
		return ErrorClassNetwork
	}
}

// FetchPage fetches one page of resource and decodes its results as T.
func FetchPage[T any](ctx context.Context, c *Client, resource Resource, page int) (*Page[T], error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1 (got %d)", page)
	}

	var p Page[T]
	if err := c.GetJSON(ctx, c.ResourceURL(resource, page), &p); err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", resource, page, err)
	}
	return &p, nil
}

// FetchCharacters fetches one page of /people/.
func (c *Client) FetchCharacters(ctx context.Context, page int) (*Page[Character], error) {
	return FetchPage[Character](ctx, c, ResourcePeople, page)
}

// FetchPlanets fetches one page of /planets/.
func (c *Client) FetchPlanets(ctx context.Context, page int) (*Page[Planet], error) {
	return FetchPage[Planet](ctx, c, ResourcePlanets, page)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
