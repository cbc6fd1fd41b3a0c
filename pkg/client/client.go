// Package client provides the integration API HTTP transport: authenticated
// GETs, versioned headers, error classification and page fetching.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/auth"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/pagination"
	"github.com/ellucian-developer/ethos-integration-sdk-go/pkg/urls"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for integration API requests.
var (
	ethosRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethos_requests_total",
		Help: "Total integration API requests by HTTP status",
	}, []string{"status"})

	ethosRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ethos_request_duration_seconds",
		Help:    "Integration API request duration in seconds by method",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	ethosErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ethos_errors_total",
		Help: "Total integration API errors by class",
	}, []string{"class"})
)

// TokenSource supplies bearer tokens. *auth.Source implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// Config holds the client configuration.
type Config struct {
	// APIKey is exchanged for bearer tokens. Required.
	APIKey string

	// Region selects the hosted base URL.
	Region urls.Region

	// BaseURL overrides Region (self-hosted deployments, tests).
	BaseURL string

	// UserAgent is sent on every request.
	UserAgent string

	// Timeout bounds each HTTP request, the only latency bound on a page fetch.
	Timeout time.Duration

	// TokenLifetime is the requested bearer token lifetime.
	TokenLifetime time.Duration

	// TokenStore holds bearer tokens (default: in-process).
	TokenStore auth.Store
}

// DefaultConfig returns a configuration for the US region.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:        apiKey,
		Region:        urls.RegionUS,
		UserAgent:     "ethos-integration-sdk-go/0.1.0",
		Timeout:       30 * time.Second,
		TokenLifetime: auth.DefaultLifetime,
	}
}

// Client is the integration API client.
type Client struct {
	httpClient *http.Client
	urls       *urls.Builder
	tokens     TokenSource
	config     Config
	logger     zerolog.Logger
}

// Response is one completed GET.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.TokenLifetime <= 0 {
		cfg.TokenLifetime = auth.DefaultLifetime
	}

	logger := log.With().Str("component", "ethos-client").Logger()
	httpClient := &http.Client{Timeout: cfg.Timeout}
	builder := urls.New(cfg.Region, cfg.BaseURL)

	tokens, err := auth.NewSource(auth.Config{
		APIKey:     cfg.APIKey,
		URL:        builder.AuthWithExpiration(int(cfg.TokenLifetime / time.Minute)),
		Lifetime:   cfg.TokenLifetime,
		Store:      cfg.TokenStore,
		HTTPClient: httpClient,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create token source: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		urls:       builder,
		tokens:     tokens,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Do performs an authenticated request and reads the full body.
// Status codes >= 400 are returned as *APIError; nothing is retried.
func (c *Client) Do(req *http.Request) (*Response, error) {
	ctx := req.Context()

	startTime := time.Now()
	defer func() {
		ethosRequestDuration.WithLabelValues(req.Method).Observe(time.Since(startTime).Seconds())
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassAuth)).Inc()
		return nil, &APIError{ErrorClass: ErrorClassAuth, Message: "obtain bearer token", URL: req.URL.String(), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Msg("Executing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		class := classify(0, err)
		ethosErrorsTotal.WithLabelValues(string(class)).Inc()
		ethosRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, &APIError{ErrorClass: class, Message: "request failed", URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ethosErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, ErrorClass: ErrorClassNetwork, Message: "read body", URL: req.URL.String(), Err: err}
	}

	ethosRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if class := classify(resp.StatusCode, nil); class != "" {
		ethosErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("url", req.URL.String()).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Integration API request error")

		if class == ErrorClassAuth {
			// The next request exchanges the API key again.
			if err := c.tokens.Invalidate(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to invalidate bearer token")
			}
		}

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    errorMessage(resp.Status, body),
			URL:        req.URL.String(),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// errorMessage prefers a short response body over the bare status line.
func errorMessage(status string, body []byte) string {
	const maxLen = 256
	if len(body) == 0 {
		return status
	}
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return status + ": " + string(body)
}

// Get performs a GET with the given headers.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return c.Do(req)
}

// FetchPage implements pagination.PageFetcher.
func (c *Client) FetchPage(ctx context.Context, q pagination.PageQuery) (*pagination.Page, error) {
	resp, err := c.Get(ctx, c.urls.Page(q), AcceptHeaders(q.Version))
	if err != nil {
		return nil, err
	}
	return &pagination.Page{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		Offset:     q.Offset,
		Limit:      q.Limit,
	}, nil
}

// URLs returns the URL builder in use.
func (c *Client) URLs() *urls.Builder {
	return c.urls
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
