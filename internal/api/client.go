// Package api provides the HTTP client for the chat service.
package api

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/chatfront/internal/models"
)

// Body size limits
const (
	maxErrorBody   = 4 << 10
	maxSuccessBody = 8 << 20
)

// HTTPDoer is the part of tls_client.HttpClient the client uses
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the chat service at a configured base URL
type Client struct {
	endpoint   string
	httpClient HTTPDoer
	timeout    time.Duration
	profile    profiles.ClientProfile
	logger     *slog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClientProfile sets the TLS fingerprint profile
func WithClientProfile(p profiles.ClientProfile) ClientOption {
	return func(c *Client) {
		c.profile = p
	}
}

// WithHTTPDoer replaces the underlying transport, mainly for tests
func WithHTTPDoer(d HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// WithLogger sets the logger for request tracing
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the service rooted at endpoint
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		endpoint = models.DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("endpoint must be an http(s) URL: %s", endpoint)
	}

	client := &Client{
		endpoint: endpoint,
		timeout:  300 * time.Second,
		profile:  profiles.Chrome_120,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(client.profile),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the base URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) url(path string) string {
	return c.endpoint + path
}

func setHeaders(req *http.Request) {
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
}

// readBody reads at most limit bytes and closes the body
func readBody(resp *http.Response, limit int64) ([]byte, error) {
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()
	if resp == nil || resp.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
