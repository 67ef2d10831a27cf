// Package snaptrade is a client for the SnapTrade brokerage-aggregation API.
//
// Every request is signed: the body, path and query are folded into one
// canonical JSON string and signed with HMAC-SHA256 under the partner's
// consumer key. The signature travels in the Signature header.
//
//	c, err := snaptrade.NewClient(clientID, consumerKey)
//	if err != nil {
//	    return err
//	}
//	resp, err := c.ListAccounts(ctx, snaptrade.User{ID: "user-1", Secret: secret})
package snaptrade

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/snaptrade-go/internal/signing"
)

const (
	// DefaultBaseURL is the production API host.
	DefaultBaseURL = "https://api.snaptrade.com"

	// DefaultTimeout bounds each call unless overridden.
	DefaultTimeout = 30 * time.Second

	userAgent  = "snaptrade-go"
	tracerName = "github.com/tjfontaine/snaptrade-go/pkg/snaptrade"
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client. Its transport is wrapped with
// request logging; the client itself is not modified.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock replaces the clock used for the signed timestamp.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for request logs. The default discards.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracerProvider sets the provider for call spans. Defaults to the
// global provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// Client signs and sends SnapTrade API requests. It is immutable after
// NewClient returns and safe for concurrent use.
type Client struct {
	clientID       string
	signer         *signing.Signer
	baseURL        string
	timeout        time.Duration
	now            func() time.Time
	httpClient     *http.Client
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

// NewClient creates a client for one partner. consumerKey is only used as
// the signing key and is never sent or logged.
func NewClient(clientID, consumerKey string, opts ...ClientOption) (*Client, error) {
	if clientID == "" {
		return nil, errors.New("client ID required")
	}
	signer, err := signing.NewSigner(consumerKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}

	c := &Client{
		clientID:   clientID,
		signer:     signer,
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
		now:        time.Now,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}
	c.tracer = c.tracerProvider.Tracer(tracerName)

	hc := *c.httpClient
	hc.Transport = newLoggingTransport(hc.Transport, c.logger)
	c.httpClient = &hc

	return c, nil
}

// ClientID returns the partner client ID the client signs for.
func (c *Client) ClientID() string {
	return c.clientID
}

// BaseURL returns the API host requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}
