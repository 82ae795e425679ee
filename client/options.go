package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Siddhant-K-code/agentflow-go/backoff"
)

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token attached to every request and to the
// live-stream handshake. The empty string sends no auth header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each HTTP request. It does not apply to the live
// stream, which is long-lived by design.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger shared by the transport and the
// stream subscriber.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBackoff sets the reconnect delay strategy for subscriptions opened
// via Watch.
func WithBackoff(strategy backoff.Strategy) Option {
	return func(c *Client) {
		if strategy != nil {
			c.strategy = strategy
		}
	}
}

// WithStreamBuffer sets the event channel capacity for subscriptions.
func WithStreamBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.cfg.StreamBuffer = n
		}
	}
}
