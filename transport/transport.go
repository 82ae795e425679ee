// Package transport executes HTTP requests against the AgentFlow control
// plane. It attaches auth, handles the JSON codec in both directions, and
// maps failures onto the agentflow error taxonomy.
//
// The blocking form (Do) and the future-returning form (Go) run the exact
// same code path, so their success and error semantics cannot drift.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Siddhant-K-code/agentflow-go"
)

const tracerName = "github.com/Siddhant-K-code/agentflow-go/transport"

// Client executes requests against a single control plane. It is stateless
// across calls except for the base URL and auth credential, both read-only
// after construction; concurrent calls on one Client are safe.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token attached to every request. An empty key
// means no Authorization header is sent.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each request. Zero leaves the underlying client's
// default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for the given base URL. The trailing slash is
// normalized away; an empty base URL is a ValidationError.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, &agentflow.ValidationError{Reason: "transport: base URL is required"}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: agentflow.DefaultConfig().Timeout},
		logger:  slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKey returns the configured credential so the event stream can share it.
func (c *Client) APIKey() string { return c.apiKey }

// CloseIdleConnections releases pooled connections held by the underlying
// HTTP client.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// Do executes one request and blocks until it completes or fails.
//
// body, when non-nil, is JSON-encoded as the request body. out, when
// non-nil, receives the JSON-decoded response body. The returned status is
// the HTTP status code for any response the server produced, including
// non-2xx ones (which also return a *TransportError).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, &agentflow.ValidationError{Reason: "transport: encode request body: " + err.Error()}
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "agentflow."+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", u),
		),
	)
	defer span.End()

	status, err := c.do(ctx, method, u, reqBody, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	return status, err
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, &agentflow.ValidationError{Reason: "transport: build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return 0, &agentflow.CancelledError{Cause: ctx.Err()}
		}
		return 0, &agentflow.NetworkError{Cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return resp.StatusCode, &agentflow.CancelledError{Cause: ctx.Err()}
		}
		return resp.StatusCode, &agentflow.NetworkError{Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &agentflow.TransportError{
			Status:  resp.StatusCode,
			RawBody: raw,
			Message: serverMessage(raw),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, &agentflow.DecodeError{Cause: err, Raw: raw}
		}
	}
	return resp.StatusCode, nil
}

// serverMessage extracts the control plane's {"error": string} message,
// falling back to the raw body text.
func serverMessage(raw []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
