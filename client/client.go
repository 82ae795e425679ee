// Package client provides the AgentFlow client facade: every control-plane
// operation in one coherent API, offered in a blocking and a future-based
// form with identical validation and error-translation semantics.
//
// Usage:
//
//	c, err := client.New("http://localhost:8080",
//	    client.WithAPIKey("af_..."),
//	)
//	defer c.Close()
//
//	def, err := workflow.LoadDefinition("workflow.yaml")
//	wf, err := c.Deploy(ctx, def)
//
//	sub, err := c.Watch(ctx, wf.ID)
//	for evt := range sub.C() {
//	    fmt.Printf("%s: %s\n", evt.Type, evt.Message)
//	}
package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/backoff"
	"github.com/Siddhant-K-code/agentflow-go/stream"
	"github.com/Siddhant-K-code/agentflow-go/transport"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

// Client talks to one AgentFlow control plane. The base URL and credential
// are read-only after construction; concurrent outstanding calls on one
// Client are permitted.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	strategy   backoff.Strategy
	cfg        agentflow.Config

	transport *transport.Client

	mu     sync.Mutex
	subs   map[*stream.Subscription]struct{}
	closed bool
}

// New creates a Client for the control plane at baseURL. The trailing slash
// is normalized; an empty base URL is a ValidationError.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:  baseURL,
		logger:   slog.Default(),
		strategy: backoff.DefaultStrategy(),
		cfg:      agentflow.DefaultConfig(),
		subs:     make(map[*stream.Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	topts := []transport.Option{
		transport.WithAPIKey(c.apiKey),
		transport.WithTimeout(c.cfg.Timeout),
		transport.WithLogger(c.logger),
	}
	if c.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(c.httpClient))
	}
	t, err := transport.New(baseURL, topts...)
	if err != nil {
		return nil, err
	}
	c.transport = t
	c.baseURL = t.BaseURL()
	return c, nil
}

// Close cancels all open subscriptions and releases idle connections.
// Idempotent; the Client must not be used afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := make([]*stream.Subscription, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	c.transport.CloseIdleConnections()
	return nil
}

// ── Operations (blocking form) ─────────────────────

// Deploy sends a workflow definition to the control plane and returns the
// created Workflow. The definition is validated before any network call.
func (c *Client) Deploy(ctx context.Context, def *workflow.Definition) (*workflow.Workflow, error) {
	return c.deploy(ctx, def)
}

// Get retrieves a workflow by its server-issued id.
func (c *Client) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	return c.get(ctx, id)
}

// Status retrieves the current execution status of a workflow.
func (c *Client) Status(ctx context.Context, id string) (*workflow.WorkflowStatus, error) {
	return c.status(ctx, id)
}

// List retrieves all workflows known to the control plane.
func (c *Client) List(ctx context.Context) ([]workflow.Workflow, error) {
	return c.list(ctx)
}

// Delete removes a workflow. A missing workflow is a NotFoundError.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.delete(ctx, id)
}

// Logs retrieves log entries for a workflow, optionally filtered to one
// agent. Ordering is only guaranteed within a single agent's entries.
func (c *Client) Logs(ctx context.Context, id, agent string) ([]workflow.LogEntry, error) {
	return c.logs(ctx, id, agent)
}

// Watch opens the live event stream for a workflow. The subscription shares
// the client's base URL, credential, and reconnect policy; extra stream
// options may be layered on top.
func (c *Client) Watch(ctx context.Context, id string, opts ...stream.Option) (*stream.Subscription, error) {
	base := []stream.Option{
		stream.WithAPIKey(c.apiKey),
		stream.WithLogger(c.logger),
		stream.WithBackoff(c.strategy),
		stream.WithBuffer(c.cfg.StreamBuffer),
	}
	sub, err := stream.Dial(ctx, c.baseURL, id, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Cancel()
		return nil, &agentflow.ValidationError{Reason: "client is closed"}
	}
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	// Drop the subscription once it terminates, so long-lived clients that
	// Watch repeatedly do not accumulate dead entries.
	go func() {
		<-sub.Done()
		c.mu.Lock()
		if c.subs != nil {
			delete(c.subs, sub)
		}
		c.mu.Unlock()
	}()
	return sub, nil
}

// ── Shared implementation ──────────────────────────
//
// Every operation, blocking or async, funnels through one of the unexported
// methods below, so the two modes cannot diverge in behavior.

func (c *Client) deploy(ctx context.Context, def *workflow.Definition) (*workflow.Workflow, error) {
	if def == nil {
		return nil, &agentflow.ValidationError{Reason: "definition is required"}
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	status, err := c.transport.Do(ctx, http.MethodPost, "/api/v1/workflows", nil, def, &raw)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, &agentflow.TransportError{
			Status:  status,
			RawBody: raw,
			Message: "deploy: expected 201 Created",
		}
	}
	return workflow.ParseWorkflow(raw)
}

func (c *Client) get(ctx context.Context, id string) (*workflow.Workflow, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if _, err := c.transport.Do(ctx, http.MethodGet, workflowPath(id), nil, nil, &raw); err != nil {
		return nil, translateNotFound(err, id)
	}
	return workflow.ParseWorkflow(raw)
}

func (c *Client) status(ctx context.Context, id string) (*workflow.WorkflowStatus, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if _, err := c.transport.Do(ctx, http.MethodGet, workflowPath(id)+"/status", nil, nil, &raw); err != nil {
		return nil, translateNotFound(err, id)
	}
	return workflow.ParseStatus(raw)
}

func (c *Client) list(ctx context.Context) ([]workflow.Workflow, error) {
	var envelope struct {
		Workflows []json.RawMessage `json:"workflows"`
	}
	if _, err := c.transport.Do(ctx, http.MethodGet, "/api/v1/workflows", nil, nil, &envelope); err != nil {
		return nil, err
	}

	workflows := make([]workflow.Workflow, 0, len(envelope.Workflows))
	for _, raw := range envelope.Workflows {
		wf, err := workflow.ParseWorkflow(raw)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	return workflows, nil
}

func (c *Client) delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, err := c.transport.Do(ctx, http.MethodDelete, workflowPath(id), nil, nil, nil); err != nil {
		return translateNotFound(err, id)
	}
	return nil
}

func (c *Client) logs(ctx context.Context, id, agent string) ([]workflow.LogEntry, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	var query url.Values
	if agent != "" {
		query = url.Values{"agent": []string{agent}}
	}

	var envelope struct {
		Logs []json.RawMessage `json:"logs"`
	}
	if _, err := c.transport.Do(ctx, http.MethodGet, workflowPath(id)+"/logs", query, nil, &envelope); err != nil {
		return nil, translateNotFound(err, id)
	}

	entries := make([]workflow.LogEntry, 0, len(envelope.Logs))
	for _, raw := range envelope.Logs {
		entry, err := workflow.ParseLogEntry(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// workflowPath builds the REST path for one workflow. The id is escaped so
// a hostile or confused control plane cannot hand out ids that re-route
// requests.
func workflowPath(id string) string {
	return "/api/v1/workflows/" + url.PathEscape(id)
}

// requireID rejects an empty workflow id before any network call happens.
func requireID(id string) error {
	if id == "" {
		return &agentflow.ValidationError{Reason: "workflow id is required"}
	}
	return nil
}

// translateNotFound turns a 404 from a lookup-by-id operation into a
// NotFoundError carrying the id. Every other error passes through.
func translateNotFound(err error, id string) error {
	var terr *agentflow.TransportError
	if errors.As(err, &terr) && terr.Status == http.StatusNotFound {
		return &agentflow.NotFoundError{WorkflowID: id}
	}
	return err
}
