package stream

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/backoff"
)

// State is the connection state of a subscription.
//
// Transitions: Connecting → Open → (Reconnecting → Connecting) repeated
// without bound, until the caller cancels, which reaches the terminal
// Cancelled state from anywhere. Caller-initiated close and cancellation
// are the same transition.
type State string

const (
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateReconnecting State = "reconnecting"
	StateCancelled    State = "cancelled"
)

// Option configures a subscription.
type Option func(*Subscription)

// WithAPIKey sets the bearer token sent on the WebSocket handshake.
func WithAPIKey(key string) Option {
	return func(s *Subscription) { s.apiKey = key }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Subscription) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBackoff sets the reconnect delay strategy.
func WithBackoff(strategy backoff.Strategy) Option {
	return func(s *Subscription) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(s *Subscription) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithStateFunc registers a callback invoked synchronously on every state
// transition, in transition order.
func WithStateFunc(fn func(State)) Option {
	return func(s *Subscription) { s.stateFn = fn }
}

// Subscription is one long-lived live-event stream for a single workflow.
// It owns its connection exclusively. Events are delivered on C in arrival
// order, at most once each, with no replay across reconnects.
type Subscription struct {
	url      string
	apiKey   string
	logger   *slog.Logger
	strategy backoff.Strategy
	buffer   int
	stateFn  func(State)

	ctx    context.Context
	cancel context.CancelFunc
	ch     chan Event
	done   chan struct{}

	mu    sync.Mutex
	conn  net.Conn
	state State
}

// Dial starts a subscription for workflowID against the control plane at
// baseURL. It returns immediately; the connection is established (and
// re-established) by the subscription's own loop. Cancel the passed context
// or call Cancel to terminate it.
func Dial(ctx context.Context, baseURL, workflowID string, opts ...Option) (*Subscription, error) {
	if workflowID == "" {
		return nil, &agentflow.ValidationError{Reason: "stream: workflow id is required"}
	}
	wsURL, err := liveURL(baseURL, workflowID)
	if err != nil {
		return nil, err
	}

	cfg := agentflow.DefaultConfig()
	s := &Subscription{
		url:      wsURL,
		logger:   slog.Default(),
		strategy: backoff.NewExponentialWithJitter(cfg.ReconnectInitial, cfg.ReconnectMax),
		buffer:   cfg.StreamBuffer,
		state:    StateConnecting,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.ch = make(chan Event, s.buffer)
	s.done = make(chan struct{})

	go s.run()
	return s, nil
}

// liveURL derives the WebSocket endpoint from the HTTP base URL. Any path
// prefix on the base URL is preserved, matching the transport's handling.
func liveURL(baseURL, workflowID string) (string, error) {
	if baseURL == "" {
		return "", &agentflow.ValidationError{Reason: "stream: base URL is required"}
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", &agentflow.ValidationError{Reason: "stream: invalid base URL: " + err.Error()}
	}
	var scheme string
	switch u.Scheme {
	case "http", "ws":
		scheme = "ws"
	case "https", "wss":
		scheme = "wss"
	default:
		return "", &agentflow.ValidationError{Reason: "stream: unsupported scheme " + u.Scheme}
	}
	prefix := strings.TrimRight(u.EscapedPath(), "/")
	return scheme + "://" + u.Host + prefix +
		"/api/v1/workflows/" + url.PathEscape(workflowID) + "/live", nil
}

// C returns the event channel. It is closed when the subscription reaches
// its terminal state; no events are delivered after cancellation.
func (s *Subscription) C() <-chan Event { return s.ch }

// Done returns a channel closed once the subscription has fully terminated:
// the connection loop has exited and C is closed. Unlike draining C, waiting
// on Done does not consume events.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// State returns the current connection state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel terminates the subscription: the underlying connection is closed
// immediately, the event channel is closed, and the state becomes Cancelled.
// Safe to call from any state, any number of times.
func (s *Subscription) Cancel() {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.mu.Unlock()
}

// Close cancels the subscription. It exists so a Subscription can sit
// behind a defer like any other resource.
func (s *Subscription) Close() error {
	s.Cancel()
	return nil
}

// setState records a transition and notifies the observer. Terminal state
// wins over any concurrent transition.
func (s *Subscription) setState(next State) bool {
	s.mu.Lock()
	if s.state == StateCancelled {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.mu.Unlock()
	if s.stateFn != nil {
		s.stateFn(next)
	}
	return true
}

// run drives the Connecting → Open → Reconnecting loop until cancelled.
// Reconnect attempts are unbounded: the stream is long-lived infrastructure,
// so liveness wins over giving up. The attempt counter resets after every
// successful open.
func (s *Subscription) run() {
	defer func() {
		s.setStateCancelled()
		close(s.ch)
		close(s.done)
	}()

	attempt := 0
	for {
		if s.ctx.Err() != nil {
			return
		}
		if !s.setState(StateConnecting) {
			return
		}

		conn, err := s.dial()
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			attempt++
			s.logger.Warn("stream: connect failed",
				slog.String("url", s.url),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
			if !s.pause(attempt) {
				return
			}
			continue
		}

		if !s.setState(StateOpen) {
			_ = conn.Close()
			return
		}
		attempt = 0

		readErr := s.readFrames(conn)
		_ = conn.Close()
		s.clearConn()

		if s.ctx.Err() != nil {
			return
		}
		attempt++
		s.logger.Info("stream: connection lost, reconnecting",
			slog.String("url", s.url),
			slog.String("cause", readErr.Error()),
		)
		if !s.setState(StateReconnecting) {
			return
		}
		if !s.pause(attempt) {
			return
		}
	}
}

func (s *Subscription) setStateCancelled() {
	s.mu.Lock()
	done := s.state == StateCancelled
	s.state = StateCancelled
	s.mu.Unlock()
	if !done && s.stateFn != nil {
		s.stateFn(StateCancelled)
	}
}

// dial opens the WebSocket and records the connection so Cancel can close
// it out from under a blocked read.
func (s *Subscription) dial() (net.Conn, error) {
	dialer := ws.Dialer{}
	if s.apiKey != "" {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+s.apiKey)
		dialer.Header = ws.HandshakeHeaderHTTP(header)
	}

	conn, _, _, err := dialer.Dial(s.ctx, s.url)
	if err != nil {
		return nil, err
	}

	// Cancel closes s.conn under s.mu; a cancellation landing between the
	// handshake and this point would find nothing to close, so re-check the
	// context under the same lock before handing the connection out.
	s.mu.Lock()
	if err := s.ctx.Err(); err != nil {
		s.mu.Unlock()
		_ = conn.Close()
		return nil, err
	}
	s.conn = conn
	s.mu.Unlock()
	return conn, nil
}

func (s *Subscription) clearConn() {
	s.mu.Lock()
	s.conn = nil
	s.mu.Unlock()
}

// readFrames decodes and delivers frames until the connection drops, a
// frame fails to decode, or the subscription is cancelled. A bad frame
// delivers one Err-carrying event and ends only this connection attempt;
// the reconnect loop survives it.
func (s *Subscription) readFrames(conn net.Conn) error {
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			return err
		}

		evt, decodeErr := decodeEvent(data)
		if decodeErr != nil {
			s.logger.Warn("stream: dropping undecodable frame",
				slog.String("error", decodeErr.Error()),
			)
			s.deliver(Event{Type: EventUnknown, Timestamp: time.Now().UTC(), Err: decodeErr})
			return decodeErr
		}
		if !s.deliver(evt) {
			return s.ctx.Err()
		}
	}
}

// deliver hands one event to the consumer. The send blocks when the
// consumer lags (pull-based backpressure) but always yields to
// cancellation. Returns false when the subscription was cancelled.
func (s *Subscription) deliver(evt Event) bool {
	select {
	case s.ch <- evt:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// pause sleeps for the backoff delay of the given attempt, cancellation
// aware. Returns false when the subscription was cancelled.
func (s *Subscription) pause(attempt int) bool {
	delay := s.strategy.Delay(attempt)
	if delay <= 0 {
		return s.ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}
