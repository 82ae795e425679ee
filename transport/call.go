package transport

import (
	"context"
	"net/url"

	"github.com/Siddhant-K-code/agentflow-go"
)

// Call is an in-flight asynchronous request started by Go. The zero value is
// not usable.
type Call struct {
	done   chan struct{}
	status int
	err    error
}

// Go executes one request without blocking the caller. It runs the same
// code path as Do; only the awaiting differs. Cancelling ctx unblocks the
// in-flight request with a CancelledError.
func (c *Client) Go(ctx context.Context, method, path string, query url.Values, body, out any) *Call {
	call := &Call{done: make(chan struct{})}
	go func() {
		defer close(call.done)
		call.status, call.err = c.Do(ctx, method, path, query, body, out)
	}()
	return call
}

// Done returns a channel closed when the call has completed or failed.
func (call *Call) Done() <-chan struct{} { return call.done }

// Wait blocks until the call completes, or until ctx is cancelled, in which
// case it returns a CancelledError without waiting for the request (the
// request itself keeps the context it was started with).
func (call *Call) Wait(ctx context.Context) (int, error) {
	select {
	case <-call.done:
		return call.status, call.err
	case <-ctx.Done():
		return 0, &agentflow.CancelledError{Cause: ctx.Err()}
	}
}

// Status returns the HTTP status of a completed call.
func (call *Call) Status() int { return call.status }

// Err returns the error of a completed call, nil on success.
func (call *Call) Err() error { return call.err }
