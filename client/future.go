package client

import (
	"context"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

// Future is the handle to an operation started by one of the Async methods.
// It resolves exactly once; reading the result any number of times after
// that is safe.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// spawn runs fn off the caller's goroutine and resolves the future with its
// result. fn is always one of the Client's shared unexported operation
// methods, so async results cannot differ from blocking ones.
func spawn[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Done returns a channel closed when the future has resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result blocks until the future resolves and returns its outcome.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Wait is Result with a bail-out: when ctx is cancelled first it returns a
// CancelledError without waiting for the operation (which keeps the context
// it was started with).
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, &agentflow.CancelledError{Cause: ctx.Err()}
	}
}

// ── Operations (async form) ────────────────────────

// DeployAsync is Deploy without blocking the caller.
func (c *Client) DeployAsync(ctx context.Context, def *workflow.Definition) *Future[*workflow.Workflow] {
	return spawn(func() (*workflow.Workflow, error) { return c.deploy(ctx, def) })
}

// GetAsync is Get without blocking the caller.
func (c *Client) GetAsync(ctx context.Context, id string) *Future[*workflow.Workflow] {
	return spawn(func() (*workflow.Workflow, error) { return c.get(ctx, id) })
}

// StatusAsync is Status without blocking the caller.
func (c *Client) StatusAsync(ctx context.Context, id string) *Future[*workflow.WorkflowStatus] {
	return spawn(func() (*workflow.WorkflowStatus, error) { return c.status(ctx, id) })
}

// ListAsync is List without blocking the caller.
func (c *Client) ListAsync(ctx context.Context) *Future[[]workflow.Workflow] {
	return spawn(func() ([]workflow.Workflow, error) { return c.list(ctx) })
}

// DeleteAsync is Delete without blocking the caller. The future resolves to
// struct{} on success.
func (c *Client) DeleteAsync(ctx context.Context, id string) *Future[struct{}] {
	return spawn(func() (struct{}, error) { return struct{}{}, c.delete(ctx, id) })
}

// LogsAsync is Logs without blocking the caller.
func (c *Client) LogsAsync(ctx context.Context, id, agent string) *Future[[]workflow.LogEntry] {
	return spawn(func() ([]workflow.LogEntry, error) { return c.logs(ctx, id, agent) })
}
