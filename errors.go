package agentflow

import (
	"errors"
	"fmt"
)

// The error taxonomy is a closed set: every error returned by this module is
// (or wraps) one of the types below. NotFoundError is the only kind callers
// are expected to routinely branch on; the rest typically propagate to
// top-level failure reporting.

// NetworkError reports that the control plane could not be reached or the
// connection timed out. Callers may retry with backoff.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("agentflow: network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// TransportError reports that the control plane rejected the request with a
// non-2xx status. It is not retried automatically.
type TransportError struct {
	// Status is the HTTP status code returned by the server.
	Status int

	// RawBody is the unparsed response body.
	RawBody []byte

	// Message is the server's error message: the "error" field of the
	// response body when it parses as {"error": string}, otherwise the
	// raw body text.
	Message string
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("agentflow: server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("agentflow: server returned %d", e.Status)
}

// NotFoundError reports that a workflow lookup, status, log, or delete
// operation named a workflow the control plane does not know.
type NotFoundError struct {
	WorkflowID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agentflow: workflow %q not found", e.WorkflowID)
}

// SchemaError reports a response (or streamed frame) whose JSON parsed but
// did not match the expected entity shape: a required field was absent or
// mistyped. It indicates a protocol mismatch and is never retried.
type SchemaError struct {
	// Entity names the wire entity that failed to decode ("workflow",
	// "workflow_status", "log_entry", "event").
	Entity string

	// Field names the offending field, when known.
	Field string

	// Cause is the underlying decode error, when there is one.
	Cause error
}

func (e *SchemaError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("agentflow: invalid %s: field %q missing or mistyped", e.Entity, e.Field)
	case e.Cause != nil:
		return fmt.Sprintf("agentflow: invalid %s: %v", e.Entity, e.Cause)
	default:
		return fmt.Sprintf("agentflow: invalid %s", e.Entity)
	}
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// ValidationError reports a request that was rejected before any network
// call: an empty workflow id, an invalid definition, an unmarshalable body.
// It indicates a caller bug and is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "agentflow: " + e.Reason
}

// DecodeError reports a response body that was not valid JSON at all.
type DecodeError struct {
	Cause error
	Raw   []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("agentflow: response is not valid JSON: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// CancelledError reports that an in-flight operation was cancelled by the
// caller. It is distinct from NetworkError so cancellation is never mistaken
// for an unreachable server.
type CancelledError struct {
	Cause error
}

func (e *CancelledError) Error() string {
	return "agentflow: operation cancelled"
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
