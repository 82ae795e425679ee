// Package stream maintains the long-lived live-event connection for a
// workflow. It decodes incoming frames into typed events, delivers them to
// the consumer in arrival order, and reconnects with backoff on transient
// disconnects. Delivery is at-most-once: events lost during a disconnect gap
// are not replayed.
package stream

import (
	"encoding/json"
	"time"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

// EventType tags the kind of a live workflow event.
type EventType string

const (
	// EventStatusChanged carries a fresh WorkflowStatus snapshot.
	EventStatusChanged EventType = "status_changed"
	// EventLogEmitted carries one log entry.
	EventLogEmitted EventType = "log"
	// EventCompleted signals the workflow finished successfully.
	EventCompleted EventType = "completed"
	// EventFailed signals the workflow failed terminally.
	EventFailed EventType = "failed"
	// EventUnknown is the decode target for event types this client
	// version does not recognize.
	EventUnknown EventType = "unknown"
)

// Event is one decoded frame from the live stream. Exactly one payload
// field is set per type: Status for status_changed/completed/failed (when
// the server includes it), Log for log events. Err is set only on the
// event delivered when a frame failed to decode.
type Event struct {
	Type       EventType
	WorkflowID string
	Timestamp  time.Time
	Status     *workflow.WorkflowStatus
	Log        *workflow.LogEntry
	Message    string
	Err        error
}

// Terminal reports whether the event marks the end of the workflow run.
func (e Event) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventFailed
}

// eventFrame is the wire shape of one streamed message.
type eventFrame struct {
	Type       *string         `json:"type"`
	WorkflowID string          `json:"workflow_id"`
	Timestamp  time.Time       `json:"ts"`
	Status     json.RawMessage `json:"status,omitempty"`
	Log        json.RawMessage `json:"log,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// decodeEvent strictly decodes one frame. The type field is required; a
// type value this version does not know decodes as EventUnknown. Payload
// decode failures propagate as SchemaErrors.
func decodeEvent(data []byte) (Event, error) {
	var frame eventFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Event{}, &agentflow.SchemaError{Entity: "event", Cause: err}
	}
	if frame.Type == nil || *frame.Type == "" {
		return Event{}, &agentflow.SchemaError{Entity: "event", Field: "type"}
	}

	evt := Event{
		WorkflowID: frame.WorkflowID,
		Timestamp:  frame.Timestamp,
		Message:    frame.Message,
	}
	switch EventType(*frame.Type) {
	case EventStatusChanged, EventCompleted, EventFailed:
		evt.Type = EventType(*frame.Type)
		if len(frame.Status) > 0 {
			status, err := workflow.ParseStatus(frame.Status)
			if err != nil {
				return Event{}, err
			}
			evt.Status = status
		}
	case EventLogEmitted:
		evt.Type = EventLogEmitted
		if len(frame.Log) == 0 {
			return Event{}, &agentflow.SchemaError{Entity: "event", Field: "log"}
		}
		entry, err := workflow.ParseLogEntry(frame.Log)
		if err != nil {
			return Event{}, err
		}
		evt.Log = entry
	default:
		evt.Type = EventUnknown
	}
	return evt, nil
}
