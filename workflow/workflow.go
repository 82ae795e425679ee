// Package workflow defines the typed domain model for AgentFlow entities:
// workflows, execution status, agent executions, and log entries, together
// with strict wire decoders and the YAML definition document used to deploy.
//
// Entities are immutable value objects once decoded. Decoders are strict
// about required fields and lenient about unknown ones: fields this version
// does not know are dropped, not an error.
package workflow

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Siddhant-K-code/agentflow-go"
)

// Phase is the coarse lifecycle stage of a workflow.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
	// PhaseUnknown is the decode target for phase values this client
	// version does not recognize.
	PhaseUnknown Phase = "unknown"
)

// ParsePhase maps a wire value onto a Phase. Unrecognized values map to
// PhaseUnknown rather than failing, so old clients survive new servers.
func ParsePhase(s string) Phase {
	switch s {
	case "pending":
		return PhasePending
	case "running":
		return PhaseRunning
	case "succeeded", "completed":
		// Older control planes report "completed".
		return PhaseSucceeded
	case "failed":
		return PhaseFailed
	default:
		return PhaseUnknown
	}
}

// AgentState mirrors Phase at per-agent granularity.
type AgentState = Phase

// Workflow is a deployed unit of work. It is created by Deploy and read-only
// thereafter; the id is server-issued and immutable.
type Workflow struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Spec      json.RawMessage `json:"spec,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// WorkflowStatus is the transient execution state of a workflow. It is
// re-fetched or re-streamed, never cached beyond one call or event.
type WorkflowStatus struct {
	WorkflowID      string           `json:"workflow_id"`
	Phase           Phase            `json:"phase"`
	AgentExecutions []AgentExecution `json:"agent_executions,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// AgentExecution is the state of one agent within a workflow run. It is
// owned by its parent WorkflowStatus and has no independent lifecycle.
type AgentExecution struct {
	AgentName  string     `json:"agent_name"`
	State      AgentState `json:"state"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// LogEntry is one log line produced by the control plane. Ordering is only
// guaranteed within a single agent's stream, not across agents.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	AgentName string    `json:"agent_name,omitempty"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// ── Wire decoding ──────────────────────────────────

// schemaErr builds the SchemaError for a failed strict decode, extracting
// the offending field from type errors where the stdlib reports one.
func schemaErr(entity string, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &agentflow.SchemaError{Entity: entity, Field: typeErr.Field, Cause: err}
	}
	return &agentflow.SchemaError{Entity: entity, Cause: err}
}

// ParseWorkflow decodes a Workflow from its wire JSON. A missing or mistyped
// id or name is a SchemaError; unknown fields are dropped.
func ParseWorkflow(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, schemaErr("workflow", err)
	}
	if w.ID == "" {
		return nil, &agentflow.SchemaError{Entity: "workflow", Field: "id"}
	}
	if w.Name == "" {
		return nil, &agentflow.SchemaError{Entity: "workflow", Field: "name"}
	}
	return &w, nil
}

// ParseStatus decodes a WorkflowStatus from its wire JSON. The workflow_id
// and phase fields are required; an unrecognized phase value decodes as
// PhaseUnknown rather than failing.
func ParseStatus(data []byte) (*WorkflowStatus, error) {
	var raw struct {
		WorkflowID string          `json:"workflow_id"`
		Phase      *string         `json:"phase"`
		Agents     json.RawMessage `json:"agent_executions"`
		UpdatedAt  time.Time       `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, schemaErr("workflow_status", err)
	}
	if raw.WorkflowID == "" {
		return nil, &agentflow.SchemaError{Entity: "workflow_status", Field: "workflow_id"}
	}
	if raw.Phase == nil {
		return nil, &agentflow.SchemaError{Entity: "workflow_status", Field: "phase"}
	}

	st := &WorkflowStatus{
		WorkflowID: raw.WorkflowID,
		Phase:      ParsePhase(*raw.Phase),
		UpdatedAt:  raw.UpdatedAt,
	}

	if len(raw.Agents) > 0 {
		var agents []json.RawMessage
		if err := json.Unmarshal(raw.Agents, &agents); err != nil {
			return nil, schemaErr("workflow_status", err)
		}
		st.AgentExecutions = make([]AgentExecution, 0, len(agents))
		for _, a := range agents {
			exec, err := parseAgentExecution(a)
			if err != nil {
				return nil, err
			}
			st.AgentExecutions = append(st.AgentExecutions, *exec)
		}
	}
	return st, nil
}

func parseAgentExecution(data []byte) (*AgentExecution, error) {
	var raw struct {
		AgentName  string     `json:"agent_name"`
		State      string     `json:"state"`
		StartedAt  time.Time  `json:"started_at"`
		FinishedAt *time.Time `json:"finished_at"`
		Error      string     `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, schemaErr("agent_execution", err)
	}
	if raw.AgentName == "" {
		return nil, &agentflow.SchemaError{Entity: "agent_execution", Field: "agent_name"}
	}
	return &AgentExecution{
		AgentName:  raw.AgentName,
		State:      ParsePhase(raw.State),
		StartedAt:  raw.StartedAt,
		FinishedAt: raw.FinishedAt,
		Error:      raw.Error,
	}, nil
}

// ParseLogEntry decodes a LogEntry from its wire JSON. The message field is
// required.
func ParseLogEntry(data []byte) (*LogEntry, error) {
	var raw struct {
		Timestamp time.Time       `json:"timestamp"`
		AgentName string          `json:"agent_name"`
		Level     string          `json:"level"`
		Message   json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, schemaErr("log_entry", err)
	}
	if len(raw.Message) == 0 {
		return nil, &agentflow.SchemaError{Entity: "log_entry", Field: "message"}
	}
	var msg string
	if err := json.Unmarshal(raw.Message, &msg); err != nil {
		return nil, &agentflow.SchemaError{Entity: "log_entry", Field: "message", Cause: err}
	}
	return &LogEntry{
		Timestamp: raw.Timestamp,
		AgentName: raw.AgentName,
		Level:     raw.Level,
		Message:   msg,
	}, nil
}

// Encode returns the wire JSON for a Workflow. Encoding is total for any
// entity constructed via ParseWorkflow or with valid field values.
func (w *Workflow) Encode() json.RawMessage {
	data, _ := json.Marshal(w)
	return data
}

// Encode returns the wire JSON for a WorkflowStatus.
func (s *WorkflowStatus) Encode() json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}

// Encode returns the wire JSON for a LogEntry.
func (l *LogEntry) Encode() json.RawMessage {
	data, _ := json.Marshal(l)
	return data
}
