// Package agentflow is the Go client runtime for the AgentFlow
// workflow-orchestration control plane. It provides typed request/response
// models, a blocking and a future-based client sharing one contract, a closed
// error taxonomy, and a long-lived streaming-event subscription with
// reconnect semantics.
//
// # Quick Start
//
//	c, err := client.New("http://localhost:8080",
//	    client.WithAPIKey(os.Getenv("AGENTFLOW_API_KEY")),
//	)
//
//	def, err := workflow.LoadDefinition("workflow.yaml")
//	wf, err := c.Deploy(ctx, def)
//
//	sub, err := c.Watch(ctx, wf.ID)
//	for evt := range sub.C() {
//	    fmt.Printf("%s: %s\n", evt.Type, evt.Message)
//	}
//
// # Architecture
//
// The root package defines the error taxonomy and shared configuration.
// Subsystems live in their own packages: workflow (domain model and
// definition documents), transport (HTTP request execution), stream (the
// live-event subscriber), backoff (retry delay strategies), and client
// (the facade tying them together). The cmd/agentflow CLI is built entirely
// on the library.
//
// All entities are immutable value objects once decoded from a server
// response. The client never generates identifiers; every workflow id is
// server-issued.
package agentflow
