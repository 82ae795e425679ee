package workflow_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Siddhant-K-code/agentflow-go"
	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

const validYAML = `
apiVersion: agentflow.dev/v1
kind: Workflow
metadata:
  name: data-pipeline
spec:
  agents:
    - name: collector
      image: agentflow/collector:1.0
      llm:
        provider: openai
        model: gpt-4o
        temperature: 0.3
    - name: processor
      image: agentflow/processor:1.0
      dependsOn: [collector]
`

func TestParseDefinition(t *testing.T) {
	def, err := workflow.ParseDefinition([]byte(validYAML))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if def.Metadata.Name != "data-pipeline" {
		t.Errorf("Name = %q", def.Metadata.Name)
	}
	if len(def.Spec.Agents) != 2 {
		t.Fatalf("agents = %d, want 2", len(def.Spec.Agents))
	}
	llm := def.Spec.Agents[0].LLM
	if llm.Provider != "openai" || llm.Model != "gpt-4o" || llm.Temperature != 0.3 {
		t.Errorf("LLM = %+v", llm)
	}
	if err := def.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseDefinition_BadYAML(t *testing.T) {
	_, err := workflow.ParseDefinition([]byte("{[not yaml"))
	var vErr *agentflow.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	def, err := workflow.LoadDefinition(path)
	if err != nil {
		t.Fatalf("LoadDefinition: %v", err)
	}
	if def.Metadata.Name != "data-pipeline" {
		t.Errorf("Name = %q", def.Metadata.Name)
	}

	if _, err := workflow.LoadDefinition(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestDefinitionValidate_Rules(t *testing.T) {
	base := func() *workflow.Definition {
		def, err := workflow.ParseDefinition([]byte(validYAML))
		if err != nil {
			t.Fatalf("ParseDefinition: %v", err)
		}
		return def
	}

	tests := []struct {
		name   string
		mutate func(*workflow.Definition)
		want   string
	}{
		{"missing apiVersion", func(d *workflow.Definition) { d.APIVersion = "" }, "apiVersion"},
		{"wrong kind", func(d *workflow.Definition) { d.Kind = "Pipeline" }, "kind"},
		{"missing name", func(d *workflow.Definition) { d.Metadata.Name = "" }, "metadata.name"},
		{"no agents", func(d *workflow.Definition) { d.Spec.Agents = nil }, "at least one agent"},
		{"agent without name", func(d *workflow.Definition) { d.Spec.Agents[0].Name = "" }, "agent name"},
		{"agent without image", func(d *workflow.Definition) { d.Spec.Agents[1].Image = "" }, "image is required"},
		{"duplicate agent", func(d *workflow.Definition) { d.Spec.Agents[1].Name = "collector" }, "declared twice"},
		{"unknown dependency", func(d *workflow.Definition) { d.Spec.Agents[1].DependsOn = []string{"ghost"} }, "unknown agent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := base()
			tt.mutate(def)
			err := def.Validate()
			var vErr *agentflow.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if !strings.Contains(vErr.Reason, tt.want) {
				t.Errorf("Reason = %q, want it to mention %q", vErr.Reason, tt.want)
			}
		})
	}
}
