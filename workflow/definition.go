package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Siddhant-K-code/agentflow-go"
)

// Definition is the workflow document a caller authors in YAML and deploys
// to the control plane. It is sent verbatim as the deploy request body.
type Definition struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion"`
	Kind       string   `yaml:"kind" json:"kind"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Spec       Spec     `yaml:"spec" json:"spec"`
}

// Metadata names and labels a workflow definition.
type Metadata struct {
	Name      string            `yaml:"name" json:"name"`
	Namespace string            `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Spec declares the agents composing the workflow and their execution
// parameters.
type Spec struct {
	Agents   []Agent   `yaml:"agents" json:"agents"`
	Triggers []Trigger `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Config   RunConfig `yaml:"config,omitempty" json:"config,omitempty"`
}

// Agent declares a single execution unit within a workflow.
type Agent struct {
	Name      string            `yaml:"name" json:"name"`
	Image     string            `yaml:"image" json:"image"`
	LLM       LLMConfig         `yaml:"llm,omitempty" json:"llm,omitempty"`
	DependsOn []string          `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Timeout   string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Retries   int               `yaml:"retries,omitempty" json:"retries,omitempty"`
}

// LLMConfig is the model configuration embedded in an agent declaration.
// It is an immutable value object.
type LLMConfig struct {
	Provider    string            `yaml:"provider" json:"provider"`
	Model       string            `yaml:"model" json:"model"`
	Temperature float64           `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Options     map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Trigger declares when a workflow runs.
type Trigger struct {
	Schedule string `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Webhook  string `yaml:"webhook,omitempty" json:"webhook,omitempty"`
	Event    string `yaml:"event,omitempty" json:"event,omitempty"`
}

// RunConfig holds workflow-wide execution parameters.
type RunConfig struct {
	Parallelism int    `yaml:"parallelism,omitempty" json:"parallelism,omitempty"`
	Timeout     string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	RetryPolicy string `yaml:"retryPolicy,omitempty" json:"retryPolicy,omitempty"`
}

// LoadDefinition reads and parses a workflow definition from a YAML file.
func LoadDefinition(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &agentflow.ValidationError{Reason: fmt.Sprintf("read definition %s: %v", path, err)}
	}
	return ParseDefinition(data)
}

// ParseDefinition parses a workflow definition from YAML (or JSON, which is
// a YAML subset).
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &agentflow.ValidationError{Reason: fmt.Sprintf("parse definition: %v", err)}
	}
	return &def, nil
}

// Validate checks a definition before it is sent to the control plane.
// Every failure is a ValidationError naming the broken rule.
func (d *Definition) Validate() error {
	if d.APIVersion == "" {
		return &agentflow.ValidationError{Reason: "definition: apiVersion is required"}
	}
	if d.Kind != "Workflow" {
		return &agentflow.ValidationError{Reason: fmt.Sprintf("definition: kind must be %q, got %q", "Workflow", d.Kind)}
	}
	if d.Metadata.Name == "" {
		return &agentflow.ValidationError{Reason: "definition: metadata.name is required"}
	}
	if len(d.Spec.Agents) == 0 {
		return &agentflow.ValidationError{Reason: "definition: at least one agent must be defined"}
	}
	seen := make(map[string]struct{}, len(d.Spec.Agents))
	for _, agent := range d.Spec.Agents {
		if agent.Name == "" {
			return &agentflow.ValidationError{Reason: "definition: agent name is required"}
		}
		if agent.Image == "" {
			return &agentflow.ValidationError{Reason: fmt.Sprintf("definition: agent %q: image is required", agent.Name)}
		}
		if _, dup := seen[agent.Name]; dup {
			return &agentflow.ValidationError{Reason: fmt.Sprintf("definition: agent %q declared twice", agent.Name)}
		}
		seen[agent.Name] = struct{}{}
	}
	for _, agent := range d.Spec.Agents {
		for _, dep := range agent.DependsOn {
			if _, ok := seen[dep]; !ok {
				return &agentflow.ValidationError{Reason: fmt.Sprintf("definition: agent %q depends on unknown agent %q", agent.Name, dep)}
			}
		}
	}
	return nil
}
