package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const sampleDefinition = `apiVersion: agentflow.dev/v1
kind: Workflow
metadata:
  name: %s
spec:
  agents:
    - name: hello-world
      image: agentflow/hello-world:latest
      llm:
        provider: openai
        model: gpt-4o-mini
        temperature: 0.2
  config:
    parallelism: 1
    retryPolicy: exponential
`

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Scaffold a new AgentFlow project",
	Long:  "Create a project directory with a sample workflow definition to start from.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := os.MkdirAll(filepath.Join(name, "agents"), 0o755); err != nil {
			return fmt.Errorf("create project directory: %w", err)
		}

		path := filepath.Join(name, "workflow.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := os.WriteFile(path, fmt.Appendf(nil, sampleDefinition, name), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		fmt.Printf("project %q initialized\n", name)
		fmt.Printf("  %s\n", path)
		fmt.Println("next steps:")
		fmt.Printf("  1. edit %s\n", path)
		fmt.Printf("  2. agentflow validate %s\n", path)
		fmt.Printf("  3. agentflow deploy %s\n", path)
		return nil
	},
}
