package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/agentflow-go/workflow"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <workflow.yaml>",
	Short: "Deploy a workflow from a YAML definition",
	Long: `Deploy a multi-agent workflow from a YAML definition file. The file
declares agents, dependencies, triggers, and execution parameters; it is
validated locally before anything is sent to the control plane.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := workflow.LoadDefinition(args[0])
		if err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		wf, err := c.Deploy(cmd.Context(), def)
		if err != nil {
			return err
		}

		fmt.Printf("workflow %q deployed\n", wf.Name)
		fmt.Printf("  id: %s\n", wf.ID)
		fmt.Printf("  status: agentflow status %s\n", wf.ID)
		fmt.Printf("  live:   agentflow watch %s\n", wf.ID)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.yaml>",
	Short: "Validate a workflow definition without deploying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := workflow.LoadDefinition(args[0])
		if err != nil {
			return err
		}
		if err := def.Validate(); err != nil {
			return err
		}
		fmt.Printf("%s is a valid workflow definition (%d agents)\n", args[0], len(def.Spec.Agents))
		return nil
	},
}
