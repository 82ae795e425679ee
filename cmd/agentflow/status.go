package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [workflow-id]",
	Short: "Show workflow status",
	Long:  "Show the status of one workflow, or list every workflow when no id is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		if len(args) == 1 {
			st, err := c.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("workflow: %s\n", st.WorkflowID)
			fmt.Printf("phase:    %s\n", renderPhase(st.Phase))
			if !st.UpdatedAt.IsZero() {
				fmt.Printf("updated:  %s\n", st.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			if len(st.AgentExecutions) == 0 {
				return nil
			}

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "AGENT\tSTATE\tSTARTED\tERROR")
			for _, exec := range st.AgentExecutions {
				started := ""
				if !exec.StartedAt.IsZero() {
					started = exec.StartedAt.Format("15:04:05")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					exec.AgentName, renderPhase(exec.State), started, exec.Error)
			}
			return w.Flush()
		}

		workflows, err := c.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(workflows) == 0 {
			fmt.Println("no workflows found")
			fmt.Println("deploy one with: agentflow deploy workflow.yaml")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tCREATED")
		for _, wf := range workflows {
			created := ""
			if !wf.CreatedAt.IsZero() {
				created = wf.CreatedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", wf.Name, wf.ID, created)
		}
		return w.Flush()
	},
}
