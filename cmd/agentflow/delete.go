package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <workflow-id>",
	Short: "Stop and delete a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID := args[0]

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			fmt.Printf("delete workflow %q? (y/N): ", workflowID)
			var response string
			_, _ = fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("cancelled")
				return nil
			}
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		if err := c.Delete(cmd.Context(), workflowID); err != nil {
			return err
		}
		fmt.Printf("workflow %s deleted\n", workflowID)
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("force", false, "skip the confirmation prompt")
}
