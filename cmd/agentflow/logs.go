package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/agentflow-go/stream"
)

var logsCmd = &cobra.Command{
	Use:   "logs <workflow-id> [agent-name]",
	Short: "Show logs from workflow agents",
	Long: `Display logs from a workflow's execution. With an agent name, only that
agent's logs are shown. --follow switches to the live event stream and keeps
printing log events as they arrive.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowID := args[0]
		agent := ""
		if len(args) > 1 {
			agent = args[1]
		}
		follow, _ := cmd.Flags().GetBool("follow")
		tail, _ := cmd.Flags().GetInt("tail")

		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		entries, err := c.Logs(cmd.Context(), workflowID, agent)
		if err != nil {
			return err
		}
		if tail > 0 && len(entries) > tail {
			entries = entries[len(entries)-tail:]
		}
		for _, entry := range entries {
			fmt.Println(renderLog(entry))
		}
		if !follow {
			return nil
		}

		sub, err := c.Watch(cmd.Context(), workflowID)
		if err != nil {
			return err
		}
		defer sub.Cancel()

		for evt := range sub.C() {
			if evt.Type != stream.EventLogEmitted || evt.Log == nil {
				if evt.Terminal() {
					return nil
				}
				continue
			}
			if agent != "" && evt.Log.AgentName != agent {
				continue
			}
			fmt.Println(renderLog(*evt.Log))
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolP("follow", "f", false, "follow log output via the live stream")
	logsCmd.Flags().IntP("tail", "t", 100, "number of lines to show from the end")
}
