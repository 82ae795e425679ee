package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siddhant-K-code/agentflow-go/stream"
)

var watchCmd = &cobra.Command{
	Use:   "watch <workflow-id>",
	Short: "Watch workflow execution in real time",
	Long: `Connect to the workflow's live event stream and print updates about
agent states and events as they happen. The stream reconnects automatically
on transient disconnects; press Ctrl-C to stop, or wait for the workflow to
complete or fail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		defer c.Close() //nolint:errcheck

		sub, err := c.Watch(cmd.Context(), args[0],
			stream.WithStateFunc(func(st stream.State) {
				if st == stream.StateReconnecting {
					fmt.Println(styleDim.Render("… connection lost, reconnecting"))
				}
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Cancel()

		fmt.Printf("watching workflow %s (Ctrl-C to stop)\n", args[0])
		for evt := range sub.C() {
			fmt.Println(renderEvent(evt))
			if evt.Terminal() {
				return nil
			}
		}
		return nil
	},
}
