// Today command: the day's agenda across all active goals.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stride/pkg/types"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's task for every active goal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		items, err := app.orch.Today(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(items)
		}
		if len(items) == 0 {
			fmt.Println("Nothing scheduled for today.")
			return nil
		}
		for _, item := range items {
			marker := " "
			if item.Task.Status != types.TaskNotDone {
				marker = "x"
			}
			fmt.Printf("[%s] (%s) %s: %s\n", marker, item.Priority, item.GoalTitle, item.Task.Description)
		}
		return nil
	},
}
