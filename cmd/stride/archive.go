// Archive command: retire a goal without deleting its history.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive GOAL_ID",
	Short: "Archive a goal, freeing its active slot",
	Long: `Archive removes the goal from the active set. Its worksheet and task
history stay in the spreadsheet; nothing is deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		if err := app.orch.Archive(cmd.Context(), userID, args[0]); err != nil {
			return err
		}
		if flagJSON {
			return printJSON(map[string]string{"archived": args[0]})
		}
		fmt.Printf("Archived goal %s\n", args[0])
		return nil
	},
}
