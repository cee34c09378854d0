// Done command: record a task's outcome for a date.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stride/pkg/types"
)

var (
	doneDate   string
	doneStatus string
)

var doneCmd = &cobra.Command{
	Use:   "done GOAL_ID",
	Short: "Mark a goal's task done (or partial) for a date",
	Long: `Done records the outcome of one daily task. When the last remaining
task of a goal is marked done, the goal is completed automatically and
its active slot is freed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		date, err := parseDateArg(doneDate)
		if err != nil {
			return err
		}

		completed, err := app.orch.RecordCompletion(cmd.Context(), userID, args[0], date, doneStatus)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]any{"status": doneStatus, "goal_completed": completed})
		}
		fmt.Printf("Recorded %s for %s\n", doneStatus, types.FormatDate(date))
		if completed {
			fmt.Println("All tasks done. Goal completed!")
		}
		return nil
	},
}

func init() {
	doneCmd.Flags().StringVar(&doneDate, "date", "", "task date as DD.MM.YYYY (default: today)")
	doneCmd.Flags().StringVar(&doneStatus, "status", types.TaskDone, "outcome: done, partial, or not-done")
}
