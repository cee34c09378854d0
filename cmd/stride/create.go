// Create command: plan a new goal and persist it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stride/pkg/types"
)

var (
	createTitle       string
	createDescription string
	createPriority    string
	createDeadline    string
	createTags        []string
	createMinutes     int
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a goal with a generated daily task plan",
	Long: `Create asks the planner for a day-by-day task list covering the time
until the deadline, then stores the goal and its tasks in the user's
spreadsheet. Fails when the user already has the maximum number of
active goals.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		deadline, err := types.ParseDate(createDeadline)
		if err != nil {
			return err
		}

		meta := types.GoalMeta{
			Title:       createTitle,
			Description: createDescription,
			Priority:    createPriority,
			Tags:        createTags,
			Deadline:    deadline,
		}
		goalID, err := app.orch.CreateGoal(cmd.Context(), userID, meta, createMinutes)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]string{"goal_id": goalID})
		}
		fmt.Printf("Created goal %s: %s (due %s)\n", goalID, createTitle, createDeadline)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTitle, "title", "", "goal title (required)")
	createCmd.Flags().StringVar(&createDescription, "description", "", "free-form goal description for the planner")
	createCmd.Flags().StringVar(&createPriority, "priority", types.PriorityMedium, "priority: high, medium, or low")
	createCmd.Flags().StringVar(&createDeadline, "deadline", "", "deadline as DD.MM.YYYY (required)")
	createCmd.Flags().StringSliceVar(&createTags, "tags", nil, "comma-separated tags")
	createCmd.Flags().IntVar(&createMinutes, "minutes", 30, "minutes available per day")
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("deadline")
}
