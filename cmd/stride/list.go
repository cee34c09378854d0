// List command: show all goals with progress.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stride/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all goals with status and progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		goals, err := app.orch.List(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(goals)
		}
		if len(goals) == 0 {
			fmt.Println("No goals yet. Create one with: stride create")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDEADLINE\tPROGRESS\tTAGS")
		for _, g := range goals {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
				g.ID, g.Title, g.Priority, g.Status, formatDeadline(g.Deadline), g.Progress, types.JoinTags(g.Tags))
		}
		return w.Flush()
	},
}
