// Stats command: per-goal and overall completion figures.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics across all goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}

		stats, err := app.orch.Statistics(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(stats)
		}
		if len(stats.Goals) == 0 {
			fmt.Println("No goals yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TITLE\tSTATUS\tDONE\tTOTAL\tPROGRESS")
		for _, g := range stats.Goals {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d%%\n", g.Title, g.Status, g.Done, g.Total, g.Progress)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nOverall: %d/%d tasks done (%d%%)\n", stats.DoneTasks, stats.TotalTasks, stats.Progress)
		return nil
	},
}
