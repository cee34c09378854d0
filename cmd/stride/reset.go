// Reset command: delete the user's entire document.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the user's spreadsheet and all goal history",
	Long: `Reset tears down the user's whole document: every goal, every task,
the index, all of it. There is no undo. Requires --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := requireUser()
		if err != nil {
			return err
		}
		if !resetConfirm {
			return errors.New("refusing to delete all data without --yes")
		}
		if err := app.orch.Reset(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Printf("Deleted all data for user %d\n", userID)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm deletion")
}
