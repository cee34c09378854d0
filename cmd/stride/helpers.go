// Shared helpers for stride CLI commands.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// requireUser checks the --user flag, which every data command needs.
func requireUser() (int64, error) {
	if flagUser == 0 {
		return 0, errors.New("--user is required")
	}
	return flagUser, nil
}

// parseDateArg parses an optional DD.MM.YYYY value, defaulting to today.
func parseDateArg(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	return types.ParseDate(value)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatDeadline renders a deadline with a days-left hint.
func formatDeadline(deadline time.Time) string {
	days := int(time.Until(deadline).Hours() / 24)
	if days < 0 {
		return fmt.Sprintf("%s (overdue)", types.FormatDate(deadline))
	}
	return fmt.Sprintf("%s (%dd left)", types.FormatDate(deadline), days)
}
