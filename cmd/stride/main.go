// Package main provides the stride CLI: personal goals and daily tasks
// tracked in per-user Google spreadsheets.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/stride/pkg/types"
)

// Exit codes: 1 for user errors (bad input, missing goal), 2 for system
// errors (backend unavailable, credentials).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrUnavailable),
		errors.Is(err, types.ErrPermission),
		errors.Is(err, types.ErrIntegrity):
		return exitSysError
	default:
		return exitUserError
	}
}
