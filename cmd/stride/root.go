// Root command and application wiring for the stride CLI.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stride/internal/cache"
	"github.com/mesh-intelligence/stride/internal/logging"
	"github.com/mesh-intelligence/stride/internal/orchestrator"
	"github.com/mesh-intelligence/stride/internal/paths"
	"github.com/mesh-intelligence/stride/internal/planner"
	"github.com/mesh-intelligence/stride/internal/ratelimit"
	"github.com/mesh-intelligence/stride/internal/registry"
	"github.com/mesh-intelligence/stride/internal/retry"
	"github.com/mesh-intelligence/stride/internal/sheets"
	"github.com/mesh-intelligence/stride/internal/store"
	"github.com/mesh-intelligence/stride/pkg/types"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagUser      int64
	flagJSON      bool
)

// app holds the wired application, set by PersistentPreRunE.
var app struct {
	cfg  types.Config
	log  *slog.Logger
	reg  *registry.Registry
	orch *orchestrator.Orchestrator
}

var rootCmd = &cobra.Command{
	Use:   "stride",
	Short: "Stride tracks personal goals as daily task plans in Google Sheets",
	Long: `Stride turns a goal and a deadline into a day-by-day task plan and
keeps it in a per-user Google spreadsheet: one index sheet listing all
goals, one worksheet of dated tasks per goal.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory for the spreadsheet registry (default: platform data dir)")
	rootCmd.PersistentFlags().Int64Var(&flagUser, "user", 0, "user ID the command acts for")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
}

// initApp loads config and wires the full stack. Skipped for commands
// that need no backend.
func initApp(cmd *cobra.Command, args []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return err
	}
	cfg, logCfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(logCfg)

	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		return err
	}

	gw, err := sheets.NewClient(cmd.Context(), cfg.CredentialsFile, reg, log)
	if err != nil {
		reg.Close()
		return err
	}

	exec := retry.New(cfg.Retry)
	s := store.New(gw, cache.New(cfg.CacheTTL), ratelimit.New(cfg.RateLimit), exec, cfg.MaxActiveGoals, log)
	p := planner.NewOpenAI(cfg.Planner, cfg.PlannerRetry, log)

	app.cfg = cfg
	app.log = log
	app.reg = reg
	app.orch = orchestrator.New(s, p, log)
	return nil
}

func closeApp() {
	if app.reg != nil {
		app.reg.Close()
		app.reg = nil
	}
}
