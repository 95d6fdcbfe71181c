package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/config"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/store"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contagion",
		Short: "Competitive influence-spread simulator",
		Long: `contagion plays competitive color-spreading games on graphs.

Teams seed a few nodes each with their color; every round each node looks at
its neighbors and may adopt a color under the chosen model, until the
coloring stops changing or the round cap is hit.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for machine consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newGraphCmd(),
		newModelsCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

// loadConfig loads the layered configuration for the command's project root
// and applies the --log-level override.
func loadConfig(cmd *cobra.Command) (*config.ContagionConfig, error) {
	root, _ := cmd.Flags().GetString("root")
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if err := logging.ValidateLevel(lvl); err != nil {
			return nil, err
		}
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// newCmdLogger builds the stderr logger for a command.
func newCmdLogger(cmd *cobra.Command, cfg *config.ContagionConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
}

// openStore opens the configured graph store for the project root.
func openStore(cfg *config.ContagionConfig, root string) (store.GraphStore, error) {
	return store.Open(cfg.Storage.Backend, root, cfg.DBPath(root))
}
