package main

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the contagion tools over MCP (stdio)",
		Long: `Run an MCP server on stdin/stdout exposing the graph store and the
simulation engine as tools: contagion_run, contagion_graphs,
contagion_import, contagion_delete, contagion_render and contagion_models.
Stored graphs are also listed as the contagion://graphs resource.

Tool calls are recorded in .contagion/audit.jsonl under the project root.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "contagion",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   newCmdLogger(cmd, cfg),
			})
			if err != nil {
				return fmt.Errorf("starting MCP server: %w", err)
			}
			defer server.Close()

			ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
			defer stop()
			return server.Run(ctx)
		},
	}
}
