package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/store"
	"github.com/nvandessel/contagion/internal/visualization"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage stored graphs",
		Long: `Import, inspect, render and delete the graphs kept in the project store.

Examples:
  contagion graph import 2.10.1 graphs/2.10.1.json
  contagion graph list
  contagion graph show 2.10.1 --format dot | dot -Tsvg > g.svg
  contagion graph delete 2.10.1
  contagion graph backup
  contagion graph restore ~/.contagion/backups/contagion-backup-20260301-120000.json.gz`,
	}

	cmd.AddCommand(
		newGraphImportCmd(),
		newGraphListCmd(),
		newGraphShowCmd(),
		newGraphExportCmd(),
		newGraphDeleteCmd(),
		newGraphBackupCmd(),
		newGraphRestoreCmd(),
	)
	return cmd
}

// withStore loads config, opens the configured store and runs fn with it.
func withStore(cmd *cobra.Command, fn func(gs store.GraphStore) error) error {
	root, _ := cmd.Flags().GetString("root")
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gs, err := openStore(cfg, root)
	if err != nil {
		return err
	}
	defer gs.Close()
	return fn(gs)
}

func newGraphImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <name> <file>",
		Short: "Import a JSON adjacency file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			name, file := args[0], args[1]

			g, err := graph.LoadJSONFile(file)
			if err != nil {
				return fmt.Errorf("loading graph: %w", err)
			}
			return withStore(cmd, func(gs store.GraphStore) error {
				if err := gs.SaveGraph(cmd.Context(), name, g); err != nil {
					return fmt.Errorf("saving graph: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"status": "imported",
						"name":   name,
						"nodes":  g.Len(),
						"edges":  g.EdgeCount(),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d nodes, %d edges\n", name, g.Len(), g.EdgeCount())
				return nil
			})
		},
	}
}

func newGraphListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			return withStore(cmd, func(gs store.GraphStore) error {
				infos, err := gs.ListGraphs(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing graphs: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"graphs": infos,
						"count":  len(infos),
					})
				}
				if len(infos) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No graphs stored.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tNODES\tEDGES\tCREATED")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", info.Name, info.Nodes, info.Edges, info.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
}

func newGraphShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Render a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName, _ := cmd.Flags().GetString("format")
			format, err := visualization.ParseFormat(formatName)
			if err != nil {
				return err
			}
			return withStore(cmd, func(gs store.GraphStore) error {
				g, err := gs.LoadGraph(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("loading graph: %w", err)
				}
				switch format {
				case visualization.FormatJSON:
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(visualization.RenderJSON(g, nil)); err != nil {
						return fmt.Errorf("encode JSON: %w", err)
					}
				default:
					fmt.Fprint(cmd.OutOrStdout(), visualization.RenderDOT(g, nil))
				}
				return nil
			})
		},
	}
	cmd.Flags().String("format", "dot", "Output format: dot or json")
	return cmd
}

func newGraphExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <name>",
		Short: "Write a stored graph back out as a JSON adjacency file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			return withStore(cmd, func(gs store.GraphStore) error {
				g, err := gs.LoadGraph(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("loading graph: %w", err)
				}
				if output == "" {
					return graph.WriteJSON(cmd.OutOrStdout(), g)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				if err := graph.WriteJSON(f, g); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func newGraphDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			return withStore(cmd, func(gs store.GraphStore) error {
				if err := gs.DeleteGraph(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("deleting graph: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
						"status": "deleted",
						"name":   args[0],
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}
