package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/backup"
	"github.com/nvandessel/contagion/internal/pathutil"
	"github.com/nvandessel/contagion/internal/store"
)

func newGraphBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive every stored graph into one compressed file",
		Long: `Write all stored graphs to a checksummed, gzip-compressed archive.

Without --output the archive goes to ~/.contagion/backups/ and only the
newest --keep archives there are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")
			keep, _ := cmd.Flags().GetInt("keep")

			root, _ := cmd.Flags().GetString("root")

			rotateDir := ""
			if output != "" {
				var err error
				if output, err = allowedBackupPath(root, output); err != nil {
					return err
				}
			} else {
				dir, err := backup.DefaultDir()
				if err != nil {
					return err
				}
				output = backup.GeneratePath(dir, time.Now())
				rotateDir = dir
			}

			return withStore(cmd, func(gs store.GraphStore) error {
				archive, err := backup.Backup(cmd.Context(), gs, output)
				if err != nil {
					return fmt.Errorf("backup failed: %w", err)
				}
				var rotated []string
				if rotateDir != "" {
					if rotated, err = backup.Rotate(rotateDir, keep); err != nil {
						return fmt.Errorf("rotating backups: %w", err)
					}
				}

				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
						"path":    output,
						"graphs":  len(archive.Graphs),
						"rotated": len(rotated),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d graph(s) to %s\n", len(archive.Graphs), pathutil.RedactPath(output))
				if len(rotated) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d old backup(s)\n", len(rotated))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringP("output", "o", "", "Archive path (default ~/.contagion/backups/contagion-backup-<time>.json.gz)")
	cmd.Flags().Int("keep", 10, "Archives to keep in the default directory (0 keeps all)")
	return cmd
}

func newGraphRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <archive>",
		Short: "Restore graphs from a backup archive",
		Long: `Restore the graphs in a backup archive into the store.

--mode merge (the default) keeps graphs already stored under the same name.
--mode replace deletes every stored graph first. The archive checksum is
verified before anything is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			modeName, _ := cmd.Flags().GetString("mode")
			mode, err := backup.ParseRestoreMode(modeName)
			if err != nil {
				return err
			}
			root, _ := cmd.Flags().GetString("root")
			path, err := allowedBackupPath(root, args[0])
			if err != nil {
				return err
			}

			return withStore(cmd, func(gs store.GraphStore) error {
				res, err := backup.Restore(cmd.Context(), gs, path, mode)
				if err != nil {
					return fmt.Errorf("restore failed: %w", err)
				}
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %d graph(s)", len(res.Restored))
				if len(res.Skipped) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d existing", len(res.Skipped))
				}
				if len(res.Deleted) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), ", replaced %d", len(res.Deleted))
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().String("mode", "merge", "Restore mode: merge or replace")
	return cmd
}

// allowedBackupPath makes path absolute and checks it lies under the project
// root or ~/.contagion/backups.
func allowedBackupPath(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	allowed, err := pathutil.DefaultAllowedBackupDirsWithProjectRoot(absRoot)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving backup path: %w", err)
	}
	if err := pathutil.ValidatePath(absPath, allowed); err != nil {
		return "", fmt.Errorf("backup path rejected: %w", err)
	}
	return absPath, nil
}
