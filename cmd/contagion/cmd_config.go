package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/contagion/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage contagion configuration",
		Long: `View and modify contagion configuration settings.

Settings are layered: defaults, then ~/.contagion/config.yaml, then
<root>/.contagion/config.yaml, then CONTAGION_* environment variables.

Examples:
  contagion config list                           # Show effective settings
  contagion config get simulation.model           # Get a specific setting
  contagion config set simulation.model random_p  # Set in the project config
  contagion config set --global logging.level debug`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			yamlOut, _ := cmd.Flags().GetBool("yaml")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
			}
			if yamlOut {
				out, err := configYAML(cfg)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%-34s %v\n", key+":", displayValue(value))
			}
			return nil
		},
	}
	cmd.Flags().Bool("yaml", false, "Print the effective configuration as YAML")
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			value, found := cfg.Get(key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, displayValue(value))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			global, _ := cmd.Flags().GetBool("global")
			root, _ := cmd.Flags().GetString("root")
			key, value := args[0], args[1]

			path := config.LocalPath(root)
			if global {
				var err error
				if path, err = config.GlobalPath(); err != nil {
					return err
				}
			}

			// Only the target file is rewritten; other layers stay untouched.
			cfg := config.Default()
			if _, err := os.Stat(path); err == nil {
				if cfg, err = config.LoadFromFile(path); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			if err := cfg.Set(key, value); err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
					"path":   path,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
	cmd.Flags().Bool("global", false, "Write ~/.contagion/config.yaml instead of the project config")
	return cmd
}

// displayValue renders unset values readably.
func displayValue(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return "(not set)"
	}
	return v
}

// configYAML renders cfg in the config file format.
func configYAML(cfg *config.ContagionConfig) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
