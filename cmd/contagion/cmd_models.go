package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/model"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the available color models",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			current, _ := model.ParseKind(cfg.Simulation.Model)

			if jsonOut {
				type entry struct {
					Name        string `json:"name"`
					Description string `json:"description"`
					Default     bool   `json:"default"`
					Stochastic  bool   `json:"stochastic"`
				}
				out := make([]entry, 0, len(model.Kinds()))
				for _, k := range model.Kinds() {
					m, err := model.New(model.DefaultOptions(k))
					if err != nil {
						return err
					}
					out = append(out, entry{
						Name:        string(k),
						Description: k.Describe(),
						Default:     k == current,
						Stochastic:  !m.Deterministic(),
					})
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range model.Kinds() {
				marker := " "
				if k == current {
					marker = "*"
				}
				fmt.Fprintf(tw, "%s %s\t%s\n", marker, k, k.Describe())
			}
			return tw.Flush()
		},
	}
}
