package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/contagion/internal/config"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/journal"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/pathutil"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/sanitize"
	"github.com/nvandessel/contagion/internal/spreading"
	"github.com/nvandessel/contagion/internal/store"
	"github.com/nvandessel/contagion/internal/teams"
	"github.com/nvandessel/contagion/internal/visualization"
)

// runFlagKeys maps run flags to the config keys they override.
var runFlagKeys = map[string]string{
	"model":            "simulation.model",
	"max-rounds":       "simulation.max_rounds",
	"round-cap-spread": "simulation.round_cap_spread",
	"seed":             "simulation.seed",
	"workers":          "simulation.workers",
	"self-weight":      "simulation.self_weight",
	"infection-p":      "simulation.infection_probability",
	"scope":            "simulation.scope",
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play one simulation",
		Long: `Play one simulation on a graph and print the final standings.

The graph comes from a JSON adjacency file (--graph-file) or from the store
(--graph). Team seeds come from submission files (--team, one node per line,
team name = file name), from a teams directory holding each team's latest
"<graph>-*" submission (--teams-dir with --team-name), or inline
(--seed-team name=n1,n2). A team naming a node that is not in the graph
plays with no seeds.

Examples:
  contagion run --graph-file g.json --team red.txt --team blue.txt
  contagion run --graph 2.10.1 --teams-dir teams --team-name red --team-name blue
  contagion run --graph-file g.json --seed-team red=0,1 --seed-team blue=9 --model random_p --seed 7`,
		RunE: runSimulation,
	}

	cmd.Flags().String("graph-file", "", "Graph adjacency JSON file")
	cmd.Flags().String("graph", "", "Name of a stored graph")
	cmd.Flags().StringArray("team", nil, "Team submission file (repeatable)")
	cmd.Flags().String("teams-dir", "", "Directory holding <team>/<graph>-* submissions")
	cmd.Flags().StringArray("team-name", nil, "Team to load from --teams-dir (repeatable)")
	cmd.Flags().StringArray("seed-team", nil, "Inline team seeds as name=node1,node2 (repeatable)")

	cmd.Flags().String("model", "", "Color model (see 'contagion models')")
	cmd.Flags().Int("max-rounds", 0, "Round cap, round 0 included")
	cmd.Flags().Int("round-cap-spread", 0, "Draw the cap from [max-rounds, max-rounds+spread]")
	cmd.Flags().Uint64("seed", 0, "RNG seed (random when unset)")
	cmd.Flags().Int("workers", 0, "Goroutines per round")
	cmd.Flags().Float64("self-weight", 0, "Extra vote a colored node casts for itself (0 disables)")
	cmd.Flags().Float64("infection-p", 0, "Per-neighbor infection probability for random_p")
	cmd.Flags().String("scope", "", "Lottery population for weighted_random: colored or all")

	cmd.Flags().String("journal", "", "Write the round journal to this path")
	cmd.Flags().Bool("save-journal", false, "Write the round journal under .contagion/runs/")
	cmd.Flags().String("journal-format", "json", "Journal format: json or jsonl")
	cmd.Flags().String("render", "", "Also render the final coloring: dot or json")
	cmd.Flags().StringP("output", "o", "", "Render output file (default stdout)")

	return cmd
}

// runReport is the JSON form of a finished run.
type runReport struct {
	Graph       string              `json:"graph"`
	Model       string              `json:"model"`
	Seed        uint64              `json:"seed"`
	Rounds      int                 `json:"rounds"`
	Cap         int                 `json:"cap"`
	Termination string              `json:"termination"`
	Standings   []ranking.Standing  `json:"standings"`
	Final       map[string][]string `json:"final"`
	Rejected    []teams.Rejection   `json:"rejected,omitempty"`
	Journal     string              `json:"journal,omitempty"`
	Render      map[string]any      `json:"render,omitempty"`
}

func runSimulation(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	logger := newCmdLogger(cmd, cfg)
	g, graphName, err := resolveGraph(ctx, cmd, cfg, root)
	if err != nil {
		return err
	}

	seeds, err := resolveSeeds(cmd, graphName)
	if err != nil {
		return err
	}
	seeds, rejected := teams.Sanitize(g, seeds)
	for _, r := range rejected {
		logger.Warn("team submission discarded", "team", r.Team, "unknown", len(r.Unknown), "first", r.Unknown[0])
	}

	decisions := logging.NewDecisionLogger(store.LocalContagionPath(root), cfg.Logging.Level)
	defer decisions.Close()

	engine, err := spreading.NewEngine(g, engineCfg,
		spreading.WithLogger(logger.With("graph", graphName)),
		spreading.WithDecisionLogger(decisions),
	)
	if err != nil {
		return err
	}
	res, err := engine.Run(ctx, seeds)
	if err != nil {
		return err
	}

	report := runReport{
		Graph:       graphName,
		Model:       string(engineCfg.Model.Kind),
		Seed:        res.Seed,
		Rounds:      res.Rounds,
		Cap:         res.Cap,
		Termination: string(res.Termination),
		Standings:   ranking.Standings(res.Final),
		Final:       make(map[string][]string, len(res.Final)),
		Rejected:    rejected,
	}
	for team, nodes := range res.Final {
		report.Final[string(team)] = nodes
	}

	if report.Journal, err = writeJournal(cmd, root, graphName, g, res); err != nil {
		return err
	}

	if err := writeRender(cmd, g, res, &report); err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(cmd, report)
	return nil
}

// applyRunFlags copies explicitly set simulation flags onto cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.ContagionConfig) error {
	for flag, key := range runFlagKeys {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if err := cfg.Set(key, cmd.Flags().Lookup(flag).Value.String()); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return nil
}

// resolveGraph loads the graph from --graph-file or the store. The returned
// name labels the run and selects submissions in a teams directory.
func resolveGraph(ctx context.Context, cmd *cobra.Command, cfg *config.ContagionConfig, root string) (*graph.Graph, string, error) {
	file, _ := cmd.Flags().GetString("graph-file")
	name, _ := cmd.Flags().GetString("graph")

	switch {
	case file != "" && name != "":
		return nil, "", fmt.Errorf("use either --graph-file or --graph, not both")
	case file != "":
		g, err := graph.LoadJSONFile(file)
		if err != nil {
			return nil, "", fmt.Errorf("loading graph: %w", err)
		}
		base := filepath.Base(file)
		return g, strings.TrimSuffix(base, filepath.Ext(base)), nil
	case name != "":
		gs, err := openStore(cfg, root)
		if err != nil {
			return nil, "", err
		}
		defer gs.Close()
		g, err := gs.LoadGraph(ctx, name)
		if err != nil {
			return nil, "", fmt.Errorf("loading graph: %w", err)
		}
		return g, name, nil
	default:
		return nil, "", fmt.Errorf("no graph given (use --graph-file or --graph)")
	}
}

// resolveSeeds merges every team source into one seed set.
func resolveSeeds(cmd *cobra.Command, graphName string) (spreading.SeedSet, error) {
	files, _ := cmd.Flags().GetStringArray("team")
	teamsDir, _ := cmd.Flags().GetString("teams-dir")
	names, _ := cmd.Flags().GetStringArray("team-name")
	inline, _ := cmd.Flags().GetStringArray("seed-team")

	seeds, err := teams.LoadFiles(files)
	if err != nil {
		return nil, err
	}

	if teamsDir != "" {
		if len(names) == 0 {
			return nil, fmt.Errorf("--teams-dir needs at least one --team-name")
		}
		dirSeeds, err := teams.LoadTeamsDir(teamsDir, graphName, names)
		if err != nil {
			return nil, err
		}
		if err := mergeSeeds(seeds, dirSeeds); err != nil {
			return nil, err
		}
	}

	inlineSeeds, err := parseInlineSeeds(inline)
	if err != nil {
		return nil, err
	}
	if err := mergeSeeds(seeds, inlineSeeds); err != nil {
		return nil, err
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("no teams given (use --team, --teams-dir or --seed-team)")
	}
	return seeds, nil
}

// parseInlineSeeds parses name=node1,node2 values.
func parseInlineSeeds(values []string) (spreading.SeedSet, error) {
	seeds := make(spreading.SeedSet, len(values))
	for _, v := range values {
		rawName, list, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --seed-team %q (want name=node1,node2)", v)
		}
		team := sanitize.TeamName(rawName)
		if team == "" {
			return nil, fmt.Errorf("%w: %q", teams.ErrEmptyTeamName, rawName)
		}
		if _, dup := seeds[team]; dup {
			return nil, fmt.Errorf("%w: %s", teams.ErrDuplicateTeam, team)
		}
		nodes := []string{}
		for _, n := range strings.Split(list, ",") {
			if id := sanitize.NodeID(n); id != "" {
				nodes = append(nodes, id)
			}
		}
		seeds[team] = nodes
	}
	return seeds, nil
}

func mergeSeeds(dst, src spreading.SeedSet) error {
	for team, nodes := range src {
		if _, dup := dst[team]; dup {
			return fmt.Errorf("%w: %s", teams.ErrDuplicateTeam, team)
		}
		dst[team] = nodes
	}
	return nil
}

// writeJournal saves the round journal when asked to and returns its path.
func writeJournal(cmd *cobra.Command, root, graphName string, g *graph.Graph, res *spreading.Result) (string, error) {
	path, _ := cmd.Flags().GetString("journal")
	save, _ := cmd.Flags().GetBool("save-journal")
	formatName, _ := cmd.Flags().GetString("journal-format")
	if path == "" && !save {
		return "", nil
	}

	format, err := journal.ParseFormat(formatName)
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(store.LocalContagionPath(root), "runs", journal.DefaultName(graphName, time.Now(), format))
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	allowed, err := pathutil.DefaultAllowedRunDirsWithProjectRoot(absRoot)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving journal path: %w", err)
	}
	if err := journal.Save(absPath, allowed, g, res.History, format); err != nil {
		return "", err
	}
	return absPath, nil
}

// writeRender renders the final coloring to --output or stdout. With --json
// and no --output the rendering is embedded in the report instead.
func writeRender(cmd *cobra.Command, g *graph.Graph, res *spreading.Result, report *runReport) error {
	formatName, _ := cmd.Flags().GetString("render")
	output, _ := cmd.Flags().GetString("output")
	jsonOut, _ := cmd.Flags().GetBool("json")
	if formatName == "" {
		return nil
	}
	format, err := visualization.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case visualization.FormatDOT:
		data = []byte(visualization.RenderDOT(g, res.Final))
	case visualization.FormatJSON:
		rendered := visualization.RenderJSON(g, res.Final)
		if jsonOut && output == "" {
			report.Render = rendered
			return nil
		}
		if data, err = json.MarshalIndent(rendered, "", "  "); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		data = append(data, '\n')
	}

	if output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write render: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r runReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Graph %s, model %s, seed %d\n", r.Graph, r.Model, r.Seed)
	fmt.Fprintf(out, "Finished after %d round(s) of %d: %s\n\n", r.Rounds, r.Cap-1, r.Termination)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLACE\tTEAM\tNODES\tPOINTS")
	for _, s := range r.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", s.Place, s.Team, s.Nodes, s.Points)
	}
	tw.Flush()

	for _, rej := range r.Rejected {
		fmt.Fprintf(out, "\nDiscarded: %s\n", rej)
	}
	if r.Journal != "" {
		fmt.Fprintf(out, "\nJournal written to %s\n", pathutil.RedactPath(r.Journal))
	}
}
