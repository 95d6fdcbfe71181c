package simulation

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/journal"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/spreading"
	"github.com/nvandessel/contagion/internal/store"
)

// Runner orchestrates multi-run simulation experiments against a real
// graph store and spreading engine.
type Runner struct {
	t     *testing.T
	store *store.SQLiteGraphStore
}

// NewRunner creates a simulation runner with an isolated SQLite store
// and sandboxed HOME directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	s, err := store.NewSQLiteGraphStore(filepath.Join(tmpDir, store.DBFileName))
	if err != nil {
		t.Fatalf("NewRunner: failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &Runner{t: t, store: s}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	name := scenario.Name
	if name == "" {
		name = "scenario"
	}

	// Phase 1: Store the graph.
	if scenario.Graph == nil {
		r.t.Fatalf("scenario %s: no graph", name)
	}
	if err := r.store.SaveGraph(ctx, name, scenario.Graph); err != nil {
		r.t.Fatalf("scenario %s: SaveGraph: %v", name, err)
	}

	// Phase 2: Configure the engine.
	cfg := spreading.DefaultConfig()
	if scenario.Config != nil {
		cfg = *scenario.Config
	}
	runs := scenario.Runs
	if runs <= 0 {
		runs = 1
	}

	// Phase 3: Play the runs.
	results := make([]RunResult, runs)
	for i := 0; i < runs; i++ {
		if scenario.BeforeRun != nil {
			scenario.BeforeRun(i, r.store)
		}
		runCfg := cfg
		if runs > 1 || runCfg.Seed == nil {
			seed := scenario.BaseSeed + uint64(i)
			runCfg.Seed = &seed
		}
		results[i] = r.runOnce(ctx, i, name, runCfg, scenario.Seeds)
	}

	return SimulationResult{
		Name:  name,
		Runs:  results,
		Store: r.store,
	}
}

// runOnce plays a single run through the pipeline and checks that its
// history survives a journal round trip.
func (r *Runner) runOnce(ctx context.Context, index int, name string, cfg spreading.Config, seeds spreading.SeedSet) RunResult {
	r.t.Helper()

	res, err := spreading.NewPipeline(r.store, cfg).Run(ctx, name, seeds)
	if err != nil {
		r.t.Fatalf("run %d: Pipeline.Run: %v", index, err)
	}

	g, err := r.store.LoadGraph(ctx, name)
	if err != nil {
		r.t.Fatalf("run %d: LoadGraph: %v", index, err)
	}
	var buf bytes.Buffer
	if err := journal.WriteJSON(&buf, g, res.History); err != nil {
		r.t.Fatalf("run %d: journal.WriteJSON: %v", index, err)
	}
	replayed, err := journal.Read(&buf)
	if err != nil {
		r.t.Fatalf("run %d: journal.Read: %v", index, err)
	}
	if d := cmp.Diff(res.History, replayed); d != "" {
		r.t.Fatalf("run %d: journal round trip changed history (-want +got):\n%s", index, d)
	}

	return RunResult{
		Index:     index,
		Result:    res,
		Standings: ranking.Standings(res.Final),
	}
}

// FormatRunDebug returns a debug string for a run result.
func FormatRunDebug(rr RunResult) string {
	var b strings.Builder
	res := rr.Result
	fmt.Fprintf(&b, "Run %d: seed=%d rounds=%d cap=%d termination=%s\n",
		rr.Index, res.Seed, res.Rounds, res.Cap, res.Termination)
	for _, s := range rr.Standings {
		fmt.Fprintf(&b, "  %d. %s: %d node(s), %d point(s)\n", s.Place, s.Team, s.Nodes, s.Points)
	}
	for round, diff := range res.History {
		fmt.Fprintf(&b, "  round %d: %d change(s)\n", round, len(diff))
	}
	return b.String()
}
