package simulation

import (
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/spreading"
	"github.com/nvandessel/contagion/internal/store"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name  string
	Graph *graph.Graph
	Seeds spreading.SeedSet

	// Config overrides the default engine config. Its Seed field is ignored
	// when Runs > 1; run i then uses BaseSeed+i.
	Config *spreading.Config

	// Runs is the number of independent runs to play. 0 means 1.
	Runs int

	// BaseSeed is the RNG seed of the first run.
	BaseSeed uint64

	// BeforeRun, when non-nil, is called before each run executes.
	// Use this to manipulate the store between runs (e.g., replacing the
	// graph under the scenario's name).
	BeforeRun func(runIndex int, s *store.SQLiteGraphStore)
}

// RunResult captures the outcome of a single run.
type RunResult struct {
	Index     int
	Result    *spreading.Result
	Standings []ranking.Standing
}

// SimulationResult captures all runs and the final store state.
type SimulationResult struct {
	Name  string
	Runs  []RunResult
	Store *store.SQLiteGraphStore
}

// Last returns the final run.
func (s SimulationResult) Last() RunResult {
	return s.Runs[len(s.Runs)-1]
}
