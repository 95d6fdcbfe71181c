package simulation_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/model"
	"github.com/nvandessel/contagion/internal/simulation"
	"github.com/nvandessel/contagion/internal/spreading"
)

func configFor(kind model.Kind) *spreading.Config {
	cfg := spreading.DefaultConfig()
	cfg.Model = model.DefaultOptions(kind)
	return &cfg
}

// TestE2EFourCycleStandoff: two teams on opposite corners of a 4-cycle under
// majority_colored. Each uncolored node sees one of each color, so nothing
// moves and the run is stable after a single round.
func TestE2EFourCycleStandoff(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:   "four-cycle",
		Graph:  graph.Cycle(4),
		Seeds:  spreading.SeedSet{"TeamA": {"0"}, "TeamB": {"2"}},
		Config: configFor(model.MajorityColored),
	})

	simulation.AssertStable(t, result)
	simulation.AssertHistoryWithinCap(t, result)
	res := result.Last().Result
	if res.Rounds != 1 {
		t.Errorf("rounds = %d, want 1\n%s", res.Rounds, simulation.FormatRunDebug(result.Last()))
	}
	want := coloring.TeamView{"TeamA": {"0"}, "TeamB": {"2"}}
	if d := cmp.Diff(want, res.Final); d != "" {
		t.Errorf("final (-want +got):\n%s", d)
	}
}

// TestE2EConflictedTriangle: both teams claim the same node of a triangle.
// The claim cancels and no model can grow a color from nothing.
func TestE2EConflictedTriangle(t *testing.T) {
	for _, kind := range model.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			r := simulation.NewRunner(t)
			result := r.Run(simulation.Scenario{
				Name:   "triangle",
				Graph:  graph.Complete(3),
				Seeds:  spreading.SeedSet{"TeamA": {"0"}, "TeamB": {"0"}},
				Config: configFor(kind),
			})

			simulation.AssertNeverColored(t, result, "0")
			simulation.AssertTeamSize(t, result, "TeamA", 0)
			simulation.AssertTeamSize(t, result, "TeamB", 0)
			simulation.AssertStable(t, result)
		})
	}
}

// TestE2EStarCenterHeldByNobody: a star whose leaves split 2–2 under
// majority_all. The center sees no strict majority and stays uncolored.
func TestE2EStarCenterHeldByNobody(t *testing.T) {
	r := simulation.NewRunner(t)
	result := r.Run(simulation.Scenario{
		Name:   "star",
		Graph:  graph.Star("C", "L1", "L2", "L3", "L4"),
		Seeds:  spreading.SeedSet{"TeamA": {"L1", "L2"}, "TeamB": {"L3", "L4"}},
		Config: configFor(model.MajorityAll),
	})

	simulation.AssertStable(t, result)
	simulation.AssertNodeOwner(t, result, "C", coloring.Uncolored)
	simulation.AssertTeamSize(t, result, "TeamA", 2)
	simulation.AssertTeamSize(t, result, "TeamB", 2)
}
