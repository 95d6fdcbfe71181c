package simulation

import (
	"testing"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/spreading"
)

// AssertStable asserts that every run ended because the coloring stopped
// changing, not because the round cap ran out.
func AssertStable(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Runs {
		if rr.Result.Termination != spreading.TerminationStable {
			t.Errorf("AssertStable: run %d ended with %s after %d rounds", rr.Index, rr.Result.Termination, rr.Result.Rounds)
		}
	}
}

// AssertHistoryWithinCap asserts that no run recorded more rounds than its
// cap allows, round 0 included.
func AssertHistoryWithinCap(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Runs {
		res := rr.Result
		if len(res.History) > res.Cap {
			t.Errorf("AssertHistoryWithinCap: run %d: history %d > cap %d", rr.Index, len(res.History), res.Cap)
		}
		if len(res.History) != res.Rounds+1 {
			t.Errorf("AssertHistoryWithinCap: run %d: history %d != rounds %d + 1", rr.Index, len(res.History), res.Rounds)
		}
	}
}

// AssertTeamSize asserts that team holds exactly want nodes at the end of
// every run.
func AssertTeamSize(t *testing.T, result SimulationResult, team coloring.Color, want int) {
	t.Helper()
	for _, rr := range result.Runs {
		if got := rr.Result.Sizes()[team]; got != want {
			t.Errorf("AssertTeamSize: run %d: team %s holds %d nodes, want %d", rr.Index, team, got, want)
		}
	}
}

// AssertNodeOwner asserts that node ends every run held by team.
// Pass coloring.Uncolored to assert nobody holds it.
func AssertNodeOwner(t *testing.T, result SimulationResult, node string, team coloring.Color) {
	t.Helper()
	for _, rr := range result.Runs {
		if got := ownerOf(rr.Result.Final, node); got != team {
			t.Errorf("AssertNodeOwner: run %d: node %s held by %s, want %s", rr.Index, node, got, team)
		}
	}
}

// AssertNeverColored asserts that node does not appear in any diff of any
// run.
func AssertNeverColored(t *testing.T, result SimulationResult, node string) {
	t.Helper()
	for _, rr := range result.Runs {
		for round, diff := range rr.Result.History {
			if c, ok := diff[node]; ok {
				t.Errorf("AssertNeverColored: run %d round %d: node %s colored %s", rr.Index, round, node, c)
			}
		}
	}
}

// AssertNoUncoloring asserts that a colored node never goes back to
// Uncolored in any round.
func AssertNoUncoloring(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Runs {
		for round, diff := range rr.Result.History {
			for node, c := range diff {
				if !c.IsTeam() {
					t.Errorf("AssertNoUncoloring: run %d round %d: node %s became %s", rr.Index, round, node, c)
				}
			}
		}
	}
}

// AssertColoredMonotonic asserts that the number of colored nodes never
// decreases from one round to the next.
func AssertColoredMonotonic(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, rr := range result.Runs {
		owned := make(map[string]coloring.Color)
		prev := 0
		for round, diff := range rr.Result.History {
			for node, c := range diff {
				owned[node] = c
			}
			if len(owned) < prev {
				t.Errorf("AssertColoredMonotonic: run %d round %d: colored %d < %d", rr.Index, round, len(owned), prev)
			}
			prev = len(owned)
		}
	}
}

// AssertWinner asserts that team places first, alone, in the fraction of
// runs given by at least minFraction (e.g., 0.6 = 60%).
func AssertWinner(t *testing.T, result SimulationResult, team coloring.Color, minFraction float64) {
	t.Helper()
	wins := 0
	for _, rr := range result.Runs {
		s := rr.Standings
		if len(s) == 0 || s[0].Team != team || s[0].Place != 1 {
			continue
		}
		if len(s) > 1 && s[1].Place == 1 {
			continue
		}
		wins++
	}
	fraction := float64(wins) / float64(len(result.Runs))
	if fraction < minFraction {
		t.Errorf("AssertWinner: team %s won %.1f%% of runs (need %.1f%%)", team, fraction*100, minFraction*100)
	}
}

// AssertIdenticalRuns asserts that two results hold the same histories and
// final colorings run for run.
func AssertIdenticalRuns(t *testing.T, a, b SimulationResult) {
	t.Helper()
	if len(a.Runs) != len(b.Runs) {
		t.Fatalf("AssertIdenticalRuns: %d runs vs %d", len(a.Runs), len(b.Runs))
	}
	for i := range a.Runs {
		ra, rb := a.Runs[i].Result, b.Runs[i].Result
		if len(ra.History) != len(rb.History) {
			t.Errorf("AssertIdenticalRuns: run %d: history %d vs %d", i, len(ra.History), len(rb.History))
			continue
		}
		for round := range ra.History {
			if !sameDiff(ra.History[round], rb.History[round]) {
				t.Errorf("AssertIdenticalRuns: run %d round %d differs", i, round)
				break
			}
		}
		if !ra.Final.Equal(rb.Final) {
			t.Errorf("AssertIdenticalRuns: run %d: final colorings differ", i)
		}
	}
}

func ownerOf(view coloring.TeamView, node string) coloring.Color {
	for team, ids := range view {
		for _, id := range ids {
			if id == node {
				return team
			}
		}
	}
	return coloring.Uncolored
}

func sameDiff(a, b coloring.Diff) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
