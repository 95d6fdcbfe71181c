package ranking

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/coloring"
)

func TestStandings(t *testing.T) {
	view := coloring.TeamView{
		"amber": {"1", "2", "3"},
		"blue":  {"4", "5"},
		"cyan":  {"6", "7"},
		"dune":  {"8"},
		"empty": {},
		"frost": {"9", "10", "11"},
	}

	want := []Standing{
		{Team: "amber", Nodes: 3, Place: 1, Points: 20},
		{Team: "frost", Nodes: 3, Place: 1, Points: 20},
		{Team: "blue", Nodes: 2, Place: 3, Points: 12},
		{Team: "cyan", Nodes: 2, Place: 3, Points: 12},
		{Team: "dune", Nodes: 1, Place: 5, Points: 7},
		{Team: "empty", Nodes: 0, Place: 6, Points: 5},
	}
	if diff := cmp.Diff(want, Standings(view)); diff != "" {
		t.Errorf("Standings() mismatch (-want +got):\n%s", diff)
	}
}

func TestStandings_BeyondPointsTable(t *testing.T) {
	view := coloring.TeamView{}
	for i := 0; i < 12; i++ {
		team := coloring.Color("team" + strconv.Itoa(i))
		nodes := make([]string, 12-i)
		for k := range nodes {
			nodes[k] = strconv.Itoa(k)
		}
		view[team] = nodes
	}

	got := Standings(view)
	if len(got) != 12 {
		t.Fatalf("got %d standings, want 12", len(got))
	}
	if got[9].Place != 10 || got[9].Points != 1 {
		t.Errorf("10th place = %+v, want 1 point", got[9])
	}
	if got[10].Points != 0 || got[11].Points != 0 {
		t.Errorf("places beyond the table scored %d and %d", got[10].Points, got[11].Points)
	}
}

func TestStandingsWithPoints(t *testing.T) {
	view := coloring.TeamView{"x": {"1"}, "y": {"2", "3"}}
	got := StandingsWithPoints(view, map[int]int{1: 3, 2: 1})
	want := []Standing{
		{Team: "y", Nodes: 2, Place: 1, Points: 3},
		{Team: "x", Nodes: 1, Place: 2, Points: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StandingsWithPoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestStandings_Empty(t *testing.T) {
	if got := Standings(nil); len(got) != 0 {
		t.Errorf("Standings(nil) = %v, want empty", got)
	}
}
