package model

import (
	"math/rand/v2"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

// mostCommonColored adopts the plurality color among colored neighbors when
// it leads the runner-up strictly. A lone color wins unconditionally.
type mostCommonColored struct {
	selfWeight float64
}

func (mostCommonColored) Kind() Kind          { return MostCommonColored }
func (mostCommonColored) Deterministic() bool { return true }

func (m mostCommonColored) Next(g *graph.Graph, prev coloring.Assignment, node int, _ *rand.Rand) (coloring.Color, bool) {
	current := prev[node]

	var t tally
	for _, j := range g.Neighbors(node) {
		if c := prev[j]; c.IsTeam() {
			t.add(c, 1)
		}
	}
	if current.IsTeam() && m.selfWeight > 0 {
		t.add(current, m.selfWeight)
	}

	switch t.len() {
	case 0:
		return current, false
	case 1:
		return settle(current, t.colors[0])
	}

	best, weight, runner, _ := t.top()
	if weight <= runner {
		return current, false
	}
	return settle(current, best)
}
