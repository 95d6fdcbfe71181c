package model

import (
	"math/rand/v2"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

// majorityAll adopts the color held by a strict majority of all neighbors,
// uncolored neighbors included in the count.
type majorityAll struct {
	selfWeight float64
}

func (majorityAll) Kind() Kind          { return MajorityAll }
func (majorityAll) Deterministic() bool { return true }

func (m majorityAll) Next(g *graph.Graph, prev coloring.Assignment, node int, _ *rand.Rand) (coloring.Color, bool) {
	current := prev[node]
	nbrs := g.Neighbors(node)
	if len(nbrs) == 0 {
		return current, false
	}

	var t tally
	for _, j := range nbrs {
		t.add(prev[j], 1)
	}
	if current.IsTeam() && m.selfWeight > 0 {
		t.add(current, m.selfWeight)
	}

	best, weight, _, tied := t.top()
	if tied || !best.IsTeam() || weight <= float64(len(nbrs))/2 {
		return current, false
	}
	return settle(current, best)
}

// majorityColored adopts the color held by at least half of the colored
// neighbors. A shared lead is not a majority.
type majorityColored struct{}

func (majorityColored) Kind() Kind          { return MajorityColored }
func (majorityColored) Deterministic() bool { return true }

func (majorityColored) Next(g *graph.Graph, prev coloring.Assignment, node int, _ *rand.Rand) (coloring.Color, bool) {
	current := prev[node]

	var t tally
	colored := 0
	for _, j := range g.Neighbors(node) {
		if c := prev[j]; c.IsTeam() {
			t.add(c, 1)
			colored++
		}
	}
	if colored == 0 {
		return current, false
	}

	best, weight, _, tied := t.top()
	if tied || weight < float64(colored)/2 {
		return current, false
	}
	return settle(current, best)
}
