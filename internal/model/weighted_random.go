package model

import (
	"math/rand/v2"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/graph"
)

// weightedRandom draws one ticket from a lottery in which every neighbor
// holds a ticket for its color. Drawing an uncolored ticket changes nothing.
type weightedRandom struct {
	selfWeight float64
	scope      constants.Scope
}

func (weightedRandom) Kind() Kind          { return WeightedRandom }
func (weightedRandom) Deterministic() bool { return false }

func (m weightedRandom) Next(g *graph.Graph, prev coloring.Assignment, node int, rng *rand.Rand) (coloring.Color, bool) {
	current := prev[node]

	var t tally
	for _, j := range g.Neighbors(node) {
		c := prev[j]
		if !c.IsTeam() && m.scope != constants.ScopeAll {
			continue
		}
		t.add(c, 1)
	}
	if current.IsTeam() && m.selfWeight > 0 {
		t.add(current, m.selfWeight)
	}
	if t.total == 0 {
		return current, false
	}
	return settle(current, t.draw(rng.Float64()))
}
