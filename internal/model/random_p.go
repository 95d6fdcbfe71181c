package model

import (
	"math/rand/v2"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

// randomP lets every colored neighbor infect the node with probability p.
// One infection wins; a second infection in the same round cancels the first
// and the node keeps its original color.
type randomP struct {
	p float64
}

func (randomP) Kind() Kind          { return RandomP }
func (randomP) Deterministic() bool { return false }

func (m randomP) Next(g *graph.Graph, prev coloring.Assignment, node int, rng *rand.Rand) (coloring.Color, bool) {
	original := prev[node]
	candidate := original
	infected := false

	for _, j := range g.Neighbors(node) {
		c := prev[j]
		if !c.IsTeam() {
			continue
		}
		if rng.Float64() >= m.p {
			continue
		}
		if infected {
			candidate = original
		} else {
			candidate = c
			infected = true
		}
	}
	return settle(original, candidate)
}
