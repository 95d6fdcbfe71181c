package spreading

import (
	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

// Termination is the reason a run stopped.
type Termination string

const (
	// TerminationStable means two consecutive full assignments matched.
	TerminationStable Termination = "stable"

	// TerminationRoundCap means the round budget ran out first.
	TerminationRoundCap Termination = "round_cap"
)

// Stable reports whether two consecutive full assignments give every team
// the same set of nodes. Whole assignments are compared, never diffs.
func Stable(g *graph.Graph, prev, next coloring.Assignment) bool {
	return coloring.ViewOf(g, prev).Equal(coloring.ViewOf(g, next))
}
