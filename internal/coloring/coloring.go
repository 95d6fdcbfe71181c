// Package coloring defines team colors, the per-node color Assignment that
// the engine double-buffers each round, round diffs, and the derived
// team-to-nodes view used for stability checks and reporting.
package coloring

import (
	"sort"

	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/graph"
)

// Color is the label a node carries: a team name, or one of the sentinels.
type Color string

const (
	// Uncolored marks a node no team owns.
	Uncolored Color = constants.UncoloredName

	// Conflict marks a node claimed by several teams while seeds are resolved.
	// It never survives into an Assignment handed to a model or to callers.
	Conflict Color = constants.ConflictName
)

// IsTeam reports whether c names a team rather than a sentinel.
func (c Color) IsTeam() bool {
	return c != Uncolored && c != Conflict
}

// String returns the team name, or "<uncolored>" / "<conflict>".
func (c Color) String() string {
	switch c {
	case Uncolored:
		return "<uncolored>"
	case Conflict:
		return "<conflict>"
	}
	return string(c)
}

// Assignment holds the current color of every node, indexed by the graph's
// node index.
type Assignment []Color

// NewAssignment returns an all-Uncolored assignment for n nodes.
func NewAssignment(n int) Assignment {
	return make(Assignment, n)
}

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Colored returns the number of nodes holding a team color.
func (a Assignment) Colored() int {
	n := 0
	for _, c := range a {
		if c.IsTeam() {
			n++
		}
	}
	return n
}

// Diff records the nodes whose color changed in one round, keyed by node ID.
type Diff map[string]Color

// TeamView maps each team to the IDs of the nodes it holds.
// Node lists are ordered by graph insertion order.
type TeamView map[Color][]string

// ViewOf derives the team view of a full assignment. Uncolored nodes are
// absent from every team.
func ViewOf(g *graph.Graph, a Assignment) TeamView {
	v := make(TeamView)
	for i, c := range a {
		if !c.IsTeam() {
			continue
		}
		v[c] = append(v[c], g.ID(i))
	}
	return v
}

// View derives the team view of a diff. Node lists follow graph order;
// IDs unknown to g sort after known ones, lexicographically.
func (d Diff) View(g *graph.Graph) TeamView {
	v := make(TeamView)
	for id, c := range d {
		if !c.IsTeam() {
			continue
		}
		v[c] = append(v[c], id)
	}
	for _, ids := range v {
		sortByGraph(g, ids)
	}
	return v
}

func sortByGraph(g *graph.Graph, ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, aok := g.Index(ids[i])
		b, bok := g.Index(ids[j])
		switch {
		case aok && bok:
			return a < b
		case aok != bok:
			return aok
		default:
			return ids[i] < ids[j]
		}
	})
}

// WithTeams returns v with an empty entry added for every listed team that
// holds no node. v itself is not modified.
func (v TeamView) WithTeams(teams []Color) TeamView {
	out := make(TeamView, len(v)+len(teams))
	for c, ids := range v {
		out[c] = ids
	}
	for _, c := range teams {
		if _, ok := out[c]; !ok && c.IsTeam() {
			out[c] = []string{}
		}
	}
	return out
}

// Teams returns the teams present in v, sorted by name.
func (v TeamView) Teams() []Color {
	out := make([]Color, 0, len(v))
	for c := range v {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Sizes returns the number of distinct nodes each team holds.
func (v TeamView) Sizes() map[Color]int {
	out := make(map[Color]int, len(v))
	for c, ids := range v {
		out[c] = len(toSet(ids))
	}
	return out
}

// Equal compares two views team by team as sets: node order and duplicates
// inside a team's list are ignored, and a missing team equals an empty one.
func (v TeamView) Equal(o TeamView) bool {
	for c := range v {
		if !sameSet(v[c], o[c]) {
			return false
		}
	}
	for c := range o {
		if _, seen := v[c]; !seen && len(o[c]) > 0 {
			return false
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
