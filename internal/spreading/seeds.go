package spreading

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

var (
	// ErrInvalidSeed indicates a seed references a node absent from the graph.
	ErrInvalidSeed = errors.New("spreading: seed node not in graph")

	// ErrReservedTeam indicates a team name collides with a color sentinel.
	ErrReservedTeam = errors.New("spreading: reserved team name")
)

// SeedSet maps a team name to the nodes it selected before round 0.
type SeedSet map[string][]string

// Teams returns the seeding teams sorted by name, including teams that
// selected no nodes.
func (s SeedSet) Teams() []coloring.Color {
	out := make([]coloring.Color, 0, len(s))
	for team := range s {
		out = append(out, coloring.Color(team))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SeedError reports one seed node that is not part of the graph.
type SeedError struct {
	Team string
	Node string
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("team %s: seed node %q not in graph", e.Team, e.Node)
}

// Unwrap lets errors.Is match ErrInvalidSeed.
func (e *SeedError) Unwrap() error {
	return ErrInvalidSeed
}

// ValidateSeeds checks every team name and seed node against g. All problems
// are reported together, teams in sorted order.
func ValidateSeeds(g *graph.Graph, seeds SeedSet) error {
	var errs []error
	for _, team := range seeds.Teams() {
		if !team.IsTeam() {
			errs = append(errs, fmt.Errorf("%w: %q", ErrReservedTeam, string(team)))
			continue
		}
		for _, node := range seeds[string(team)] {
			if !g.Has(node) {
				errs = append(errs, &SeedError{Team: string(team), Node: node})
			}
		}
	}
	return errors.Join(errs...)
}

// ResolveSeeds turns the seed claims into the round-0 diff and the initial
// assignment. A node claimed by two or more distinct teams is a conflict:
// it starts uncolored and is left out of the diff. A team listing the same
// node twice is not a conflict. The outcome does not depend on the order in
// which teams or nodes are visited.
func ResolveSeeds(g *graph.Graph, seeds SeedSet) (coloring.Diff, coloring.Assignment, error) {
	if err := ValidateSeeds(g, seeds); err != nil {
		return nil, nil, err
	}

	initial := coloring.NewAssignment(g.Len())
	for _, team := range seeds.Teams() {
		for _, node := range seeds[string(team)] {
			i, _ := g.Index(node)
			switch initial[i] {
			case coloring.Uncolored:
				initial[i] = team
			case team, coloring.Conflict:
			default:
				initial[i] = coloring.Conflict
			}
		}
	}

	diff := make(coloring.Diff)
	for i, c := range initial {
		if c == coloring.Conflict {
			initial[i] = coloring.Uncolored
			continue
		}
		if c.IsTeam() {
			diff[g.ID(i)] = c
		}
	}
	return diff, initial, nil
}
