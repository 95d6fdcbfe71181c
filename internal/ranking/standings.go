// Package ranking turns the final coloring of a run into Olympic-style
// standings: teams ordered by the number of nodes they hold, tied teams
// sharing a place, points awarded per place.
package ranking

import (
	"sort"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/constants"
)

// Standing is one team's result in a single run.
type Standing struct {
	Team   coloring.Color `json:"team"`
	Nodes  int            `json:"nodes"`
	Place  int            `json:"place"`
	Points int            `json:"points"`
}

// Standings ranks every team in view. Teams with equal node counts share the
// best place of the group and the points of that place; the next distinct
// count takes the place after the whole group (1, 1, 3). Ties are listed by
// team name.
func Standings(view coloring.TeamView) []Standing {
	return StandingsWithPoints(view, constants.OlympicPoints)
}

// StandingsWithPoints ranks like Standings using a custom points table.
// Places missing from the table score zero.
func StandingsWithPoints(view coloring.TeamView, points map[int]int) []Standing {
	sizes := view.Sizes()
	out := make([]Standing, 0, len(sizes))
	for team, n := range sizes {
		out = append(out, Standing{Team: team, Nodes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nodes != out[j].Nodes {
			return out[i].Nodes > out[j].Nodes
		}
		return out[i].Team < out[j].Team
	})

	place := 1
	for i := range out {
		if i > 0 && out[i].Nodes != out[i-1].Nodes {
			place = i + 1
		}
		out[i].Place = place
		out[i].Points = points[place]
	}
	return out
}
