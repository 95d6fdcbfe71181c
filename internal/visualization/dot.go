// Package visualization renders a graph and a team coloring in various
// output formats.
package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// ParseFormat converts a format flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatDOT:
		return FormatDOT, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown render format %q (want dot or json)", s)
}

// palette is assigned to teams in sorted name order and wraps around.
var palette = []string{
	"tomato",
	"steelblue",
	"mediumseagreen",
	"goldenrod",
	"orchid",
	"darkorange",
	"turquoise",
	"slateblue",
	"yellowgreen",
	"hotpink",
}

// uncoloredFill is used for nodes no team holds.
const uncoloredFill = "lightgray"

// TeamColors maps each team in view to a fill color.
func TeamColors(view coloring.TeamView) map[coloring.Color]string {
	out := make(map[coloring.Color]string, len(view))
	for i, team := range view.Teams() {
		out[team] = palette[i%len(palette)]
	}
	return out
}

// owners inverts view into node ID -> team.
func owners(view coloring.TeamView) map[string]coloring.Color {
	out := make(map[string]coloring.Color)
	for team, ids := range view {
		for _, id := range ids {
			out[id] = team
		}
	}
	return out
}

// RenderDOT produces a Graphviz DOT representation of g with every node
// filled in the color of the team that holds it in view. A nil view
// renders the bare graph.
func RenderDOT(g *graph.Graph, view coloring.TeamView) string {
	colors := TeamColors(view)
	owner := owners(view)

	var b strings.Builder
	b.WriteString("graph contagion {\n")
	b.WriteString("  layout=neato;\n")
	b.WriteString("  overlap=false;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n\n")

	for _, team := range view.Teams() {
		fmt.Fprintf(&b, "  // %s: %d node(s), %s\n", truncate(string(team), 40), len(view[team]), colors[team])
	}
	if len(view) > 0 {
		b.WriteString("\n")
	}

	for _, id := range g.Nodes() {
		fill := uncoloredFill
		tooltip := coloring.Uncolored.String()
		if team, ok := owner[id]; ok {
			fill = colors[team]
			tooltip = string(team)
		}
		fmt.Fprintf(&b, "  %q [label=%q, fillcolor=%q, tooltip=%q];\n",
			id, truncate(id, 20), fill, tooltip)
	}
	b.WriteString("\n")

	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %q -- %q;\n", e.A, e.B)
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON graph representation with nodes and edges
// arrays, each node tagged with its team ("" when uncolored).
func RenderJSON(g *graph.Graph, view coloring.TeamView) map[string]interface{} {
	colors := TeamColors(view)
	owner := owners(view)

	jsonNodes := make([]map[string]interface{}, 0, g.Len())
	for i, id := range g.Nodes() {
		team := owner[id]
		fill := uncoloredFill
		if team != "" {
			fill = colors[team]
		}
		jsonNodes = append(jsonNodes, map[string]interface{}{
			"id":     id,
			"team":   string(team),
			"color":  fill,
			"degree": g.Degree(i),
		})
	}

	edges := g.Edges()
	jsonEdges := make([]map[string]interface{}, 0, len(edges))
	for _, e := range edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source": e.A,
			"target": e.B,
		})
	}

	teams := make(map[string]interface{}, len(view))
	for team, size := range view.Sizes() {
		teams[string(team)] = map[string]interface{}{
			"color": colors[team],
			"nodes": size,
		}
	}

	return map[string]interface{}{
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"teams":      teams,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
