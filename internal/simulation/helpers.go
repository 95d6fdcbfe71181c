package simulation

import (
	"fmt"
	"strconv"

	"github.com/nvandessel/contagion/internal/graph"
)

// Grid returns a w×h lattice with node IDs "x,y" inserted row by row.
func Grid(w, h int) *graph.Graph {
	b := graph.NewBuilder()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_ = b.AddNode(cell(x, y))
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				_ = b.AddEdge(cell(x, y), cell(x+1, y))
			}
			if y+1 < h {
				_ = b.AddEdge(cell(x, y), cell(x, y+1))
			}
		}
	}
	return b.Build()
}

// Cell returns the node ID Grid uses for column x, row y.
func Cell(x, y int) string {
	return cell(x, y)
}

func cell(x, y int) string {
	return fmt.Sprintf("%d,%d", x, y)
}

// Barbell returns two k-cliques "a0".."a{k-1}" and "b0".."b{k-1}" joined
// by a single edge a0–b0.
func Barbell(k int) *graph.Graph {
	b := graph.NewBuilder()
	for _, side := range []string{"a", "b"} {
		for i := 0; i < k; i++ {
			_ = b.AddNode(side + strconv.Itoa(i))
		}
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				_ = b.AddEdge(side+strconv.Itoa(i), side+strconv.Itoa(j))
			}
		}
	}
	_ = b.AddEdge("a0", "b0")
	return b.Build()
}

// Range returns the decimal IDs from..to-1, matching graph.Path and
// graph.Cycle node names.
func Range(from, to int) []string {
	out := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
