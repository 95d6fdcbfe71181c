// Package graph holds the immutable, undirected adjacency structure the
// simulation runs on.
//
// Nodes are identified by strings and carry a dense index assigned in
// insertion order. All per-round work in the engine is done on indices;
// the string form only appears at the boundaries (input, diffs, output).
package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphIntegrity indicates an adjacency entry references a node that is
	// not itself a key of the graph.
	ErrGraphIntegrity = errors.New("graph: dangling neighbor reference")

	// ErrUnknownNode indicates an operation referenced a node that does not exist.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrEmptyNodeID indicates a node with an empty identifier.
	ErrEmptyNodeID = errors.New("graph: node ID is empty")
)

// Graph is a frozen undirected graph. It is safe for concurrent reads and
// is never mutated after Build.
type Graph struct {
	ids   []string       // index -> node ID, insertion order
	index map[string]int // node ID -> index
	adj   [][]int        // index -> neighbor indices, insertion order
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Nodes returns the node IDs in insertion order. The slice is a copy.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// ID returns the identifier of the node at index i.
func (g *Graph) ID(i int) string {
	return g.ids[i]
}

// Index returns the dense index for id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Neighbors returns the neighbor indices of node i. The returned slice is
// shared with the graph and must not be modified.
func (g *Graph) Neighbors(i int) []int {
	return g.adj[i]
}

// Degree returns the number of distinct neighbors of node i.
func (g *Graph) Degree(i int) int {
	return len(g.adj[i])
}

// NeighborIDs returns the neighbor identifiers of id in insertion order.
func (g *Graph) NeighborIDs(id string) ([]string, error) {
	i, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.ids[j]
	}
	return out, nil
}

// Edge is an undirected edge between two node IDs.
type Edge struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Edges returns every undirected edge exactly once. An edge is reported from
// the endpoint inserted first; self-loops are reported once.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for i, nbrs := range g.adj {
		for _, j := range nbrs {
			if j < i {
				continue
			}
			out = append(out, Edge{A: g.ids[i], B: g.ids[j]})
		}
	}
	return out
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for i, nbrs := range g.adj {
		for _, j := range nbrs {
			if j >= i {
				n++
			}
		}
	}
	return n
}

// Adjacency returns a copy of the graph as an ID-keyed adjacency list.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.ids))
	for i, id := range g.ids {
		nbrs := make([]string, len(g.adj[i]))
		for k, j := range g.adj[i] {
			nbrs[k] = g.ids[j]
		}
		out[id] = nbrs
	}
	return out
}
