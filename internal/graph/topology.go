package graph

import "strconv"

// Cycle returns the n-node cycle 0-1-...-(n-1)-0 with decimal node IDs.
// n < 3 yields a path (n == 2) or a single node.
func Cycle(n int) *Graph {
	b := NewBuilder()
	for i := 0; i < n; i++ {
		_ = b.AddNode(strconv.Itoa(i))
	}
	for i := 0; i+1 < n; i++ {
		_ = b.AddEdge(strconv.Itoa(i), strconv.Itoa(i+1))
	}
	if n > 2 {
		_ = b.AddEdge(strconv.Itoa(n-1), "0")
	}
	return b.Build()
}

// Complete returns the complete graph on n nodes with decimal node IDs.
func Complete(n int) *Graph {
	b := NewBuilder()
	for i := 0; i < n; i++ {
		_ = b.AddNode(strconv.Itoa(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			_ = b.AddEdge(strconv.Itoa(i), strconv.Itoa(j))
		}
	}
	return b.Build()
}

// Star returns a star with the given center joined to every leaf.
// The center is inserted first.
func Star(center string, leaves ...string) *Graph {
	b := NewBuilder()
	_ = b.AddNode(center)
	for _, l := range leaves {
		_ = b.AddNode(l)
		_ = b.AddEdge(center, l)
	}
	return b.Build()
}

// Path returns the path 0-1-...-(n-1) with decimal node IDs.
func Path(n int) *Graph {
	b := NewBuilder()
	for i := 0; i < n; i++ {
		_ = b.AddNode(strconv.Itoa(i))
	}
	for i := 0; i+1 < n; i++ {
		_ = b.AddEdge(strconv.Itoa(i), strconv.Itoa(i+1))
	}
	return b.Build()
}
