package graph

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Builder accumulates nodes and undirected edges and freezes them into a
// Graph. Insertion order of nodes and of each node's neighbors is kept, and
// duplicate edges collapse into one. A Builder is not safe for concurrent use.
type Builder struct {
	// node ID -> *linkedhashset.Set of neighbor IDs
	adj *linkedhashmap.Map
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{adj: linkedhashmap.New()}
}

// AddNode adds id if it is not already present.
func (b *Builder) AddNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if _, found := b.adj.Get(id); !found {
		b.adj.Put(id, linkedhashset.New())
	}
	return nil
}

// AddEdge inserts the undirected edge a-b. Both endpoints must already exist;
// the edge is recorded on both sides so the result is always symmetric.
func (b *Builder) AddEdge(a, c string) error {
	as, ok := b.neighbors(a)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, a)
	}
	cs, ok := b.neighbors(c)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, c)
	}
	as.Add(c)
	cs.Add(a)
	return nil
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int {
	return b.adj.Size()
}

func (b *Builder) neighbors(id string) (*linkedhashset.Set, bool) {
	v, found := b.adj.Get(id)
	if !found {
		return nil, false
	}
	return v.(*linkedhashset.Set), true
}

// Build freezes the accumulated nodes and edges into an immutable Graph.
// The Builder may keep being used afterwards; later changes do not affect
// graphs already built.
func (b *Builder) Build() *Graph {
	keys := b.adj.Keys()
	g := &Graph{
		ids:   make([]string, len(keys)),
		index: make(map[string]int, len(keys)),
		adj:   make([][]int, len(keys)),
	}
	for i, k := range keys {
		id := k.(string)
		g.ids[i] = id
		g.index[id] = i
	}
	for i, id := range g.ids {
		set, _ := b.neighbors(id)
		vals := set.Values()
		nbrs := make([]int, len(vals))
		for k, v := range vals {
			nbrs[k] = g.index[v.(string)]
		}
		g.adj[i] = nbrs
	}
	return g
}

// FromAdjacency builds a Graph from an ID-keyed adjacency list.
//
// order fixes node insertion order; when nil the keys are taken in sorted
// order. Every key of adj must appear in order and vice versa. Each listed
// neighbor must itself be a key, otherwise ErrGraphIntegrity is returned.
// One-sided entries are made symmetric. Input that is already symmetric and
// duplicate-free keeps its neighbor order exactly.
func FromAdjacency(order []string, adj map[string][]string) (*Graph, error) {
	if order == nil {
		order = make([]string, 0, len(adj))
		for id := range adj {
			order = append(order, id)
		}
		sort.Strings(order)
	}
	if len(order) != len(adj) {
		return nil, fmt.Errorf("%w: order lists %d nodes, adjacency has %d", ErrGraphIntegrity, len(order), len(adj))
	}
	if g, err := exactAdjacency(order, adj); err == nil {
		return g, nil
	}

	b := NewBuilder()
	for _, id := range order {
		if _, ok := adj[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		if err := b.AddNode(id); err != nil {
			return nil, err
		}
	}
	for _, id := range order {
		for _, nbr := range adj[id] {
			if _, ok := adj[nbr]; !ok {
				return nil, fmt.Errorf("%w: %s lists %q", ErrGraphIntegrity, id, nbr)
			}
			if err := b.AddEdge(id, nbr); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// FromNeighborLists rebuilds a Graph from index-based neighbor lists, keeping
// the exact neighbor order given. It is the inverse of reading ID and
// Neighbors for every index. Lists must be symmetric, free of duplicates and
// in range, otherwise ErrGraphIntegrity is returned.
func FromNeighborLists(ids []string, nbrs [][]int) (*Graph, error) {
	if len(ids) != len(nbrs) {
		return nil, fmt.Errorf("%w: %d nodes but %d neighbor lists", ErrGraphIntegrity, len(ids), len(nbrs))
	}
	g := &Graph{
		ids:   make([]string, len(ids)),
		index: make(map[string]int, len(ids)),
		adj:   make([][]int, len(ids)),
	}
	for i, id := range ids {
		if id == "" {
			return nil, ErrEmptyNodeID
		}
		if _, dup := g.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate node %s", ErrGraphIntegrity, id)
		}
		g.ids[i] = id
		g.index[id] = i
	}

	seen := make(map[[2]int]struct{})
	for i, list := range nbrs {
		g.adj[i] = make([]int, len(list))
		for k, j := range list {
			if j < 0 || j >= len(ids) {
				return nil, fmt.Errorf("%w: %s lists index %d", ErrGraphIntegrity, ids[i], j)
			}
			if _, dup := seen[[2]int{i, j}]; dup {
				return nil, fmt.Errorf("%w: %s lists %s twice", ErrGraphIntegrity, ids[i], ids[j])
			}
			seen[[2]int{i, j}] = struct{}{}
			g.adj[i][k] = j
		}
	}
	for pair := range seen {
		if _, ok := seen[[2]int{pair[1], pair[0]}]; !ok {
			return nil, fmt.Errorf("%w: %s lists %s but not the reverse", ErrGraphIntegrity, ids[pair[0]], ids[pair[1]])
		}
	}
	return g, nil
}

// exactAdjacency succeeds only when adj needs no repair.
func exactAdjacency(order []string, adj map[string][]string) (*Graph, error) {
	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}
	nbrs := make([][]int, len(order))
	for i, id := range order {
		list, ok := adj[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
		nbrs[i] = make([]int, len(list))
		for k, nbr := range list {
			j, ok := index[nbr]
			if !ok {
				return nil, fmt.Errorf("%w: %s lists %q", ErrGraphIntegrity, id, nbr)
			}
			nbrs[i][k] = j
		}
	}
	return FromNeighborLists(order, nbrs)
}
