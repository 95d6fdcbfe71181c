package graph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromAdjacency_Symmetric(t *testing.T) {
	// b does not list a; symmetric insertion must add it.
	g, err := FromAdjacency([]string{"a", "b", "c"}, map[string][]string{
		"a": {"b", "c"},
		"b": {},
		"c": {"a"},
	})
	if err != nil {
		t.Fatalf("FromAdjacency: %v", err)
	}

	want := map[string][]string{
		"a": {"b", "c"},
		"b": {"a"},
		"c": {"a"},
	}
	if diff := cmp.Diff(want, g.Adjacency()); diff != "" {
		t.Errorf("adjacency mismatch (-want +got):\n%s", diff)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestFromAdjacency_Dangling(t *testing.T) {
	_, err := FromAdjacency(nil, map[string][]string{
		"a": {"b"},
		"b": {"a", "ghost"},
	})
	if !errors.Is(err, ErrGraphIntegrity) {
		t.Fatalf("expected ErrGraphIntegrity, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the dangling node, got %q", err)
	}
}

func TestFromAdjacency_SortedWhenNoOrder(t *testing.T) {
	g, err := FromAdjacency(nil, map[string][]string{
		"c": {"a"},
		"a": {},
		"b": {},
	})
	if err != nil {
		t.Fatalf("FromAdjacency: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, g.Nodes()); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
}

func TestFromAdjacency_DuplicateEdgesCollapse(t *testing.T) {
	g, err := FromAdjacency([]string{"x", "y"}, map[string][]string{
		"x": {"y", "y"},
		"y": {"x"},
	})
	if err != nil {
		t.Fatalf("FromAdjacency: %v", err)
	}
	i, _ := g.Index("x")
	if g.Degree(i) != 1 {
		t.Errorf("Degree(x) = %d, want 1", g.Degree(i))
	}
}

func TestBuilder_UnknownEndpoint(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode("a"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := b.AddEdge("a", "b"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
	if err := b.AddNode(""); !errors.Is(err, ErrEmptyNodeID) {
		t.Errorf("expected ErrEmptyNodeID, got %v", err)
	}
}

func TestBuilder_BuildIsSnapshot(t *testing.T) {
	b := NewBuilder()
	_ = b.AddNode("a")
	_ = b.AddNode("b")
	g := b.Build()

	_ = b.AddEdge("a", "b")
	_ = b.AddNode("c")

	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestGraph_NeighborIDs(t *testing.T) {
	g := Cycle(4)
	got, err := g.NeighborIDs("0")
	if err != nil {
		t.Fatalf("NeighborIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "3"}, got); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}

	if _, err := g.NeighborIDs("9"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestTopologies(t *testing.T) {
	tests := []struct {
		name      string
		g         *Graph
		wantNodes int
		wantEdges int
	}{
		{"cycle4", Cycle(4), 4, 4},
		{"cycle2 is a path", Cycle(2), 2, 1},
		{"complete3", Complete(3), 3, 3},
		{"complete5", Complete(5), 5, 10},
		{"star4", Star("C", "L1", "L2", "L3", "L4"), 5, 4},
		{"path3", Path(3), 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.g.Len() != tt.wantNodes {
				t.Errorf("Len() = %d, want %d", tt.g.Len(), tt.wantNodes)
			}
			if tt.g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", tt.g.EdgeCount(), tt.wantEdges)
			}
			if len(tt.g.Edges()) != tt.wantEdges {
				t.Errorf("len(Edges()) = %d, want %d", len(tt.g.Edges()), tt.wantEdges)
			}
		})
	}
}

func TestLoadJSON_PreservesOrderAndConvertsNumbers(t *testing.T) {
	doc := `{"10": [2, "3"], "2": [10], "3": ["10"]}`
	g, err := LoadJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if diff := cmp.Diff([]string{"10", "2", "3"}, g.Nodes()); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
	nbrs, _ := g.NeighborIDs("10")
	if diff := cmp.Diff([]string{"2", "3"}, nbrs); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"not an object", `[1, 2]`, nil},
		{"dangling", `{"a": ["b"]}`, ErrGraphIntegrity},
		{"float id", `{"a": [1.5]}`, nil},
		{"bool id", `{"a": [true]}`, nil},
		{"truncated", `{"a": ["a"]`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadJSON(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestLoadJSON_Empty(t *testing.T) {
	g, err := LoadJSON(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	g := Star("hub", "a", "b")
	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := LoadJSON(&buf)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if diff := cmp.Diff(g.Nodes(), back.Nodes()); diff != "" {
		t.Errorf("node order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Adjacency(), back.Adjacency()); diff != "" {
		t.Errorf("adjacency mismatch (-want +got):\n%s", diff)
	}
}

func TestFromNeighborLists_KeepsNeighborOrder(t *testing.T) {
	g, err := FromAdjacency([]string{"a", "b", "c"}, map[string][]string{
		"a": {"c", "b"},
		"b": {"c"},
		"c": {},
	})
	if err != nil {
		t.Fatalf("FromAdjacency: %v", err)
	}

	ids := g.Nodes()
	nbrs := make([][]int, g.Len())
	for i := range nbrs {
		nbrs[i] = append([]int(nil), g.Neighbors(i)...)
	}
	// reverse c's list; the rebuilt graph must keep exactly what it is given
	c := nbrs[2]
	c[0], c[1] = c[1], c[0]

	got, err := FromNeighborLists(ids, nbrs)
	if err != nil {
		t.Fatalf("FromNeighborLists: %v", err)
	}
	for i := range nbrs {
		if diff := cmp.Diff(nbrs[i], got.Neighbors(i)); diff != "" {
			t.Errorf("node %s neighbors (-want +got):\n%s", ids[i], diff)
		}
	}
}

func TestFromNeighborLists_Errors(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		nbrs [][]int
	}{
		{"length mismatch", []string{"a"}, nil},
		{"out of range", []string{"a"}, [][]int{{3}}},
		{"one sided", []string{"a", "b"}, [][]int{{1}, {}}},
		{"duplicate neighbor", []string{"a", "b"}, [][]int{{1, 1}, {0}}},
		{"duplicate id", []string{"a", "a"}, [][]int{{}, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromNeighborLists(tt.ids, tt.nbrs)
			if !errors.Is(err, ErrGraphIntegrity) {
				t.Errorf("err = %v, want ErrGraphIntegrity", err)
			}
		})
	}
}

func TestFromAdjacency_SymmetricInputKeepsNeighborOrder(t *testing.T) {
	adj := map[string][]string{
		"a": {"b"},
		"b": {"c", "a"},
		"c": {"b"},
	}
	g, err := FromAdjacency([]string{"a", "b", "c"}, adj)
	if err != nil {
		t.Fatalf("FromAdjacency: %v", err)
	}
	if diff := cmp.Diff(adj, g.Adjacency()); diff != "" {
		t.Errorf("adjacency mismatch (-want +got):\n%s", diff)
	}
}
