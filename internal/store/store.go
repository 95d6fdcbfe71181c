// Package store defines the GraphStore interface for saving and loading
// named graphs.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nvandessel/contagion/internal/graph"
)

var (
	// ErrGraphNotFound is returned when no graph is stored under a name.
	ErrGraphNotFound = errors.New("store: graph not found")

	// ErrInvalidName is returned for a graph name that cannot be stored.
	ErrInvalidName = errors.New("store: invalid graph name")
)

// GraphInfo summarizes a stored graph.
type GraphInfo struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
}

// GraphStore persists graphs under a name. Saving an existing name replaces
// the stored graph. Loaded graphs keep node order and neighbor order.
type GraphStore interface {
	SaveGraph(ctx context.Context, name string, g *graph.Graph) error
	LoadGraph(ctx context.Context, name string) (*graph.Graph, error)
	ListGraphs(ctx context.Context) ([]GraphInfo, error)
	DeleteGraph(ctx context.Context, name string) error
	Close() error
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateName checks that name is usable as a graph name in every store,
// including as a file name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q (letters, digits, '.', '_', '-'; at most 128)", ErrInvalidName, name)
	}
	return nil
}

// snapshot is the index form of a graph shared by the store implementations.
type snapshot struct {
	IDs       []string  `json:"ids"`
	Neighbors [][]int   `json:"neighbors"`
	CreatedAt time.Time `json:"created_at"`
}

func snapshotOf(g *graph.Graph, now time.Time) snapshot {
	s := snapshot{
		IDs:       g.Nodes(),
		Neighbors: make([][]int, g.Len()),
		CreatedAt: now.UTC(),
	}
	for i := range s.Neighbors {
		s.Neighbors[i] = append([]int{}, g.Neighbors(i)...)
	}
	return s
}

func (s snapshot) graph() (*graph.Graph, error) {
	return graph.FromNeighborLists(s.IDs, s.Neighbors)
}

func (s snapshot) info(name string) GraphInfo {
	edges := 0
	for i, list := range s.Neighbors {
		for _, j := range list {
			if j >= i {
				edges++
			}
		}
	}
	return GraphInfo{Name: name, Nodes: len(s.IDs), Edges: edges, CreatedAt: s.CreatedAt}
}

// Open opens the store for a backend name: "sqlite" (the default, at
// dbPath), "file" (under projectRoot) or "memory".
func Open(backend, projectRoot, dbPath string) (GraphStore, error) {
	switch backend {
	case "", "sqlite":
		s, err := NewSQLiteGraphStore(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	case "file":
		s, err := NewFileGraphStore(projectRoot)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	case "memory":
		return NewInMemoryGraphStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
