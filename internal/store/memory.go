package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nvandessel/contagion/internal/graph"
)

// InMemoryGraphStore implements GraphStore for testing and development.
type InMemoryGraphStore struct {
	mu     sync.RWMutex
	graphs map[string]snapshot
	now    func() time.Time
}

// NewInMemoryGraphStore creates a new in-memory store.
func NewInMemoryGraphStore() *InMemoryGraphStore {
	return &InMemoryGraphStore{
		graphs: make(map[string]snapshot),
		now:    time.Now,
	}
}

// SaveGraph stores a copy of g under name.
func (s *InMemoryGraphStore) SaveGraph(ctx context.Context, name string, g *graph.Graph) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs[name] = snapshotOf(g, s.now())
	return nil
}

// LoadGraph rebuilds the graph stored under name.
func (s *InMemoryGraphStore) LoadGraph(ctx context.Context, name string) (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.graphs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return snap.graph()
}

// ListGraphs returns every stored graph sorted by name.
func (s *InMemoryGraphStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]GraphInfo, 0, len(s.graphs))
	for name, snap := range s.graphs {
		results = append(results, snap.info(name))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// DeleteGraph removes the graph stored under name.
func (s *InMemoryGraphStore) DeleteGraph(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.graphs[name]; !exists {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	delete(s.graphs, name)
	return nil
}

// Close is a no-op for in-memory store.
func (s *InMemoryGraphStore) Close() error {
	return nil
}
