package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/contagion/internal/graph"
)

// FileGraphStore implements GraphStore with one JSON document per graph in
// .contagion/graphs/<name>.json. Thread-safe for concurrent access.
type FileGraphStore struct {
	mu        sync.RWMutex
	graphsDir string
	now       func() time.Time

	// LoadErrors tracks files skipped by ListGraphs because they could not
	// be read or decoded.
	LoadErrors []LoadError
}

// LoadError represents an error encountered while reading a graph file.
type LoadError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// NewFileGraphStore creates a new FileGraphStore rooted at projectRoot.
func NewFileGraphStore(projectRoot string) (*FileGraphStore, error) {
	graphsDir := filepath.Join(LocalContagionPath(projectRoot), "graphs")

	if err := os.MkdirAll(graphsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create graphs directory: %w", err)
	}

	return &FileGraphStore{
		graphsDir: graphsDir,
		now:       time.Now,
	}, nil
}

func (s *FileGraphStore) path(name string) string {
	return filepath.Join(s.graphsDir, name+".json")
}

// SaveGraph writes g to its file, replacing any previous version atomically.
func (s *FileGraphStore) SaveGraph(ctx context.Context, name string, g *graph.Graph) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(snapshotOf(g, s.now()))
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.graphsDir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write graph %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write graph %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace graph %s: %w", name, err)
	}
	return nil
}

// LoadGraph reads and re-validates the graph stored under name.
func (s *FileGraphStore) LoadGraph(ctx context.Context, name string) (*graph.Graph, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := s.read(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
		}
		return nil, err
	}
	return snap.graph()
}

func (s *FileGraphStore) read(path string) (snapshot, error) {
	var snap snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// ListGraphs returns every readable graph sorted by name. Unreadable files
// are skipped and recorded in LoadErrors.
func (s *FileGraphStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.graphsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read graphs directory: %w", err)
	}

	s.LoadErrors = s.LoadErrors[:0]
	results := make([]GraphInfo, 0, len(entries))
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		snap, err := s.read(filepath.Join(s.graphsDir, entry.Name()))
		if err != nil {
			s.LoadErrors = append(s.LoadErrors, LoadError{File: entry.Name(), Error: err.Error()})
			continue
		}
		results = append(results, snap.info(name))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// DeleteGraph removes the file of the graph stored under name.
func (s *FileGraphStore) DeleteGraph(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
		}
		return fmt.Errorf("failed to delete graph %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *FileGraphStore) Close() error {
	return nil
}
