// Package backup archives every graph in a store into one file and restores
// archives back into a store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/store"
)

// filePrefix starts the name of every generated archive.
const filePrefix = "contagion-backup-"

// Archive is the payload of a backup file.
type Archive struct {
	CreatedAt time.Time      `json:"created_at"`
	Graphs    []ArchiveGraph `json:"graphs"`
}

// ArchiveGraph is one stored graph in index form, so neighbor order
// survives a round trip.
type ArchiveGraph struct {
	Name      string    `json:"name"`
	IDs       []string  `json:"ids"`
	Neighbors [][]int   `json:"neighbors"`
	CreatedAt time.Time `json:"created_at"`
}

// Graph rebuilds the archived graph.
func (a ArchiveGraph) Graph() (*graph.Graph, error) {
	g, err := graph.FromNeighborLists(a.IDs, a.Neighbors)
	if err != nil {
		return nil, fmt.Errorf("graph %s: %w", a.Name, err)
	}
	return g, nil
}

// DefaultDir returns ~/.contagion/backups.
func DefaultDir() (string, error) {
	dir, err := store.GlobalContagionPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "backups"), nil
}

// GeneratePath returns a timestamped archive path in dir.
func GeneratePath(dir string, at time.Time) string {
	return filepath.Join(dir, filePrefix+at.UTC().Format("20060102-150405")+".json.gz")
}

// Backup writes every graph in gs to path and returns the archive written.
func Backup(ctx context.Context, gs store.GraphStore, path string) (*Archive, error) {
	infos, err := gs.ListGraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	archive := &Archive{
		CreatedAt: time.Now().UTC(),
		Graphs:    make([]ArchiveGraph, 0, len(infos)),
	}
	for _, info := range infos {
		g, err := gs.LoadGraph(ctx, info.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load graph %s: %w", info.Name, err)
		}
		nbrs := make([][]int, g.Len())
		for i := range nbrs {
			nbrs[i] = g.Neighbors(i)
		}
		archive.Graphs = append(archive.Graphs, ArchiveGraph{
			Name:      info.Name,
			IDs:       g.Nodes(),
			Neighbors: nbrs,
			CreatedAt: info.CreatedAt,
		})
	}

	if err := Write(path, archive); err != nil {
		return nil, err
	}
	return archive, nil
}

// RestoreMode controls how restore treats graphs already in the store.
type RestoreMode string

const (
	// RestoreMerge keeps existing graphs and skips archived ones with the
	// same name.
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace deletes every stored graph before restoring.
	RestoreReplace RestoreMode = "replace"
)

// ParseRestoreMode resolves a mode name. Empty means RestoreMerge.
func ParseRestoreMode(s string) (RestoreMode, error) {
	switch RestoreMode(s) {
	case "", RestoreMerge:
		return RestoreMerge, nil
	case RestoreReplace:
		return RestoreReplace, nil
	}
	return "", fmt.Errorf("invalid restore mode %q (valid: merge, replace)", s)
}

// RestoreResult counts what a restore did.
type RestoreResult struct {
	Restored []string `json:"restored"`
	Skipped  []string `json:"skipped,omitempty"`
	Deleted  []string `json:"deleted,omitempty"`
}

// Restore reads the archive at path into gs. The archive is fully read and
// validated before the store is touched.
func Restore(ctx context.Context, gs store.GraphStore, path string, mode RestoreMode) (*RestoreResult, error) {
	archive, err := Read(path)
	if err != nil {
		return nil, err
	}
	graphs := make([]*graph.Graph, len(archive.Graphs))
	for i, ag := range archive.Graphs {
		if err := store.ValidateName(ag.Name); err != nil {
			return nil, err
		}
		if graphs[i], err = ag.Graph(); err != nil {
			return nil, err
		}
	}

	existing := make(map[string]bool)
	infos, err := gs.ListGraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	for _, info := range infos {
		existing[info.Name] = true
	}

	result := &RestoreResult{Restored: []string{}}
	if mode == RestoreReplace {
		for _, info := range infos {
			if err := gs.DeleteGraph(ctx, info.Name); err != nil && !errors.Is(err, store.ErrGraphNotFound) {
				return nil, fmt.Errorf("failed to delete graph %s: %w", info.Name, err)
			}
			result.Deleted = append(result.Deleted, info.Name)
		}
		clear(existing)
	}

	for i, ag := range archive.Graphs {
		if existing[ag.Name] {
			result.Skipped = append(result.Skipped, ag.Name)
			continue
		}
		if err := gs.SaveGraph(ctx, ag.Name, graphs[i]); err != nil {
			return nil, fmt.Errorf("failed to restore graph %s: %w", ag.Name, err)
		}
		result.Restored = append(result.Restored, ag.Name)
	}
	return result, nil
}

// Info describes an archive file in a backup directory.
type Info struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// List returns the generated archives in dir, newest first. A missing
// directory holds no archives.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Path: filepath.Join(dir, e.Name()), Size: fi.Size(), ModTime: fi.ModTime()})
	}

	// Timestamps are embedded in the names.
	sort.Slice(out, func(i, j int) bool {
		return filepath.Base(out[i].Path) > filepath.Base(out[j].Path)
	})
	return out, nil
}

// Rotate keeps the newest keep archives in dir and deletes the rest. It
// returns the deleted paths. keep < 1 deletes nothing.
func Rotate(dir string, keep int) ([]string, error) {
	if keep < 1 {
		return nil, nil
	}
	archives, err := List(dir)
	if err != nil {
		return nil, err
	}
	if len(archives) <= keep {
		return nil, nil
	}

	var deleted []string
	for _, a := range archives[keep:] {
		if err := os.Remove(a.Path); err != nil {
			return deleted, fmt.Errorf("removing %s: %w", filepath.Base(a.Path), err)
		}
		deleted = append(deleted, a.Path)
	}
	return deleted, nil
}
