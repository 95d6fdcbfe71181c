// Package store provides graph storage implementations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/contagion/internal/graph"
)

// SQLiteGraphStore implements GraphStore using SQLite for persistence.
// Nodes are stored with their insertion position and neighbor lists with
// their order, so a loaded graph is indistinguishable from the saved one.
type SQLiteGraphStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// NewSQLiteGraphStore opens (creating if needed) the database at dbPath.
func NewSQLiteGraphStore(dbPath string) (*SQLiteGraphStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteGraphStore{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteGraphStore) Path() string {
	return s.dbPath
}

// SaveGraph stores g under name, replacing any previous graph of that name.
func (s *SQLiteGraphStore) SaveGraph(ctx context.Context, name string, g *graph.Graph) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("graph is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades to nodes and neighbors.
	if _, err := tx.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to replace graph %s: %w", name, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO graphs (name, node_count, edge_count, created_at) VALUES (?, ?, ?, ?)`,
		name, g.Len(), g.EdgeCount(), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert graph %s: %w", name, err)
	}
	graphID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read graph id: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO graph_nodes (graph_id, position, node_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	nbrStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO graph_neighbors (graph_id, position, slot, neighbor) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare neighbor insert: %w", err)
	}
	defer nbrStmt.Close()

	for i := 0; i < g.Len(); i++ {
		if _, err := nodeStmt.ExecContext(ctx, graphID, i, g.ID(i)); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", g.ID(i), err)
		}
		for slot, j := range g.Neighbors(i) {
			if _, err := nbrStmt.ExecContext(ctx, graphID, i, slot, j); err != nil {
				return fmt.Errorf("failed to insert neighbor of %s: %w", g.ID(i), err)
			}
		}
	}

	return tx.Commit()
}

// LoadGraph rebuilds the graph stored under name. Stored rows pass through
// the same integrity checks as any other input.
func (s *SQLiteGraphStore) LoadGraph(ctx context.Context, name string) (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var graphID int64
	var nodeCount int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, node_count FROM graphs WHERE name = ?`, name).Scan(&graphID, &nodeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up graph %s: %w", name, err)
	}

	ids := make([]string, 0, nodeCount)
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, node_id FROM graph_nodes WHERE graph_id = ? ORDER BY position`, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	for rows.Next() {
		var pos int
		var id string
		if err := rows.Scan(&pos, &id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		if pos != len(ids) {
			rows.Close()
			return nil, fmt.Errorf("%w: graph %s has a gap at position %d", graph.ErrGraphIntegrity, name, len(ids))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}
	rows.Close()

	nbrs := make([][]int, len(ids))
	rows, err = s.db.QueryContext(ctx,
		`SELECT position, neighbor FROM graph_neighbors WHERE graph_id = ? ORDER BY position, slot`, graphID)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pos, nbr int
		if err := rows.Scan(&pos, &nbr); err != nil {
			return nil, fmt.Errorf("failed to scan neighbor: %w", err)
		}
		if pos < 0 || pos >= len(nbrs) {
			return nil, fmt.Errorf("%w: graph %s lists neighbors of missing position %d", graph.ErrGraphIntegrity, name, pos)
		}
		nbrs[pos] = append(nbrs[pos], nbr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read neighbors: %w", err)
	}

	return graph.FromNeighborLists(ids, nbrs)
}

// ListGraphs returns every stored graph sorted by name.
func (s *SQLiteGraphStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, node_count, edge_count, created_at FROM graphs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer rows.Close()

	results := make([]GraphInfo, 0)
	for rows.Next() {
		var info GraphInfo
		var createdAt string
		if err := rows.Scan(&info.Name, &info.Nodes, &info.Edges, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			info.CreatedAt = t
		}
		results = append(results, info)
	}
	return results, rows.Err()
}

// DeleteGraph removes the graph stored under name with its nodes and
// neighbor lists.
func (s *SQLiteGraphStore) DeleteGraph(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, name)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteGraphStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
