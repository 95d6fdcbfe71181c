package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// LoadJSON reads an adjacency-list graph of the form
//
//	{"0": ["1", "2"], "1": [0, 2], ...}
//
// Node IDs may be JSON strings or integers; integers are kept in their
// decimal form. Node order follows the order of keys in the document.
func LoadJSON(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("reading graph: expected object, got %v", tok)
	}

	var order []string
	adj := make(map[string][]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading graph: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("reading graph: unexpected key %v", keyTok)
		}

		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading neighbors of %s: %w", key, err)
		}
		nbrs := make([]string, 0, len(raw))
		for _, v := range raw {
			id, err := nodeID(v)
			if err != nil {
				return nil, fmt.Errorf("reading neighbors of %s: %w", key, err)
			}
			nbrs = append(nbrs, id)
		}

		if _, dup := adj[key]; !dup {
			order = append(order, key)
		}
		adj[key] = append(adj[key], nbrs...)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading graph: %w", err)
	}

	if order == nil {
		order = []string{}
	}
	return FromAdjacency(order, adj)
}

// LoadJSONFile reads a graph file with LoadJSON.
func LoadJSONFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph file: %w", err)
	}
	defer f.Close()
	return LoadJSON(f)
}

func nodeID(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		if _, err := x.Int64(); err != nil {
			return "", fmt.Errorf("node ID %s is not an integer", x)
		}
		return x.String(), nil
	default:
		return "", fmt.Errorf("unsupported node ID %v (%T)", v, v)
	}
}

// WriteJSON writes g in the format accepted by LoadJSON, keys in node order.
func WriteJSON(w io.Writer, g *Graph) error {
	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, id := range g.ids {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		key, err := json.Marshal(id)
		if err != nil {
			return err
		}
		nbrs := make([]string, len(g.adj[i]))
		for k, j := range g.adj[i] {
			nbrs[k] = g.ids[j]
		}
		val, err := json.Marshal(nbrs)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s:%s", key, val); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}
