// Package journal writes the round-by-round record of a run.
//
// The JSON form is a single object keyed by round number as a string, each
// round mapping team -> nodes that changed to that team:
//
//	{"0": {"red": ["1", "4"]}, "1": {"red": ["2"], "blue": ["7"]}, "2": {}}
//
// Keys appear in round order and teams in name order, so the same run
// always produces the same bytes. The JSONL form holds one round per line.
package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/pathutil"
)

// Format selects the journal encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatJSONL:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid journal format: %q (valid: json, jsonl)", s)
}

// Round is one JSONL line.
type Round struct {
	Round   int                 `json:"round"`
	Changes map[string][]string `json:"changes"`
}

// DefaultName returns "<graph>-<unix seconds>.<ext>".
func DefaultName(graphName string, at time.Time, format Format) string {
	return graphName + "-" + strconv.FormatInt(at.Unix(), 10) + "." + string(format)
}

// Write encodes history in the given format. Node lists follow graph order.
func Write(w io.Writer, g *graph.Graph, history []coloring.Diff, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, g, history)
	case FormatJSONL:
		return WriteJSONL(w, g, history)
	}
	return fmt.Errorf("invalid journal format: %q", format)
}

// WriteJSON writes history as one ordered JSON object.
func WriteJSON(w io.Writer, g *graph.Graph, history []coloring.Diff) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for r, diff := range history {
		if r > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", strconv.Itoa(r))
		if err := writeRound(&buf, diff.View(g)); err != nil {
			return fmt.Errorf("round %d: %w", r, err)
		}
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeRound(buf *bytes.Buffer, view coloring.TeamView) error {
	buf.WriteByte('{')
	for i, team := range view.Teams() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(team))
		if err != nil {
			return err
		}
		nodes, err := json.Marshal(view[team])
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(nodes)
	}
	buf.WriteByte('}')
	return nil
}

// WriteJSONL writes one Round per line.
func WriteJSONL(w io.Writer, g *graph.Graph, history []coloring.Diff) error {
	enc := json.NewEncoder(w)
	for r, diff := range history {
		view := diff.View(g)
		changes := make(map[string][]string, len(view))
		for team, nodes := range view {
			changes[string(team)] = nodes
		}
		if err := enc.Encode(Round{Round: r, Changes: changes}); err != nil {
			return fmt.Errorf("round %d: %w", r, err)
		}
	}
	return nil
}

// Read decodes a JSON journal back into per-round diffs. Rounds must be
// numbered 0..n-1 without gaps.
func Read(r io.Reader) ([]coloring.Diff, error) {
	var raw map[string]map[string][]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding journal: %w", err)
	}

	history := make([]coloring.Diff, len(raw))
	seen := make([]bool, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 || n >= len(raw) || seen[n] {
			return nil, fmt.Errorf("journal round key %q out of sequence", k)
		}
		seen[n] = true
		diff := make(coloring.Diff)
		for team, nodes := range raw[k] {
			for _, id := range nodes {
				diff[id] = coloring.Color(team)
			}
		}
		history[n] = diff
	}
	return history, nil
}

// Save writes the journal to path after checking that path lies within one
// of allowedDirs. Parent directories are created as needed.
func Save(path string, allowedDirs []string, g *graph.Graph, history []coloring.Diff, format Format) error {
	if err := pathutil.ValidatePath(path, allowedDirs); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating journal: %w", err)
	}
	if err := Write(f, g, history, format); err != nil {
		f.Close()
		return errors.Join(fmt.Errorf("writing journal %s: %w", pathutil.RedactPath(path), err), os.Remove(path))
	}
	return f.Close()
}
