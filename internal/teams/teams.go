// Package teams reads team seed submissions from disk and screens them
// against a graph before they are handed to the engine.
//
// A submission is a text file holding one node identifier per line. The
// team name is the file's base name without extension. In a teams
// directory each team owns a subdirectory and its most recent submission
// for a graph is the lexically greatest file named "<graph>-*".
package teams

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/sanitize"
	"github.com/nvandessel/contagion/internal/spreading"
)

var (
	// ErrDuplicateTeam indicates two submissions resolve to the same team name.
	ErrDuplicateTeam = errors.New("teams: duplicate team name")

	// ErrEmptyTeamName indicates a file name that sanitizes to nothing.
	ErrEmptyTeamName = errors.New("teams: empty team name")

	// ErrNoSubmission indicates a team directory has no file for the graph.
	ErrNoSubmission = errors.New("teams: no submission for graph")
)

// ParseSelection reads one node identifier per line. Blank lines are
// skipped and repeated identifiers are kept once, in first-seen order.
func ParseSelection(r io.Reader) ([]string, error) {
	seen := linkedhashset.New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		id := sanitize.NodeID(sc.Text())
		if id == "" {
			continue
		}
		seen.Add(id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading selection: %w", err)
	}
	out := make([]string, 0, seen.Size())
	for _, v := range seen.Values() {
		out = append(out, v.(string))
	}
	return out, nil
}

// TeamNameFromPath derives a team name from a submission path.
func TeamNameFromPath(path string) (string, error) {
	base := filepath.Base(path)
	name := sanitize.TeamName(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyTeamName, path)
	}
	return name, nil
}

// LoadFile reads a single submission and returns its team name and nodes.
func LoadFile(path string) (string, []string, error) {
	team, err := TeamNameFromPath(path)
	if err != nil {
		return "", nil, err
	}
	nodes, err := readSelection(path)
	if err != nil {
		return "", nil, err
	}
	return team, nodes, nil
}

// LoadFiles reads each submission into a seed set keyed by team name.
func LoadFiles(paths []string) (spreading.SeedSet, error) {
	seeds := make(spreading.SeedSet, len(paths))
	for _, p := range paths {
		team, nodes, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if _, dup := seeds[team]; dup {
			return nil, fmt.Errorf("%w: %s (from %s)", ErrDuplicateTeam, team, p)
		}
		seeds[team] = nodes
	}
	return seeds, nil
}

// LatestSubmission returns the path of the newest submission in teamDir
// for graphName: the lexically greatest regular file whose name starts
// with graphName followed by a hyphen.
func LatestSubmission(teamDir, graphName string) (string, error) {
	entries, err := os.ReadDir(teamDir)
	if err != nil {
		return "", fmt.Errorf("reading team directory: %w", err)
	}
	prefix := graphName + "-"
	names := treeset.NewWithStringComparator()
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		names.Add(e.Name())
	}
	if names.Empty() {
		return "", fmt.Errorf("%w: %s in %s", ErrNoSubmission, graphName, teamDir)
	}
	it := names.Iterator()
	it.Last()
	return filepath.Join(teamDir, it.Value().(string)), nil
}

// LoadTeamsDir loads the latest submission of each named team under root
// (root/<team>/<graph>-*). A team without a submission selects no nodes.
func LoadTeamsDir(root, graphName string, names []string) (spreading.SeedSet, error) {
	seeds := make(spreading.SeedSet, len(names))
	for _, raw := range names {
		team := sanitize.TeamName(raw)
		if team == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyTeamName, raw)
		}
		if _, dup := seeds[team]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, team)
		}
		path, err := LatestSubmission(filepath.Join(root, team), graphName)
		if errors.Is(err, ErrNoSubmission) {
			seeds[team] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		nodes, err := readSelection(path)
		if err != nil {
			return nil, err
		}
		seeds[team] = nodes
	}
	return seeds, nil
}

// Rejection records a team whose submission was discarded.
type Rejection struct {
	Team    string   `json:"team"`
	Unknown []string `json:"unknown"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("team %s: %d unknown node(s), first %q", r.Team, len(r.Unknown), r.Unknown[0])
}

// Sanitize screens seeds against g. A team naming any node that is not in
// the graph keeps its place in the run but selects nothing. The returned
// set is a copy; rejections come back sorted by team.
func Sanitize(g *graph.Graph, seeds spreading.SeedSet) (spreading.SeedSet, []Rejection) {
	out := make(spreading.SeedSet, len(seeds))
	var rejected []Rejection
	for _, team := range seeds.Teams() {
		nodes := seeds[string(team)]
		var unknown []string
		for _, n := range nodes {
			if !g.Has(n) {
				unknown = append(unknown, n)
			}
		}
		if len(unknown) > 0 {
			rejected = append(rejected, Rejection{Team: string(team), Unknown: unknown})
			out[string(team)] = nil
			continue
		}
		out[string(team)] = append([]string(nil), nodes...)
	}
	return out, rejected
}

func readSelection(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening submission: %w", err)
	}
	defer f.Close()
	nodes, err := ParseSelection(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}
