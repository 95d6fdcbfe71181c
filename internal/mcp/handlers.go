package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/journal"
	"github.com/nvandessel/contagion/internal/model"
	"github.com/nvandessel/contagion/internal/pathutil"
	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/ratelimit"
	"github.com/nvandessel/contagion/internal/sanitize"
	"github.com/nvandessel/contagion/internal/spreading"
	"github.com/nvandessel/contagion/internal/store"
	"github.com/nvandessel/contagion/internal/teams"
	"github.com/nvandessel/contagion/internal/visualization"
)

const graphsURI = "contagion://graphs"

// ErrNoTeams is returned by contagion_run when no team is seeded.
var ErrNoTeams = errors.New("no teams given")

// registerTools registers all contagion MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_run",
		Description: "Play one simulation on a stored graph and return the final coloring and standings",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_graphs",
		Description: "List the stored graphs",
	}, s.handleGraphs)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_import",
		Description: "Store an adjacency-list graph under a name, replacing any graph of that name",
	}, s.handleImport)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_delete",
		Description: "Delete a stored graph",
	}, s.handleDelete)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_render",
		Description: "Render a stored graph in DOT (Graphviz) or JSON, optionally colored by team seeds",
	}, s.handleRender)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "contagion_models",
		Description: "List the color models a run can use",
	}, s.handleModels)
}

// registerResources registers the graph listing and per-graph resources.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         graphsURI,
		Name:        "contagion-graphs",
		Description: "Graphs available for simulations, with their sizes.",
		MIMEType:    "text/markdown",
	}, s.handleGraphsResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: graphsURI + "/{name}",
		Name:        "contagion-graph",
		Description: "A stored graph as JSON nodes and edges.",
		MIMEType:    "application/json",
	}, s.handleGraphResource)
}

func (s *Server) handleGraphsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	infos, err := s.store.ListGraphs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# Stored graphs\n\n")
	if len(infos) == 0 {
		sb.WriteString("No graphs stored yet. Use contagion_import to add one.\n")
	}
	for _, info := range infos {
		fmt.Fprintf(&sb, "- **%s**: %d nodes, %d edges\n", info.Name, info.Nodes, info.Edges)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: graphsURI, MIMEType: "text/markdown", Text: sb.String()},
		},
	}, nil
}

func (s *Server) handleGraphResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	name, ok := strings.CutPrefix(uri, graphsURI+"/")
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}

	g, err := s.store.LoadGraph(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	data, err := json.Marshal(visualization.RenderJSON(g, nil))
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{URI: uri, MIMEType: "application/json", Text: string(data)},
		},
	}, nil
}

// handleRun implements the contagion_run tool.
func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (_ *sdk.CallToolResult, _ RunOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_run", start, retErr, sanitizeToolParams(runAuditParams(args)))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_run"); err != nil {
		return nil, RunOutput{}, err
	}

	engineCfg, err := s.engineConfig(args)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("invalid run settings: %w", err)
	}
	g, err := s.store.LoadGraph(ctx, args.Graph)
	if err != nil {
		return nil, RunOutput{}, fmt.Errorf("failed to load graph: %w", err)
	}

	seeds, err := seedSet(args.Seeds)
	if err != nil {
		return nil, RunOutput{}, err
	}
	if len(seeds) == 0 {
		return nil, RunOutput{}, ErrNoTeams
	}
	seeds, rejected := teams.Sanitize(g, seeds)
	for _, r := range rejected {
		s.logger.Warn("team submission discarded", "graph", args.Graph, "team", r.Team, "unknown", len(r.Unknown))
	}

	engine, err := spreading.NewEngine(g, engineCfg,
		spreading.WithLogger(s.logger.With("graph", args.Graph)),
		spreading.WithDecisionLogger(s.decisions),
	)
	if err != nil {
		return nil, RunOutput{}, err
	}
	res, err := engine.Run(ctx, seeds)
	if err != nil {
		return nil, RunOutput{}, err
	}

	out := RunOutput{
		Graph:       args.Graph,
		Model:       string(engineCfg.Model.Kind),
		Seed:        res.Seed,
		Rounds:      res.Rounds,
		Cap:         res.Cap,
		Termination: string(res.Termination),
		Standings:   ranking.Standings(res.Final),
		Final:       make(map[string][]string, len(res.Final)),
		Rejected:    rejected,
	}
	for team, nodes := range res.Final {
		out.Final[string(team)] = nodes
	}

	if args.Journal {
		if out.Journal, err = s.saveJournal(args.Graph, g, res.History); err != nil {
			return nil, RunOutput{}, err
		}
	}
	return nil, out, nil
}

// engineConfig applies the non-zero run arguments over the project settings.
func (s *Server) engineConfig(args RunInput) (spreading.Config, error) {
	settings := *s.settings

	type override struct {
		key, value string
		set        bool
	}
	overrides := []override{
		{"simulation.model", args.Model, args.Model != ""},
		{"simulation.max_rounds", strconv.Itoa(args.MaxRounds), args.MaxRounds != 0},
		{"simulation.infection_probability", strconv.FormatFloat(args.InfectionP, 'g', -1, 64), args.InfectionP != 0},
		{"simulation.self_weight", strconv.FormatFloat(args.SelfWeight, 'g', -1, 64), args.SelfWeight != 0},
		{"simulation.scope", args.Scope, args.Scope != ""},
	}
	if args.Seed != nil {
		overrides = append(overrides, override{"simulation.seed", strconv.FormatUint(*args.Seed, 10), true})
	}

	for _, o := range overrides {
		if !o.set {
			continue
		}
		if err := settings.Set(o.key, o.value); err != nil {
			return spreading.Config{}, err
		}
	}
	return settings.EngineConfig()
}

func (s *Server) saveJournal(graphName string, g *graph.Graph, history []coloring.Diff) (string, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	allowed, err := pathutil.DefaultAllowedRunDirsWithProjectRoot(absRoot)
	if err != nil {
		return "", err
	}
	path := filepath.Join(store.LocalContagionPath(absRoot), "runs",
		journal.DefaultName(graphName, time.Now(), journal.FormatJSON))
	if err := journal.Save(path, allowed, g, history, journal.FormatJSON); err != nil {
		return "", err
	}
	return path, nil
}

// seedSet cleans raw team seeds the way submission files are cleaned.
func seedSet(raw map[string][]string) (spreading.SeedSet, error) {
	seeds := make(spreading.SeedSet, len(raw))
	for rawName, rawNodes := range raw {
		team := sanitize.TeamName(rawName)
		if team == "" {
			return nil, fmt.Errorf("%w: %q", teams.ErrEmptyTeamName, rawName)
		}
		if _, dup := seeds[team]; dup {
			return nil, fmt.Errorf("%w: %s", teams.ErrDuplicateTeam, team)
		}
		nodes := make([]string, 0, len(rawNodes))
		for _, n := range rawNodes {
			if id := sanitize.NodeID(n); id != "" {
				nodes = append(nodes, id)
			}
		}
		seeds[team] = nodes
	}
	return seeds, nil
}

func runAuditParams(args RunInput) map[string]any {
	params := map[string]any{"graph": args.Graph, "teams": len(args.Seeds)}
	if args.Seeds != nil {
		params["seeds"] = true
	}
	if args.Model != "" {
		params["model"] = args.Model
	}
	if args.MaxRounds != 0 {
		params["max_rounds"] = args.MaxRounds
	}
	if args.Seed != nil {
		params["seed"] = *args.Seed
	}
	if args.InfectionP != 0 {
		params["infection_p"] = args.InfectionP
	}
	if args.SelfWeight != 0 {
		params["self_weight"] = args.SelfWeight
	}
	if args.Scope != "" {
		params["scope"] = args.Scope
	}
	return params
}

// handleGraphs implements the contagion_graphs tool.
func (s *Server) handleGraphs(ctx context.Context, req *sdk.CallToolRequest, args GraphsInput) (_ *sdk.CallToolResult, _ GraphsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_graphs", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_graphs"); err != nil {
		return nil, GraphsOutput{}, err
	}

	infos, err := s.store.ListGraphs(ctx)
	if err != nil {
		return nil, GraphsOutput{}, fmt.Errorf("failed to list graphs: %w", err)
	}
	items := make([]GraphItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, GraphItem{
			Name:      info.Name,
			Nodes:     info.Nodes,
			Edges:     info.Edges,
			CreatedAt: info.CreatedAt,
		})
	}
	return nil, GraphsOutput{Graphs: items, Count: len(items)}, nil
}

// handleImport implements the contagion_import tool.
func (s *Server) handleImport(ctx context.Context, req *sdk.CallToolRequest, args ImportInput) (_ *sdk.CallToolResult, _ ImportOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_import", start, retErr, sanitizeToolParams(map[string]any{
			"graph":     args.Name,
			"adjacency": args.Adjacency,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_import"); err != nil {
		return nil, ImportOutput{}, err
	}

	g, err := graph.LoadJSON(strings.NewReader(args.Adjacency))
	if err != nil {
		return nil, ImportOutput{}, fmt.Errorf("loading graph: %w", err)
	}
	if err := s.store.SaveGraph(ctx, args.Name, g); err != nil {
		return nil, ImportOutput{}, fmt.Errorf("saving graph: %w", err)
	}

	s.logger.Info("graph imported", "graph", args.Name, "nodes", g.Len(), "edges", g.EdgeCount())
	return nil, ImportOutput{
		Name:    args.Name,
		Nodes:   g.Len(),
		Edges:   g.EdgeCount(),
		Message: fmt.Sprintf("Imported %s: %d nodes, %d edges", args.Name, g.Len(), g.EdgeCount()),
	}, nil
}

// handleDelete implements the contagion_delete tool.
func (s *Server) handleDelete(ctx context.Context, req *sdk.CallToolRequest, args DeleteInput) (_ *sdk.CallToolResult, _ DeleteOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_delete", start, retErr, sanitizeToolParams(map[string]any{"graph": args.Name}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_delete"); err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := s.store.DeleteGraph(ctx, args.Name); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("deleting graph: %w", err)
	}
	return nil, DeleteOutput{Name: args.Name, Message: "Deleted " + args.Name}, nil
}

// handleRender implements the contagion_render tool.
func (s *Server) handleRender(ctx context.Context, req *sdk.CallToolRequest, args RenderInput) (_ *sdk.CallToolResult, _ RenderOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_render", start, retErr, sanitizeToolParams(map[string]any{
			"graph":  args.Graph,
			"format": args.Format,
			"teams":  len(args.Seeds),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_render"); err != nil {
		return nil, RenderOutput{}, err
	}

	formatName := args.Format
	if formatName == "" {
		formatName = string(visualization.FormatJSON)
	}
	format, err := visualization.ParseFormat(formatName)
	if err != nil {
		return nil, RenderOutput{}, err
	}

	g, err := s.store.LoadGraph(ctx, args.Graph)
	if err != nil {
		return nil, RenderOutput{}, fmt.Errorf("failed to load graph: %w", err)
	}

	var view coloring.TeamView
	if len(args.Seeds) > 0 {
		seeds, err := seedSet(args.Seeds)
		if err != nil {
			return nil, RenderOutput{}, err
		}
		seeds, _ = teams.Sanitize(g, seeds)
		_, initial, err := spreading.ResolveSeeds(g, seeds)
		if err != nil {
			return nil, RenderOutput{}, err
		}
		view = coloring.ViewOf(g, initial).WithTeams(seeds.Teams())
	}

	out := RenderOutput{Format: string(format), NodeCount: g.Len(), EdgeCount: g.EdgeCount()}
	switch format {
	case visualization.FormatDOT:
		out.Graph = visualization.RenderDOT(g, view)
	case visualization.FormatJSON:
		out.Graph = visualization.RenderJSON(g, view)
	}
	return nil, out, nil
}

// handleModels implements the contagion_models tool.
func (s *Server) handleModels(ctx context.Context, req *sdk.CallToolRequest, args ModelsInput) (_ *sdk.CallToolResult, _ ModelsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("contagion_models", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "contagion_models"); err != nil {
		return nil, ModelsOutput{}, err
	}

	current, _ := model.ParseKind(s.settings.Simulation.Model)
	items := make([]ModelItem, 0, len(model.Kinds()))
	for _, k := range model.Kinds() {
		m, err := model.New(model.DefaultOptions(k))
		if err != nil {
			return nil, ModelsOutput{}, err
		}
		items = append(items, ModelItem{
			Name:        string(k),
			Description: k.Describe(),
			Default:     k == current,
			Stochastic:  !m.Deterministic(),
		})
	}
	return nil, ModelsOutput{Models: items}, nil
}
