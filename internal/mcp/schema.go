package mcp

import (
	"time"

	"github.com/nvandessel/contagion/internal/ranking"
	"github.com/nvandessel/contagion/internal/teams"
)

// RunInput defines the input for the contagion_run tool. Zero-valued model
// settings fall back to the project configuration.
type RunInput struct {
	Graph      string              `json:"graph" jsonschema:"Name of a stored graph"`
	Seeds      map[string][]string `json:"seeds" jsonschema:"Team name to the node IDs it seeds"`
	Model      string              `json:"model,omitempty" jsonschema:"Color model (see contagion_models)"`
	MaxRounds  int                 `json:"max_rounds,omitempty" jsonschema:"Round cap with round 0 included"`
	Seed       *uint64             `json:"seed,omitempty" jsonschema:"RNG seed for a reproducible run"`
	InfectionP float64             `json:"infection_p,omitempty" jsonschema:"Per-neighbor infection probability for random_p"`
	SelfWeight float64             `json:"self_weight,omitempty" jsonschema:"Extra vote a colored node casts for itself"`
	Scope      string              `json:"scope,omitempty" jsonschema:"Lottery population for weighted_random: colored or all"`
	Journal    bool                `json:"journal,omitempty" jsonschema:"Save the round journal under .contagion/runs"`
}

// RunOutput defines the output for the contagion_run tool.
type RunOutput struct {
	Graph       string              `json:"graph"`
	Model       string              `json:"model"`
	Seed        uint64              `json:"seed" jsonschema:"Seed that reproduces this run"`
	Rounds      int                 `json:"rounds" jsonschema:"Rounds played after round 0"`
	Cap         int                 `json:"cap" jsonschema:"Round cap in effect"`
	Termination string              `json:"termination" jsonschema:"stable or cap"`
	Standings   []ranking.Standing  `json:"standings"`
	Final       map[string][]string `json:"final" jsonschema:"Nodes held by each team at the end"`
	Rejected    []teams.Rejection   `json:"rejected,omitempty" jsonschema:"Teams discarded for naming unknown nodes"`
	Journal     string              `json:"journal,omitempty" jsonschema:"Path of the saved journal"`
}

// GraphsInput defines the input for the contagion_graphs tool.
type GraphsInput struct{}

// GraphsOutput defines the output for the contagion_graphs tool.
type GraphsOutput struct {
	Graphs []GraphItem `json:"graphs"`
	Count  int         `json:"count"`
}

// GraphItem is a stored graph in a listing.
type GraphItem struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportInput defines the input for the contagion_import tool.
type ImportInput struct {
	Name      string `json:"name" jsonschema:"Name to store the graph under"`
	Adjacency string `json:"adjacency" jsonschema:"Adjacency-list JSON object mapping each node to its neighbors"`
}

// ImportOutput defines the output for the contagion_import tool.
type ImportOutput struct {
	Name    string `json:"name"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Message string `json:"message"`
}

// DeleteInput defines the input for the contagion_delete tool.
type DeleteInput struct {
	Name string `json:"name" jsonschema:"Name of the stored graph to delete"`
}

// DeleteOutput defines the output for the contagion_delete tool.
type DeleteOutput struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RenderInput defines the input for the contagion_render tool. With seeds
// the graph is rendered with the seed coloring; without, uncolored.
type RenderInput struct {
	Graph  string              `json:"graph" jsonschema:"Name of a stored graph"`
	Format string              `json:"format,omitempty" jsonschema:"dot or json (default json)"`
	Seeds  map[string][]string `json:"seeds,omitempty" jsonschema:"Optional team seeds to color"`
}

// RenderOutput defines the output for the contagion_render tool.
type RenderOutput struct {
	Format    string `json:"format"`
	Graph     any    `json:"graph" jsonschema:"DOT text or JSON object"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// ModelsInput defines the input for the contagion_models tool.
type ModelsInput struct{}

// ModelsOutput defines the output for the contagion_models tool.
type ModelsOutput struct {
	Models []ModelItem `json:"models"`
}

// ModelItem describes one color model.
type ModelItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default" jsonschema:"Whether the project configuration selects it"`
	Stochastic  bool   `json:"stochastic"`
}
