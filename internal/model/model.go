// Package model implements the color-update rules a node follows each round.
//
// A Model is a pure function of the graph, the frozen previous-round
// assignment, the node being updated and an explicit random source. The set
// of models is closed: New resolves a Kind once and rejects anything else.
package model

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/graph"
)

// ErrUnknownModel is returned for a model name outside the supported set.
var ErrUnknownModel = errors.New("model: unknown model")

// Kind names one of the supported update rules.
type Kind string

const (
	MajorityAll       Kind = "majority_all"        // strict majority over all neighbors
	MajorityColored   Kind = "majority_colored"    // half or more of colored neighbors
	MostCommonColored Kind = "most_common_colored" // plurality with a strict lead
	RandomP           Kind = "random_p"            // independent per-neighbor infection
	WeightedRandom    Kind = "weighted_random"     // lottery weighted by neighbor colors
)

// Kinds returns every supported kind in a stable order.
func Kinds() []Kind {
	return []Kind{MajorityAll, MajorityColored, MostCommonColored, RandomP, WeightedRandom}
}

var descriptions = map[Kind]string{
	MajorityAll:       "adopt a team holding a strict majority of all neighbors",
	MajorityColored:   "adopt a team holding at least half of the colored neighbors",
	MostCommonColored: "adopt the most common neighbor team if it leads strictly",
	RandomP:           "each colored neighbor infects with probability p",
	WeightedRandom:    "draw one neighbor color from a lottery",
}

// Describe returns a one-line summary of what k does.
func (k Kind) Describe() string {
	return descriptions[k]
}

// ParseKind resolves a model name. Case, hyphens and underscores are
// ignored, so "majority-all", "MajorityAll" and "majority_all" are the same.
func ParseKind(name string) (Kind, error) {
	norm := normalize(name)
	for _, k := range Kinds() {
		if normalize(string(k)) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "").Replace(s)
}

// Model decides a node's next color.
type Model interface {
	// Kind reports which rule this model applies.
	Kind() Kind

	// Deterministic reports whether Next ignores rng.
	Deterministic() bool

	// Next returns the color node should hold after this round, reading only
	// prev. changed is false whenever the result equals prev[node].
	Next(g *graph.Graph, prev coloring.Assignment, node int, rng *rand.Rand) (next coloring.Color, changed bool)
}

// Options parameterize the models. Fields a model does not use are ignored.
type Options struct {
	// Kind selects the rule.
	Kind Kind

	// SelfWeight is the extra vote a colored node casts for its own color in
	// majority_all, most_common_colored and weighted_random. Zero disables it;
	// the historical value is 1.5.
	SelfWeight float64

	// InfectionProbability is the per-neighbor infection chance of random_p.
	InfectionProbability float64

	// Scope selects which neighbors hold lottery tickets in weighted_random.
	Scope constants.Scope
}

// DefaultOptions returns the options for kind with no self vote.
func DefaultOptions(kind Kind) Options {
	return Options{
		Kind:                 kind,
		InfectionProbability: constants.DefaultInfectionProbability,
		Scope:                constants.ScopeColored,
	}
}

// Validate checks the options without building a model.
func (o Options) Validate() error {
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return err
	}
	if o.SelfWeight < 0 {
		return fmt.Errorf("self weight must be non-negative, got %v", o.SelfWeight)
	}
	if o.InfectionProbability < 0 || o.InfectionProbability > 1 {
		return fmt.Errorf("infection probability must be between 0 and 1, got %v", o.InfectionProbability)
	}
	if o.Scope != "" && !o.Scope.Valid() {
		return fmt.Errorf("invalid lottery scope: %s (valid: colored, all)", o.Scope)
	}
	return nil
}

// New builds the model selected by opts.Kind.
func New(opts Options) (Model, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	kind, _ := ParseKind(string(opts.Kind))

	switch kind {
	case MajorityAll:
		return majorityAll{selfWeight: opts.SelfWeight}, nil
	case MajorityColored:
		return majorityColored{}, nil
	case MostCommonColored:
		return mostCommonColored{selfWeight: opts.SelfWeight}, nil
	case RandomP:
		return randomP{p: opts.InfectionProbability}, nil
	case WeightedRandom:
		scope := opts.Scope
		if scope == "" {
			scope = constants.ScopeColored
		}
		return weightedRandom{selfWeight: opts.SelfWeight, scope: scope}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, opts.Kind)
}

// settle turns a candidate into the (color, changed) pair every model returns.
func settle(current, candidate coloring.Color) (coloring.Color, bool) {
	if !candidate.IsTeam() || candidate == current {
		return current, false
	}
	return candidate, true
}
