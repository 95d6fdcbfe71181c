// Package spreading implements the competitive spreading engine. Teams seed
// nodes with their color, conflicting claims cancel, and colors then spread
// round by round under a color model until the coloring stops changing or
// the round budget runs out.
package spreading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/constants"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/logging"
	"github.com/nvandessel/contagion/internal/model"
)

// Config holds the tunable parameters of a run.
type Config struct {
	// Model selects and parameterizes the color model.
	Model model.Options

	// MaxRounds caps the history length, round 0 included. Default: 100.
	MaxRounds int

	// RoundCapSpread, when positive, draws the cap uniformly from
	// [MaxRounds, MaxRounds+RoundCapSpread] using the run's RNG.
	RoundCapSpread int

	// Seed fixes the run's RNG. When nil a fresh seed is drawn and reported
	// in Result.Seed so the run can be replayed.
	Seed *uint64

	// Workers is the number of goroutines evaluating nodes in a round.
	// Results do not depend on it. Default: 1.
	Workers int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Model:          model.DefaultOptions(model.MajorityColored),
		MaxRounds:      constants.DefaultMaxRounds,
		RoundCapSpread: constants.DefaultRoundCapSpread,
		Workers:        1,
	}
}

// Result is the outcome of one run.
type Result struct {
	// History holds one diff per round, starting with the seed round 0.
	History []coloring.Diff

	// Final maps every seeding team to the nodes it holds at the end. Teams
	// left with nothing map to an empty list.
	Final coloring.TeamView

	// Termination tells why the run stopped.
	Termination Termination

	// Rounds is the number of update rounds played after round 0.
	Rounds int

	// Cap is the round cap that applied to this run.
	Cap int

	// Seed is the RNG seed the run used.
	Seed uint64
}

// Sizes returns the final number of nodes per team.
func (r *Result) Sizes() map[coloring.Color]int {
	return r.Final.Sizes()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDecisionLogger records one JSONL event per round.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(e *Engine) { e.decisions = dl }
}

// Engine runs simulations over one graph with one model. The graph is only
// read, so an Engine may run several seed sets one after the other.
type Engine struct {
	graph     *graph.Graph
	config    Config
	model     model.Model
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// NewEngine resolves the configured model and validates the round budget.
// An unknown model is rejected here, never replaced by a default.
func NewEngine(g *graph.Graph, config Config, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, errors.New("spreading: nil graph")
	}
	m, err := model.New(config.Model)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	if config.MaxRounds < 1 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", config.MaxRounds)
	}
	if config.RoundCapSpread < 0 {
		return nil, fmt.Errorf("round cap spread must be non-negative, got %d", config.RoundCapSpread)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	e := &Engine{
		graph:  g,
		config: config,
		model:  m,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Model returns the resolved color model.
func (e *Engine) Model() model.Model {
	return e.model
}

// Run resolves seed conflicts and plays rounds until the coloring is stable
// or the round cap is reached. Invalid seeds fail the run before round 0.
func (e *Engine) Run(ctx context.Context, seeds SeedSet) (*Result, error) {
	diff0, prev, err := ResolveSeeds(e.graph, seeds)
	if err != nil {
		return nil, err
	}

	runSeed := e.runSeed()
	roundCap := e.roundCap(runSeed)
	log := e.logger.With("model", e.model.Kind(), "seed", runSeed)
	log.Debug("seeds resolved", "teams", len(seeds), "colored", prev.Colored(), "cap", roundCap)

	history := make([]coloring.Diff, 1, min(roundCap, 16))
	history[0] = diff0
	termination := TerminationRoundCap

	for len(history) < roundCap {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("simulation interrupted at round %d: %w", len(history), err)
		}
		round := len(history)

		next, diff, err := e.step(ctx, prev, round, runSeed)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		history = append(history, diff)

		stable := Stable(e.graph, prev, next)
		log.Debug("round complete", "round", round, "changed", len(diff), "colored", next.Colored(), "stable", stable)
		e.decisions.Log(map[string]any{
			"event":   "round",
			"round":   round,
			"changed": len(diff),
			"colored": next.Colored(),
			"stable":  stable,
		})

		prev = next
		if stable {
			termination = TerminationStable
			break
		}
	}

	res := &Result{
		History:     history,
		Final:       coloring.ViewOf(e.graph, prev).WithTeams(seeds.Teams()),
		Termination: termination,
		Rounds:      len(history) - 1,
		Cap:         roundCap,
		Seed:        runSeed,
	}

	log.Info("simulation finished", "rounds", res.Rounds, "termination", termination)
	e.decisions.Log(map[string]any{
		"event":       "finished",
		"model":       string(e.model.Kind()),
		"rounds":      res.Rounds,
		"termination": string(termination),
		"seed":        runSeed,
	})
	return res, nil
}

func (e *Engine) runSeed() uint64 {
	if e.config.Seed != nil {
		return *e.config.Seed
	}
	return rand.Uint64()
}

// capStream keeps the round cap draw apart from the per-node streams.
const capStream = ^uint64(0)

func (e *Engine) roundCap(runSeed uint64) int {
	if e.config.RoundCapSpread == 0 {
		return e.config.MaxRounds
	}
	rng := rand.New(rand.NewPCG(runSeed, capStream))
	return e.config.MaxRounds + rng.IntN(e.config.RoundCapSpread+1)
}
