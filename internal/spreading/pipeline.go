package spreading

import (
	"context"
	"fmt"

	"github.com/nvandessel/contagion/internal/store"
)

// Pipeline runs simulations on graphs kept in a store:
// graph name -> load -> engine -> result.
type Pipeline struct {
	store  store.GraphStore
	config Config
	opts   []Option
}

// NewPipeline creates a pipeline that builds an engine per run with config.
func NewPipeline(s store.GraphStore, config Config, opts ...Option) *Pipeline {
	return &Pipeline{
		store:  s,
		config: config,
		opts:   opts,
	}
}

// Run loads the named graph and plays one simulation on it.
func (p *Pipeline) Run(ctx context.Context, graphName string, seeds SeedSet) (*Result, error) {
	g, err := p.store.LoadGraph(ctx, graphName)
	if err != nil {
		return nil, fmt.Errorf("loading graph: %w", err)
	}
	engine, err := NewEngine(g, p.config, p.opts...)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, seeds)
}
