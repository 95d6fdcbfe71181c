package spreading

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/contagion/internal/coloring"
)

// minChunk is the smallest slice of nodes handed to one worker.
const minChunk = 64

// step plays one synchronous round. Every node reads only prev, so nodes
// are split into contiguous chunks and evaluated concurrently; the next
// assignment and the diff are assembled after all workers finish.
func (e *Engine) step(ctx context.Context, prev coloring.Assignment, round int, runSeed uint64) (coloring.Assignment, coloring.Diff, error) {
	n := e.graph.Len()
	out := make([]coloring.Color, n)
	changed := make([]bool, n)

	eval := func(lo, hi int) {
		var rng *rand.Rand
		var src *rand.PCG
		if !e.model.Deterministic() {
			src = rand.NewPCG(0, 0)
			rng = rand.New(src)
		}
		for i := lo; i < hi; i++ {
			if src != nil {
				src.Seed(runSeed, nodeStream(round, i))
			}
			out[i], changed[i] = e.model.Next(e.graph, prev, i, rng)
		}
	}

	workers := e.config.Workers
	if workers <= 1 || n < 2*minChunk {
		eval(0, n)
	} else {
		chunk := max(minChunk, (n+workers-1)/workers)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for lo := 0; lo < n; lo += chunk {
			hi := min(lo+chunk, n)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				eval(lo, hi)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	next := prev.Clone()
	diff := make(coloring.Diff)
	for i, ok := range changed {
		if !ok {
			continue
		}
		next[i] = out[i]
		diff[e.graph.ID(i)] = out[i]
	}
	return next, diff, nil
}

// nodeStream identifies the random stream of one node in one round. The
// draws a node sees depend only on the run seed, the round and the node's
// position, never on scheduling.
func nodeStream(round, node int) uint64 {
	return uint64(round)<<32 | uint64(uint32(node))
}
