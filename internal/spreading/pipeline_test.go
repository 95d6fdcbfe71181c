package spreading

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nvandessel/contagion/internal/coloring"
	"github.com/nvandessel/contagion/internal/graph"
	"github.com/nvandessel/contagion/internal/model"
	"github.com/nvandessel/contagion/internal/store"
)

func TestPipeline_EndToEnd(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryGraphStore()
	if err := s.SaveGraph(ctx, "line", graph.Path(5)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}

	pipeline := NewPipeline(s, configFor(model.MajorityColored))
	res, err := pipeline.Run(ctx, "line", SeedSet{"red": {"0"}, "blue": {"4"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 1 and 3 are taken in round 1; 2 then sees a 1-1 tie and stays put.
	want := coloring.TeamView{"red": {"0", "1"}, "blue": {"3", "4"}}
	if d := cmp.Diff(want, res.Final); d != "" {
		t.Errorf("final (-want +got):\n%s", d)
	}
	if res.Termination != TerminationStable {
		t.Errorf("termination = %s, want stable", res.Termination)
	}
}

func TestPipeline_MissingGraph(t *testing.T) {
	pipeline := NewPipeline(store.NewInMemoryGraphStore(), DefaultConfig())
	_, err := pipeline.Run(context.Background(), "nowhere", SeedSet{"red": {"0"}})
	if !errors.Is(err, store.ErrGraphNotFound) {
		t.Fatalf("err = %v, want ErrGraphNotFound", err)
	}
}

func TestPipeline_UnknownModel(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryGraphStore()
	if err := s.SaveGraph(ctx, "g", graph.Path(2)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	cfg := DefaultConfig()
	cfg.Model.Kind = "bogus"
	_, err := NewPipeline(s, cfg).Run(ctx, "g", SeedSet{"red": {"0"}})
	if !errors.Is(err, model.ErrUnknownModel) {
		t.Fatalf("err = %v, want ErrUnknownModel", err)
	}
}
