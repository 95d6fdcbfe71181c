package model

import "github.com/nvandessel/contagion/internal/coloring"

// tally accumulates vote weight per color, remembering first-seen order so
// that lotteries walk colors deterministically.
type tally struct {
	colors  []coloring.Color
	weights []float64
	total   float64
}

func (t *tally) add(c coloring.Color, w float64) {
	t.total += w
	for i, seen := range t.colors {
		if seen == c {
			t.weights[i] += w
			return
		}
	}
	t.colors = append(t.colors, c)
	t.weights = append(t.weights, w)
}

func (t *tally) len() int {
	return len(t.colors)
}

// top returns the heaviest color, its weight, the weight of the runner-up
// (zero when there is only one color) and whether the lead is shared.
func (t *tally) top() (best coloring.Color, bestW, runnerW float64, tied bool) {
	bestIdx := -1
	for i, w := range t.weights {
		switch {
		case bestIdx < 0 || w > bestW:
			if bestIdx >= 0 {
				runnerW = bestW
			}
			bestIdx, bestW = i, w
			tied = false
		case w == bestW:
			runnerW = w
			tied = true
		case w > runnerW:
			runnerW = w
		}
	}
	if bestIdx < 0 {
		return coloring.Uncolored, 0, 0, false
	}
	return t.colors[bestIdx], bestW, runnerW, tied
}

// draw picks a color with probability proportional to its weight, given
// u uniform in [0, 1).
func (t *tally) draw(u float64) coloring.Color {
	target := u * t.total
	acc := 0.0
	for i, w := range t.weights {
		acc += w
		if target < acc {
			return t.colors[i]
		}
	}
	return t.colors[len(t.colors)-1]
}
