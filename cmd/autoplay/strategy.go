package main

import (
	"math/rand/v2"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

// Weights scores a board after a lock. Positive weights reward a feature.
type Weights struct {
	Lines     float64
	Height    float64
	Holes     float64
	Bumpiness float64
}

// DefaultWeights are the well-known hand-tuned stacking weights
var DefaultWeights = Weights{
	Lines:     0.760666,
	Height:    -0.510066,
	Holes:     -0.35663,
	Bumpiness: -0.184483,
}

// Features of a board used for scoring
type Features struct {
	Lines     int
	Height    int // sum of column heights
	Holes     int // empty cells with a filled cell somewhere above
	Bumpiness int // sum of height differences between neighbouring columns
}

func (w Weights) Score(f Features) float64 {
	return w.Lines*float64(f.Lines) +
		w.Height*float64(f.Height) +
		w.Holes*float64(f.Holes) +
		w.Bumpiness*float64(f.Bumpiness)
}

// measure locks p on a copy of b and extracts features from the result
func measure(b *engine.Board, p engine.Placement, clearLines bool) Features {
	after := b.Clone()
	after.Lock(p)

	var f Features
	if clearLines {
		f.Lines = len(after.ClearLines())
	}

	prev := -1
	for x := 0; x < after.Cols; x++ {
		height := 0
		for y := 0; y < after.Rows; y++ {
			if after.Occupied(x, y) {
				if height == 0 {
					height = after.Rows - y
				}
			} else if height > 0 {
				f.Holes++
			}
		}
		f.Height += height
		if prev >= 0 {
			f.Bumpiness += abs(height - prev)
		}
		prev = height
	}
	return f
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Strategy picks a placement for each piece
type Strategy struct {
	weights Weights
}

func NewStrategy(w Weights) *Strategy {
	return &Strategy{weights: w}
}

// Choose returns the best scoring option. Ties keep the earlier option, which
// in a reachable listing is the one closest to spawn.
func (s *Strategy) Choose(b *engine.Board, options []service.PlacementOption, clearLines bool) (engine.Placement, bool) {
	best := -1
	var bestScore float64
	for i, opt := range options {
		score := s.weights.Score(measure(b, opt.Placement, clearLines))
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return engine.Placement{}, false
	}
	return options[best].Placement, true
}

// Bag deals pieces in shuffled bags of all seven types
type Bag struct {
	rng  *rand.Rand
	next []engine.PieceType
}

func NewBag(seed uint64) *Bag {
	return &Bag{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (b *Bag) Next() engine.PieceType {
	if len(b.next) == 0 {
		b.next = engine.AllPieceTypes()
		b.rng.Shuffle(len(b.next), func(i, j int) {
			b.next[i], b.next[j] = b.next[j], b.next[i]
		})
	}
	t := b.next[0]
	b.next = b.next[1:]
	return t
}
