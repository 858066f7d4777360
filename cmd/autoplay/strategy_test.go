package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

func option(p engine.Placement) service.PlacementOption {
	return service.PlacementOption{Placement: p}
}

func TestMeasure(t *testing.T) {
	o := func(x, y int) engine.Placement {
		return engine.Placement{Type: engine.PieceO, X: x, Y: y}
	}

	tests := []struct {
		name       string
		filled     [][2]int
		piece      engine.Placement
		clearLines bool
		want       Features
	}{
		{
			name:  "empty board",
			piece: o(0, 2),
			want:  Features{Height: 4, Bumpiness: 2},
		},
		{
			name:       "two lines cleared",
			filled:     [][2]int{{0, 2}, {1, 2}, {0, 3}, {1, 3}},
			piece:      o(2, 2),
			clearLines: true,
			want:       Features{Lines: 2},
		},
		{
			name:   "full rows kept",
			filled: [][2]int{{0, 2}, {1, 2}, {0, 3}, {1, 3}},
			piece:  o(2, 2),
			want:   Features{Height: 8},
		},
		{
			name:   "hole under overhang",
			filled: [][2]int{{0, 2}},
			piece:  o(2, 2),
			want:   Features{Height: 6, Holes: 1, Bumpiness: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := engine.NewBoard(4, 4)
			for _, c := range tt.filled {
				b.Set(c[0], c[1], int(engine.PieceT))
			}
			before := b.Clone()

			got := measure(b, tt.piece, tt.clearLines)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Features mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(before, b); diff != "" {
				t.Errorf("measure modified the board (-want +got):\n%s", diff)
			}
		})
	}
}

func TestChoose(t *testing.T) {
	b := engine.NewBoard(4, 4)
	b.Set(0, 3, int(engine.PieceT))
	b.Set(1, 3, int(engine.PieceT))

	stacked := engine.Placement{Type: engine.PieceO, X: 0, Y: 1}
	clearing := engine.Placement{Type: engine.PieceO, X: 2, Y: 2}

	s := NewStrategy(DefaultWeights)
	got, ok := s.Choose(b, []service.PlacementOption{option(stacked), option(clearing)}, true)
	if !ok {
		t.Fatal("Expected a choice")
	}
	if got != clearing {
		t.Errorf("Expected the line clearing placement %v, got %v", clearing, got)
	}
}

func TestChoose_Ties(t *testing.T) {
	b := engine.NewBoard(4, 4)
	left := engine.Placement{Type: engine.PieceO, X: 0, Y: 2}
	right := engine.Placement{Type: engine.PieceO, X: 2, Y: 2}

	got, _ := NewStrategy(DefaultWeights).Choose(b, []service.PlacementOption{option(left), option(right)}, true)
	if got != left {
		t.Errorf("Expected the first of two equal options, got %v", got)
	}
}

func TestChoose_NoOptions(t *testing.T) {
	if _, ok := NewStrategy(DefaultWeights).Choose(engine.NewBoard(4, 4), nil, true); ok {
		t.Error("Expected no choice without options")
	}
}

func TestBag(t *testing.T) {
	a, b := NewBag(7), NewBag(7)

	for round := 0; round < 3; round++ {
		seen := make(map[engine.PieceType]int)
		for i := 0; i < 7; i++ {
			p := a.Next()
			if q := b.Next(); p != q {
				t.Fatalf("Same seed diverged: %v vs %v", p, q)
			}
			seen[p]++
		}
		for _, p := range engine.AllPieceTypes() {
			if seen[p] != 1 {
				t.Errorf("Bag %d dealt %v %d times", round, p, seen[p])
			}
		}
	}
}
