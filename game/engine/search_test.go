package engine

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSearch_StraightDrop(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	goal := Placement{Type: PieceT, X: 3, Y: 20}

	result := Search(b, SpawnPlacement(PieceT), goal)
	if !result.Found {
		t.Fatal("Expected a path")
	}
	if diff := cmp.Diff([]Move{MoveHardDrop}, result.Moves); diff != "" {
		t.Errorf("Moves mismatch (-want +got):\n%s", diff)
	}
	if result.Depth != 20 {
		t.Errorf("Expected raw depth 20, got %d", result.Depth)
	}
	if result.Expanded == 0 {
		t.Error("Expected expanded nodes to be counted")
	}
}

func TestSearch_ShiftAroundObstacle(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	b.Set(3, 2, int(PieceI))

	moves, ok := FindPath(b, SpawnPlacement(PieceT), Placement{Type: PieceT, X: 4, Y: 20})
	if !ok {
		t.Fatal("Expected a path")
	}
	if diff := cmp.Diff([]Move{MoveShiftRight, MoveHardDrop}, moves); diff != "" {
		t.Errorf("Moves mismatch (-want +got):\n%s", diff)
	}
}

func TestSearch_RotationAtTheBottom(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	goal := Placement{Type: PieceT, X: 3, Y: 19, Rotation: 2}

	result := Search(b, SpawnPlacement(PieceT), goal)
	if !result.Found {
		t.Fatal("Expected a path")
	}

	// Soft drops sort before rotations, so they come first and only the
	// trailing ones are folded into the hard drop
	want := slices.Repeat([]Move{MoveSoftDrop}, 19)
	want = append(want, MoveRotate180, MoveHardDrop)
	if diff := cmp.Diff(want, result.Moves); diff != "" {
		t.Errorf("Moves mismatch (-want +got):\n%s", diff)
	}
	if result.Depth != 20 {
		t.Errorf("Expected raw depth 20, got %d", result.Depth)
	}
}

func TestSearch_FloatingGoal(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	moves, ok := FindPath(b, SpawnPlacement(PieceT), Placement{Type: PieceT, X: 3, Y: 10})
	if ok || moves != nil {
		t.Errorf("Expected no path to a floating goal, got %v", moves)
	}
}

func TestSearch_StartEqualsGoal(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	spawn := SpawnPlacement(PieceT)

	// A spawned piece on an empty board cannot lock where it is
	if moves, ok := FindPath(b, spawn, spawn); ok {
		t.Errorf("Expected no path for a floating spawn, got %v", moves)
	}

	// With support underneath it can
	b.Set(4, 2, int(PieceZ))
	result := Search(b, spawn, spawn)
	if !result.Found {
		t.Fatal("Expected a path")
	}
	if diff := cmp.Diff([]Move{MoveHardDrop}, result.Moves); diff != "" {
		t.Errorf("Moves mismatch (-want +got):\n%s", diff)
	}
	if result.Depth != 0 || result.Expanded != 0 {
		t.Errorf("Expected the fast path to skip the search, got depth %d expanded %d", result.Depth, result.Expanded)
	}
}

func TestSearch_Preconditions(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	b.Set(4, 0, int(PieceO))
	b.Set(0, 21, int(PieceO))

	tests := []struct {
		name  string
		start Placement
		goal  Placement
	}{
		{"start collides", SpawnPlacement(PieceT), Placement{Type: PieceT, X: 3, Y: 20}},
		{"goal out of bounds", Placement{Type: PieceT, X: 5, Y: 5}, Placement{Type: PieceT, X: 8, Y: 20}},
		{"goal collides", Placement{Type: PieceT, X: 5, Y: 5}, Placement{Type: PieceT, X: 0, Y: 20}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if moves, ok := FindPath(b, test.start, test.goal); ok || moves != nil {
				t.Errorf("Expected no path, got %v", moves)
			}
		})
	}
}

func TestSearch_OPieceRotationIsIrrelevant(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultCols)
	for rot := 0; rot < RotationStates; rot++ {
		goal := Placement{Type: PieceO, X: 4, Y: 20, Rotation: rot}
		moves, ok := FindPath(b, SpawnPlacement(PieceO), goal)
		if !ok {
			t.Fatalf("Expected a path for rotation %d", rot)
		}
		if diff := cmp.Diff([]Move{MoveHardDrop}, moves); diff != "" {
			t.Errorf("Rotation %d moves mismatch (-want +got):\n%s", rot, diff)
		}
	}
}

func TestSearch_UnreachableCavity(t *testing.T) {
	// The bottom-left pocket is sealed by a roof and a wall
	b := boardFromLayout(t,
		"........",
		"........",
		"........",
		"........",
		"IIIII...",
		"....I...",
		"....I...",
		"Z...I...",
	)
	goal := Placement{Type: PieceO, X: 1, Y: 6}
	if !b.Legal(goal) || !b.Resting(goal) {
		t.Fatalf("Test goal %v must be lockable", goal)
	}
	if moves, ok := FindPath(b, SpawnPlacement(PieceO), goal); ok {
		t.Errorf("Expected no path into a sealed cavity, got %v", moves)
	}
}

func TestSearch_ShortestAndReplayable(t *testing.T) {
	b := boardFromLayout(t,
		"........",
		"........",
		"........",
		"........",
		"........",
		".T....T.",
		"TT....TT",
		"TTT.TTTT",
	)

	for _, piece := range []PieceType{PieceT, PieceI, PieceL, PieceS} {
		start := SpawnPlacement(piece)
		dist := distances(b, start)

		for _, goal := range LockablePlacements(b, piece) {
			want, reachable := dist[goal.Key()]
			result := Search(b, start, goal)

			if result.Found != reachable {
				t.Errorf("%v: found=%v, reachable=%v", goal, result.Found, reachable)
				continue
			}
			if !reachable {
				continue
			}
			if result.Depth != want {
				t.Errorf("%v: depth %d, shortest is %d", goal, result.Depth, want)
			}

			last := result.Moves[len(result.Moves)-1]
			if last != MoveHardDrop || slices.Index(result.Moves, MoveHardDrop) != len(result.Moves)-1 {
				t.Errorf("%v: expected exactly one trailing hard drop, got %v", goal, result.Moves)
			}
			if len(result.Moves) > result.Depth+1 {
				t.Errorf("%v: %d moves for depth %d", goal, len(result.Moves), result.Depth)
			}

			trail, err := Replay(b, start, result.Moves)
			if err != nil {
				t.Errorf("%v: replay failed: %v", goal, err)
				continue
			}
			if end := trail[len(trail)-1]; end.Key() != goal.Key() {
				t.Errorf("%v: replay ended at %v", goal, end)
			}
		}
	}
}

// distances computes shortest move counts by repeated relaxation until no
// distance improves.
func distances(b *Board, start Placement) map[Key]int {
	nodes := Explore(b, start)
	dist := map[Key]int{start.Key(): 0}
	for changed := true; changed; {
		changed = false
		for _, p := range nodes {
			d, ok := dist[p.Key()]
			if !ok {
				continue
			}
			for _, m := range EdgeMoves() {
				next, ok := ApplyMove(p, b, m)
				if !ok {
					continue
				}
				k := next.Key()
				if old, seen := dist[k]; !seen || d+1 < old {
					dist[k] = d + 1
					changed = true
				}
			}
		}
	}
	return dist
}

func TestExplore(t *testing.T) {
	b := NewBoard(4, 4)
	if Explore(b, Placement{Type: PieceO, X: 3, Y: 0}) != nil {
		t.Error("Expected nil for an illegal start")
	}

	// An O piece on a 4x4 board has 3x3 anchors
	nodes := Explore(b, Placement{Type: PieceO})
	if len(nodes) != 9 {
		t.Errorf("Expected 9 reachable O placements, got %d", len(nodes))
	}
	if nodes[0] != (Placement{Type: PieceO}) {
		t.Errorf("Expected the start first, got %v", nodes[0])
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		raw  []Move
		want []Move
	}{
		{"empty", nil, []Move{MoveHardDrop}},
		{"only drops", []Move{MoveSoftDrop, MoveSoftDrop}, []Move{MoveHardDrop}},
		{"inner drops kept", []Move{MoveSoftDrop, MoveShiftLeft, MoveSoftDrop}, []Move{MoveSoftDrop, MoveShiftLeft, MoveHardDrop}},
		{"no drops", []Move{MoveRotateCW}, []Move{MoveRotateCW, MoveHardDrop}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, normalizePath(test.raw)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
