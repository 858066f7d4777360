package engine

import "math"

// LockablePlacements lists every legal, resting placement of piece t on the
// board, one per distinct key, ordered by rotation then row then column.
// Reachability from spawn is not checked.
func LockablePlacements(b *Board, t PieceType) []Placement {
	var out []Placement
	seen := make(map[Key]bool)

	// Column offsets start as far in as 2 and row offsets as far in as 1, so
	// anchors can sit left of or above the board
	for rot := 0; rot < RotationStates; rot++ {
		for y := -1; y <= b.Rows; y++ {
			for x := -2; x <= b.Cols; x++ {
				p := Placement{Type: t, X: x, Y: y, Rotation: rot}
				if !b.Legal(p) || !b.Resting(p) {
					continue
				}
				k := p.Key()
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// ReachablePlacements lists the lockable placements that can be reached from
// start, in breadth-first order.
func ReachablePlacements(b *Board, start Placement) []Placement {
	var out []Placement
	for _, p := range Explore(b, start) {
		if b.Resting(p) {
			out = append(out, p)
		}
	}
	return out
}

// NearestPlacement returns the candidate whose center is closest to (x, y).
// Ties keep the earlier candidate.
func NearestPlacement(candidates []Placement, x, y float64) (Placement, float64, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range candidates {
		c := p.Center()
		d := math.Hypot(c.X-x, c.Y-y)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Placement{}, 0, false
	}
	return candidates[best], bestDist, true
}

// StackHeight returns the number of rows from the highest filled cell down to
// the floor, or 0 for an empty board.
func StackHeight(b *Board) int {
	for y := 0; y < b.Rows; y++ {
		for x := 0; x < b.Cols; x++ {
			if b.At(x, y) >= 0 {
				return b.Rows - y
			}
		}
	}
	return 0
}
