package engine

import "fmt"

// Replay applies moves to start one at a time and returns every placement
// passed through, start first. A hard drop is only allowed as the last move
// and contributes the locked placement. Any rejected move aborts the replay
// with ErrIllegalMove.
func Replay(b *Board, start Placement, moves []Move) ([]Placement, error) {
	start = start.Normalize()
	if !b.Legal(start) {
		return nil, fmt.Errorf("%w: start %v collides", ErrIllegalMove, start)
	}

	trail := make([]Placement, 0, len(moves)+1)
	trail = append(trail, start)

	current := start
	for i, m := range moves {
		if m == MoveHardDrop {
			if i != len(moves)-1 {
				return trail, fmt.Errorf("%w: move %d: hard drop must be the last move", ErrIllegalMove, i+1)
			}
			current = HardDrop(current, b)
			trail = append(trail, current)
			break
		}

		next, ok := ApplyMove(current, b, m)
		if !ok {
			return trail, fmt.Errorf("%w: move %d (%s) from %v", ErrIllegalMove, i+1, m, current)
		}
		current = next
		trail = append(trail, current)
	}

	return trail, nil
}
