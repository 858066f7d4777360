package engine

// searchOrder is the edge exploration order. Among equally short paths the
// search returns the one found first under this order, so changing it changes
// results.
var searchOrder = [...]Move{
	MoveShiftRight,
	MoveShiftLeft,
	MoveSoftDrop,
	MoveRotateCW,
	MoveRotateCCW,
	MoveRotate180,
}

// EdgeMoves returns the six graph moves in exploration order.
func EdgeMoves() []Move {
	return append([]Move(nil), searchOrder[:]...)
}

// ApplyMove applies one graph move. The second result is false when the move
// would collide or is not a graph edge; a rejected move is not an error.
func ApplyMove(p Placement, b *Board, m Move) (Placement, bool) {
	var next Placement

	switch m {
	case MoveShiftRight:
		next = p.Shift(1, 0)
	case MoveShiftLeft:
		next = p.Shift(-1, 0)
	case MoveSoftDrop:
		next = p.Shift(0, 1)
	case MoveRotateCW:
		next = p.Rotate(1)
	case MoveRotateCCW:
		next = p.Rotate(-1)
	case MoveRotate180:
		next = p.Rotate(2)
	default:
		return Placement{}, false
	}

	if Collides(next.Blocks(), b) {
		return Placement{}, false
	}
	return next, true
}

// HardDrop soft-drops the placement until the next drop would collide and
// returns the last accepted placement.
func HardDrop(p Placement, b *Board) Placement {
	for {
		next, ok := ApplyMove(p, b, MoveSoftDrop)
		if !ok {
			return p
		}
		p = next
	}
}

// Ghost returns where the placement would lock, or false if it is not legal
// to begin with.
func Ghost(p Placement, b *Board) (Placement, bool) {
	if !b.Legal(p) {
		return Placement{}, false
	}
	return HardDrop(p, b), true
}
