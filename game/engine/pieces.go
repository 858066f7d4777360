package engine

import (
	"cmp"
	"fmt"
	"slices"
)

// pieceOffsets holds the four cells of every piece in every rotation state,
// relative to the placement anchor.
var pieceOffsets = [pieceTypeCount][RotationStates][BlocksPerPiece]Block{
	PieceI: {
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}},
		{{2, -1}, {2, 0}, {2, 1}, {2, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {3, 1}},
		{{1, -1}, {1, 0}, {1, 1}, {1, 2}},
	},
	PieceJ: {
		{{0, 0}, {0, 1}, {1, 1}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 0}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 2}},
		{{0, 2}, {1, 0}, {1, 1}, {1, 2}},
	},
	PieceL: {
		{{0, 1}, {1, 1}, {2, 1}, {2, 0}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 1}, {0, 2}, {1, 1}, {2, 1}},
		{{0, 0}, {1, 0}, {1, 1}, {1, 2}},
	},
	PieceO: {
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
		{{0, 0}, {0, 1}, {1, 0}, {1, 1}},
	},
	PieceS: {
		{{0, 1}, {1, 1}, {1, 0}, {2, 0}},
		{{1, 0}, {1, 1}, {2, 1}, {2, 2}},
		{{0, 2}, {1, 2}, {1, 1}, {2, 1}},
		{{0, 0}, {0, 1}, {1, 1}, {1, 2}},
	},
	PieceT: {
		{{0, 1}, {1, 1}, {1, 0}, {2, 1}},
		{{1, 0}, {1, 1}, {1, 2}, {2, 1}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 1}},
		{{0, 1}, {1, 0}, {1, 1}, {1, 2}},
	},
	PieceZ: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{1, 2}, {1, 1}, {2, 1}, {2, 0}},
		{{0, 1}, {1, 1}, {1, 2}, {2, 2}},
		{{0, 2}, {0, 1}, {1, 1}, {1, 0}},
	},
}

// pieceCenters is the mean of each rotation's offsets, moved to the middle of
// the cells. Computed once from pieceOffsets.
var pieceCenters = func() [pieceTypeCount][RotationStates]Point {
	var centers [pieceTypeCount][RotationStates]Point
	for t := range pieceOffsets {
		for r, blocks := range pieceOffsets[t] {
			var sx, sy int
			for _, b := range blocks {
				sx += b.X
				sy += b.Y
			}
			centers[t][r] = Point{
				X: float64(sx)/BlocksPerPiece + 0.5,
				Y: float64(sy)/BlocksPerPiece + 0.5,
			}
		}
	}
	return centers
}()

// Offsets returns the relative cells of a piece in a rotation state. It panics
// on an unknown piece type; requests are validated before reaching here.
func Offsets(t PieceType, rotation int) [BlocksPerPiece]Block {
	if !t.Valid() {
		panic(fmt.Sprintf("engine: no geometry for %v", t))
	}
	return pieceOffsets[t][normalizeRotation(rotation)]
}

// SpawnPlacement returns where a fresh piece of type t enters the board.
func SpawnPlacement(t PieceType) Placement {
	p := Placement{Type: t, X: 3, Y: 0}
	if t == PieceO {
		p.X = 4
	}
	if t == PieceI {
		p.Y = 1
	}
	return p
}

// Blocks resolves the placement into absolute board cells, in table order.
func (p Placement) Blocks() []Block {
	offsets := Offsets(p.Type, p.Rotation)
	blocks := make([]Block, BlocksPerPiece)
	for i, o := range offsets {
		blocks[i] = Block{X: o.X + p.X, Y: o.Y + p.Y}
	}
	return blocks
}

// Center returns the fractional center of the covered cells, in board units.
func (p Placement) Center() Point {
	if !p.Type.Valid() {
		panic(fmt.Sprintf("engine: no geometry for %v", p.Type))
	}
	c := pieceCenters[p.Type][normalizeRotation(p.Rotation)]
	return Point{X: c.X + float64(p.X), Y: c.Y + float64(p.Y)}
}

// Key returns the canonical identity of the placement.
func (p Placement) Key() Key {
	k := Key{Type: p.Type}
	copy(k.Blocks[:], p.Blocks())
	slices.SortFunc(k.Blocks[:], compareBlocks)
	return k
}

// Equals reports whether both placements cover the same cells.
func (p Placement) Equals(other Placement) bool {
	return p.Key() == other.Key()
}

// Shift returns the placement moved by (dx, dy).
func (p Placement) Shift(dx, dy int) Placement {
	p.X += dx
	p.Y += dy
	return p
}

// Rotate returns the placement turned by amount quarter turns clockwise.
func (p Placement) Rotate(amount int) Placement {
	p.Rotation = normalizeRotation(p.Rotation + amount)
	return p
}

// Normalize returns the placement with its rotation in 0..3.
func (p Placement) Normalize() Placement {
	p.Rotation = normalizeRotation(p.Rotation)
	return p
}

func (p Placement) String() string {
	return fmt.Sprintf("%v@(%d,%d)r%d", p.Type, p.X, p.Y, p.Rotation)
}

func normalizeRotation(r int) int {
	return ((r % RotationStates) + RotationStates) % RotationStates
}

func compareBlocks(a, b Block) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}
