package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrIllegalMove    = errors.New("illegal move")
	ErrNoSolution     = errors.New("no solution")
)

// Board is a rows × cols grid stored row-major. A search treats it as a
// read-only snapshot; only a Field mutates its board, between searches.
type Board struct {
	Rows  int   `json:"rows"`
	Cols  int   `json:"cols"`
	Cells []int `json:"cells"`
}

// NewBoard creates an empty board.
func NewBoard(rows, cols int) *Board {
	cells := make([]int, rows*cols)
	for i := range cells {
		cells[i] = Empty
	}
	return &Board{Rows: rows, Cols: cols, Cells: cells}
}

// NewBoardFromCells builds a board snapshot from a flattened cell list.
// The cells are copied.
func NewBoardFromCells(rows, cols int, cells []int) (*Board, error) {
	if rows < MinRows || rows > MaxRows {
		return nil, fmt.Errorf("%w: rows must be between %d and %d, got %d", ErrInvalidRequest, MinRows, MaxRows, rows)
	}
	if cols < MinCols || cols > MaxCols {
		return nil, fmt.Errorf("%w: cols must be between %d and %d, got %d", ErrInvalidRequest, MinCols, MaxCols, cols)
	}
	if len(cells) != rows*cols {
		return nil, fmt.Errorf("%w: expected %d cells for a %dx%d board, got %d", ErrInvalidRequest, rows*cols, rows, cols, len(cells))
	}
	for i, v := range cells {
		if v >= pieceTypeCount {
			return nil, fmt.Errorf("%w: cell %d holds unknown piece type %d", ErrInvalidRequest, i, v)
		}
	}

	b := &Board{Rows: rows, Cols: cols, Cells: make([]int, len(cells))}
	copy(b.Cells, cells)
	return b, nil
}

// InBounds reports whether (x, y) lies on the board.
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Cols && y >= 0 && y < b.Rows
}

// At returns the cell value at (x, y). The coordinates must be in bounds.
func (b *Board) At(x, y int) int {
	return b.Cells[b.Cols*y+x]
}

// Occupied reports whether (x, y) is on the board and filled.
func (b *Board) Occupied(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) >= 0
}

// Set writes a cell value. Out-of-bounds writes are ignored.
func (b *Board) Set(x, y, value int) {
	if !b.InBounds(x, y) {
		return
	}
	if value < 0 {
		value = Empty
	}
	b.Cells[b.Cols*y+x] = value
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (b *Board) Clone() *Board {
	c := &Board{Rows: b.Rows, Cols: b.Cols, Cells: make([]int, len(b.Cells))}
	copy(c.Cells, b.Cells)
	return c
}

// Legal reports whether the placement fits on the board.
func (b *Board) Legal(p Placement) bool {
	return !Collides(p.Blocks(), b)
}

// Resting reports whether a legal placement would collide if dropped one row.
func (b *Board) Resting(p Placement) bool {
	return Collides(p.Shift(0, 1).Blocks(), b)
}

// Lock writes the placement's cells with its piece type.
func (b *Board) Lock(p Placement) {
	for _, block := range p.Blocks() {
		b.Set(block.X, block.Y, int(p.Type))
	}
}

// ClearLines removes every full row, drops the rows above it and returns the
// indices of the removed rows, top to bottom, in pre-clear coordinates.
func (b *Board) ClearLines() []int {
	var cleared []int
	write := b.Rows - 1
	for y := b.Rows - 1; y >= 0; y-- {
		if b.rowFull(y) {
			cleared = append([]int{y}, cleared...)
			continue
		}
		if write != y {
			copy(b.Cells[write*b.Cols:(write+1)*b.Cols], b.Cells[y*b.Cols:(y+1)*b.Cols])
		}
		write--
	}
	for y := write; y >= 0; y-- {
		for x := 0; x < b.Cols; x++ {
			b.Cells[y*b.Cols+x] = Empty
		}
	}
	return cleared
}

// FilledCount returns the number of occupied cells.
func (b *Board) FilledCount() int {
	count := 0
	for _, v := range b.Cells {
		if v >= 0 {
			count++
		}
	}
	return count
}

// Layout renders the board as preset rows: '.' for empty, piece letters otherwise.
func (b *Board) Layout() []string {
	rows := make([]string, b.Rows)
	for y := 0; y < b.Rows; y++ {
		var row strings.Builder
		for x := 0; x < b.Cols; x++ {
			v := b.At(x, y)
			if v < 0 {
				row.WriteByte('.')
			} else {
				row.WriteByte(PieceType(v).Letter())
			}
		}
		rows[y] = row.String()
	}
	return rows
}

func (b *Board) String() string {
	return strings.Join(b.Layout(), "\n")
}

func (b *Board) rowFull(y int) bool {
	for x := 0; x < b.Cols; x++ {
		if b.At(x, y) < 0 {
			return false
		}
	}
	return true
}

// Collides reports whether any block is out of bounds or on a filled cell.
func Collides(blocks []Block, b *Board) bool {
	for _, block := range blocks {
		if !b.InBounds(block.X, block.Y) || b.At(block.X, block.Y) >= 0 {
			return true
		}
	}
	return false
}
