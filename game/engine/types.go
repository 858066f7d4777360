package engine

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PieceType identifies one of the seven tetrominoes. The numeric value is also
// the value written into board cells when the piece locks.
type PieceType int

const (
	PieceI PieceType = iota
	PieceJ
	PieceL
	PieceO
	PieceS
	PieceT
	PieceZ

	pieceTypeCount = 7
)

// Move is a single input. All moves except MoveHardDrop are edges of the
// placement graph; MoveHardDrop only ever terminates a path.
type Move string

const (
	MoveShiftRight Move = "shift_right"
	MoveShiftLeft  Move = "shift_left"
	MoveSoftDrop   Move = "soft_drop"
	MoveRotateCW   Move = "rotate_cw"
	MoveRotateCCW  Move = "rotate_ccw"
	MoveRotate180  Move = "rotate_180"
	MoveHardDrop   Move = "hard_drop"
)

const (
	// Empty marks an unoccupied board cell. Any negative value is empty.
	Empty = -1

	// Validation constants
	DefaultRows = 22
	DefaultCols = 10
	MinRows     = 4
	MaxRows     = 64
	MinCols     = 4
	MaxCols     = 64

	RotationStates      = 4
	BlocksPerPiece      = 4
	MaxHistoryPageSize  = 100
	WebSocketBufferSize = 256
)

// Block is one cell on the board's coordinate grid. Y grows downwards.
type Block struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point is a fractional board coordinate, used for piece centers.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement is a piece's type, anchor and rotation at one instant.
// Placements are values; every move produces a new one.
type Placement struct {
	Type     PieceType `json:"type"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Rotation int       `json:"rotation"`
}

// Key is the canonical identity of a placement: its type and the cells it
// covers, sorted. Two placements with equal keys are the same search node.
type Key struct {
	Type   PieceType
	Blocks [BlocksPerPiece]Block
}

// CellEdit sets a single board cell. Value follows the board convention:
// negative clears the cell, 0..6 fills it with a piece type.
type CellEdit struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Value int `json:"value"`
}

// BoardConfig is a board preset loaded from JSON.
type BoardConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Rows        int               `json:"rows"`
	Cols        int               `json:"cols"`
	Layout      []string          `json:"layout"`
	Legend      map[string]string `json:"legend,omitempty"`
	ClearLines  bool              `json:"clear_lines"`
}

// PlacementRecord is one locked piece in a field's history.
type PlacementRecord struct {
	Number      int       `json:"number"`
	Piece       PieceType `json:"piece"`
	Start       Placement `json:"start"`
	Goal        Placement `json:"goal"`
	Moves       []Move    `json:"moves"`
	ClearedRows []int     `json:"cleared_rows,omitempty"`
	Timestamp   int64     `json:"timestamp"`
}

// FieldState is the complete, serialisable state of a Field.
type FieldState struct {
	Board        *Board            `json:"board"`
	Layout       []string          `json:"layout,omitempty"`
	History      []PlacementRecord `json:"history"`
	Placements   int               `json:"placements"`
	LinesCleared int               `json:"lines_cleared"`
	ConfigName   string            `json:"config_name"`
	Message      string            `json:"message"`
}

var pieceLetters = [pieceTypeCount]byte{'I', 'J', 'L', 'O', 'S', 'T', 'Z'}

// Valid reports whether t is one of the seven known piece types.
func (t PieceType) Valid() bool {
	return t >= 0 && t < pieceTypeCount
}

// Letter returns the single upper-case letter for the piece, or '?'.
func (t PieceType) Letter() byte {
	if !t.Valid() {
		return '?'
	}
	return pieceLetters[t]
}

func (t PieceType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("PieceType(%d)", int(t))
	}
	return string(pieceLetters[t])
}

// UnmarshalJSON accepts either the numeric id or a piece name ("t", "T-piece").
func (t *PieceType) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*t = PieceType(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("piece type must be a number or a name: %s", string(data))
	}

	parsed, err := ParsePieceType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParsePieceType parses "t", "T", "t-piece" or a numeric id.
func ParsePieceType(s string) (PieceType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if !PieceType(n).Valid() {
			return 0, fmt.Errorf("unknown piece type %d", n)
		}
		return PieceType(n), nil
	}

	name := strings.ToUpper(strings.TrimSuffix(strings.ToLower(s), "-piece"))
	if len(name) == 1 {
		for i, letter := range pieceLetters {
			if name[0] == letter {
				return PieceType(i), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown piece type %q", s)
}

// AllPieceTypes returns the seven piece types in id order.
func AllPieceTypes() []PieceType {
	types := make([]PieceType, pieceTypeCount)
	for i := range types {
		types[i] = PieceType(i)
	}
	return types
}

// Valid reports whether m is one of the seven known moves.
func (m Move) Valid() bool {
	switch m {
	case MoveShiftRight, MoveShiftLeft, MoveSoftDrop,
		MoveRotateCW, MoveRotateCCW, MoveRotate180, MoveHardDrop:
		return true
	}
	return false
}

// ParseMove parses a move name. Short aliases used by the CLI are accepted.
func ParseMove(s string) (Move, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shift_right", "right", "r":
		return MoveShiftRight, nil
	case "shift_left", "left", "l":
		return MoveShiftLeft, nil
	case "soft_drop", "down", "d":
		return MoveSoftDrop, nil
	case "rotate_cw", "cw", "rotate_90":
		return MoveRotateCW, nil
	case "rotate_ccw", "ccw", "rotate_270":
		return MoveRotateCCW, nil
	case "rotate_180", "180":
		return MoveRotate180, nil
	case "hard_drop", "drop", "hd":
		return MoveHardDrop, nil
	}
	return "", fmt.Errorf("unknown move %q", s)
}
