package engine

import (
	"fmt"
	"time"
)

// Engine provides the operations of a stateful playfield
type Engine interface {
	// Field state management
	GetState() *FieldState
	Snapshot() *FieldState
	SetState(state *FieldState) error
	GetBoard() *Board
	Reset() *FieldState
	Clear() *FieldState
	SetCells(edits []CellEdit) error

	// Solving and locking pieces
	Solve(goal Placement, start *Placement) SearchResult
	Place(goal Placement, start *Placement) (*PlacementRecord, error)
	Lock(start Placement, moves []Move) (*PlacementRecord, error)

	GetConfig() *BoardConfig
	GetHistory() []PlacementRecord
	Version() uint64
}

// Field implements the Engine interface. It is not safe for concurrent use;
// callers serialise access.
type Field struct {
	state   *FieldState
	config  *BoardConfig
	version uint64
}

var _ Engine = (*Field)(nil)

// NewField creates a new field from a board preset
func NewField(config *BoardConfig) (*Field, error) {
	if err := ValidateBoardConfig(config); err != nil {
		return nil, err
	}

	f := &Field{
		config: config,
		state:  InitFieldStateFromConfig(config),
	}
	f.sync()
	return f, nil
}

// GetState returns the live field state. It changes with the next edit or
// lock; anything that outlives the caller's lock should use Snapshot.
func (f *Field) GetState() *FieldState {
	return f.state
}

// Snapshot returns a deep copy of the field state
func (f *Field) Snapshot() *FieldState {
	s := *f.state
	s.Board = f.state.Board.Clone()
	s.Layout = append([]string(nil), f.state.Layout...)
	s.History = make([]PlacementRecord, len(f.state.History))
	for i, r := range f.state.History {
		r.Moves = append([]Move(nil), r.Moves...)
		r.ClearedRows = append([]int(nil), r.ClearedRows...)
		s.History[i] = r
	}
	return &s
}

// Version counts changes to the field. Two equal versions mean the board
// has not been touched in between.
func (f *Field) Version() uint64 {
	return f.version
}

// SetState sets the field state (used for persistence loading)
func (f *Field) SetState(state *FieldState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Board == nil {
		return fmt.Errorf("state has no board")
	}
	board, err := NewBoardFromCells(state.Board.Rows, state.Board.Cols, state.Board.Cells)
	if err != nil {
		return fmt.Errorf("state board: %w", err)
	}
	state.Board = board
	if f.config != nil && (state.Board.Rows != f.config.Rows || state.Board.Cols != f.config.Cols) {
		return fmt.Errorf("state board is %dx%d, config %s is %dx%d",
			state.Board.Rows, state.Board.Cols, f.config.Name, f.config.Rows, f.config.Cols)
	}
	if state.History == nil {
		state.History = []PlacementRecord{}
	}
	f.state = state
	f.sync()
	return nil
}

// GetBoard returns the live board. Callers that search concurrently must
// Clone it first.
func (f *Field) GetBoard() *Board {
	return f.state.Board
}

// Reset restores the preset layout
func (f *Field) Reset() *FieldState {
	// History survives resets; counters restart
	prevHistory := f.state.History

	f.state = InitFieldStateFromConfig(f.config)
	f.state.History = prevHistory
	f.sync()
	return f.state
}

// Clear empties every cell, ignoring the preset layout
func (f *Field) Clear() *FieldState {
	f.state.Board = NewBoard(f.state.Board.Rows, f.state.Board.Cols)
	f.state.Message = "Board cleared"
	f.sync()
	return f.state
}

// SetCells applies a batch of cell edits. The batch is rejected as a whole if
// any edit is out of bounds or names an unknown piece.
func (f *Field) SetCells(edits []CellEdit) error {
	b := f.state.Board
	for i, e := range edits {
		if !b.InBounds(e.X, e.Y) {
			return fmt.Errorf("%w: edit %d at (%d,%d) is outside the %dx%d board",
				ErrInvalidRequest, i+1, e.X, e.Y, b.Rows, b.Cols)
		}
		if e.Value >= pieceTypeCount {
			return fmt.Errorf("%w: edit %d holds unknown piece type %d", ErrInvalidRequest, i+1, e.Value)
		}
	}

	for _, e := range edits {
		b.Set(e.X, e.Y, e.Value)
	}
	f.state.Message = fmt.Sprintf("Updated %d cells", len(edits))
	f.sync()
	return nil
}

// Solve searches the current board without changing it. A nil start means the
// goal piece's spawn placement. Goals ResolveStart rejects are not found.
func (f *Field) Solve(goal Placement, start *Placement) SearchResult {
	from, err := ResolveStart(goal, start)
	if err != nil {
		return SearchResult{}
	}
	return Search(f.state.Board, from, goal)
}

// Place finds the shortest input sequence to goal and locks the piece there.
func (f *Field) Place(goal Placement, start *Placement) (*PlacementRecord, error) {
	from, err := ResolveStart(goal, start)
	if err != nil {
		return nil, err
	}

	result := Search(f.state.Board, from, goal)
	if !result.Found {
		f.state.Message = fmt.Sprintf("No way to lock %v", goal.Normalize())
		return nil, fmt.Errorf("%w: %v cannot be reached from %v", ErrNoSolution, goal.Normalize(), from.Normalize())
	}
	return f.Lock(from, result.Moves)
}

// Lock replays moves from start and locks the piece where it ends up. The
// final placement must be resting on the stack or the floor.
func (f *Field) Lock(start Placement, moves []Move) (*PlacementRecord, error) {
	if !start.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown piece type %d", ErrInvalidRequest, int(start.Type))
	}

	trail, err := Replay(f.state.Board, start, moves)
	if err != nil {
		return nil, err
	}
	final := trail[len(trail)-1]
	if !f.state.Board.Resting(final) {
		return nil, fmt.Errorf("%w: %v is floating and cannot lock", ErrIllegalMove, final)
	}

	f.state.Board.Lock(final)
	var cleared []int
	if f.config == nil || f.config.ClearLines {
		cleared = f.state.Board.ClearLines()
	}

	record := PlacementRecord{
		Number:      len(f.state.History) + 1,
		Piece:       final.Type,
		Start:       start.Normalize(),
		Goal:        final,
		Moves:       append([]Move(nil), moves...),
		ClearedRows: cleared,
		Timestamp:   time.Now().Unix(),
	}
	f.state.History = append(f.state.History, record)
	f.state.Placements++
	f.state.LinesCleared += len(cleared)

	f.state.Message = fmt.Sprintf("Locked %v in %d inputs", final, len(moves))
	if len(cleared) > 0 {
		f.state.Message += fmt.Sprintf(", cleared %d lines", len(cleared))
	}
	f.sync()
	return &record, nil
}

// GetConfig returns the current board preset
func (f *Field) GetConfig() *BoardConfig {
	return f.config
}

// GetHistory returns every locked piece, across resets
func (f *Field) GetHistory() []PlacementRecord {
	return f.state.History
}

func (f *Field) sync() {
	f.state.Layout = f.state.Board.Layout()
	f.version++
}

// ResolveStart checks that goal names a known piece and returns the start
// placement to search from: start itself, or the spawn placement when start
// is nil. A start of another piece type is rejected.
func ResolveStart(goal Placement, start *Placement) (Placement, error) {
	if !goal.Type.Valid() {
		return Placement{}, fmt.Errorf("%w: unknown piece type %d", ErrInvalidRequest, int(goal.Type))
	}
	if start == nil {
		return SpawnPlacement(goal.Type), nil
	}
	if start.Type != goal.Type {
		return Placement{}, fmt.Errorf("%w: start is %v, goal is %v", ErrInvalidRequest, start.Type, goal.Type)
	}
	return *start, nil
}
