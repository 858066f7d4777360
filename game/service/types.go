package service

import (
	"fmt"
	"time"

	"github.com/wricardo/finesse/game/engine"
)

// SessionInfo provides information about a playfield session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	State          *engine.FieldState  `json:"state"`
	Config         *engine.BoardConfig `json:"config"`
}

// BoardSpec describes a board snapshot in a request. Layout takes precedence
// over Cells; with neither, the board is empty.
type BoardSpec struct {
	Rows   int      `json:"rows,omitempty"`
	Cols   int      `json:"cols,omitempty"`
	Cells  []int    `json:"cells,omitempty"`
	Layout []string `json:"layout,omitempty"`
}

// Build validates the board spec and returns a fresh board
func (s BoardSpec) Build() (*engine.Board, error) {
	if len(s.Layout) > 0 {
		config := &engine.BoardConfig{
			Name:        "request",
			Description: "request board",
			Rows:        len(s.Layout),
			Cols:        len(s.Layout[0]),
			Layout:      s.Layout,
		}
		if err := engine.ValidateBoardConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", engine.ErrInvalidRequest, err)
		}
		return engine.BoardFromConfig(config), nil
	}

	rows, cols := s.Rows, s.Cols
	if rows == 0 {
		rows = engine.DefaultRows
	}
	if cols == 0 {
		cols = engine.DefaultCols
	}
	if s.Cells == nil {
		if rows < engine.MinRows || rows > engine.MaxRows || cols < engine.MinCols || cols > engine.MaxCols {
			return nil, fmt.Errorf("%w: board size %dx%d out of range", engine.ErrInvalidRequest, rows, cols)
		}
		return engine.NewBoard(rows, cols), nil
	}
	return engine.NewBoardFromCells(rows, cols, s.Cells)
}

// SolveRequest asks for the shortest input sequence on a given board. A nil
// Start means the goal piece's spawn placement.
type SolveRequest struct {
	BoardSpec
	Start *engine.Placement `json:"start,omitempty"`
	Goal  engine.Placement  `json:"goal"`
}

// SolveResult is the outcome of a solve. Moves is nil when Found is false.
type SolveResult struct {
	Found     bool               `json:"found"`
	Moves     []engine.Move      `json:"moves"`
	Depth     int                `json:"depth"`
	Expanded  int                `json:"expanded"`
	Start     engine.Placement   `json:"start"`
	Goal      engine.Placement   `json:"goal"`
	Trail     []engine.Placement `json:"trail,omitempty"`
	ElapsedMS float64            `json:"elapsed_ms"`
}

// ReplayRequest applies an input sequence to a start placement
type ReplayRequest struct {
	BoardSpec
	Start engine.Placement `json:"start"`
	Moves []engine.Move    `json:"moves"`
}

// ReplayResult is every placement the piece passed through
type ReplayResult struct {
	Trail  []engine.Placement `json:"trail"`
	Final  engine.Placement   `json:"final"`
	Locked bool               `json:"locked"` // final placement rests on the stack or floor
}

// PlaceRequest names a goal placement in a session. A nil Start means spawn.
type PlaceRequest struct {
	Goal  engine.Placement  `json:"goal"`
	Start *engine.Placement `json:"start,omitempty"`
}

// PlaceResult contains the result of locking a piece
type PlaceResult struct {
	Record *engine.PlacementRecord `json:"record"`
	State  *engine.FieldState      `json:"state"`
	Events []BoardEvent            `json:"events,omitempty"`
}

// BoardEvent represents a change to a playfield
type BoardEvent struct {
	Type      string    `json:"type"` // "lock", "line_clear", "edit", "clear", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Rows      []int     `json:"rows,omitempty"`
}

// PlacementOptions filters placement listings
type PlacementOptions struct {
	Type      engine.PieceType `json:"type"`
	Reachable bool             `json:"reachable"` // only placements reachable from Start
	Start     *engine.Placement
	Near      *engine.Point // also report the placement closest to this point
}

// PlacementOption is one lockable placement with its geometry
type PlacementOption struct {
	engine.Placement
	Blocks []engine.Block `json:"blocks"`
	Center engine.Point   `json:"center"`
}

// PlacementList is the result of a placement listing
type PlacementList struct {
	Type       engine.PieceType  `json:"type"`
	Reachable  bool              `json:"reachable"`
	Count      int               `json:"count"`
	Placements []PlacementOption `json:"placements"`
	Nearest    *PlacementOption  `json:"nearest,omitempty"`
	// Ghost is where the start piece lands with a hard drop and no other
	// input. Absent when the start is blocked.
	Ghost *PlacementOption `json:"ghost,omitempty"`
}

// HistoryOptions configures placement history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated placement history
type HistoryResponse struct {
	Placements      []engine.PlacementRecord `json:"placements"`
	TotalPlacements int                      `json:"total_placements"`
	Page            int                      `json:"page"`
	PageSize        int                      `json:"page_size"`
	TotalPages      int                      `json:"total_pages"`
	HasNext         bool                     `json:"has_next"`
	HasPrevious     bool                     `json:"has_previous"`
}

// ConfigInfo provides information about a board preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	ClearLines  bool   `json:"clear_lines"`
}

func newPlacementOption(p engine.Placement) PlacementOption {
	return PlacementOption{
		Placement: p,
		Blocks:    p.Blocks(),
		Center:    p.Center(),
	}
}
