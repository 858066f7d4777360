package engine

import "fmt"

// defaultLegend documents the layout characters. A preset that carries a
// legend must agree with it.
var defaultLegend = map[string]string{
	".": "empty",
	"I": "i-piece",
	"J": "j-piece",
	"L": "l-piece",
	"O": "o-piece",
	"S": "s-piece",
	"T": "t-piece",
	"Z": "z-piece",
}

// ValidateBoardConfig validates a board preset
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Rows < MinRows || config.Rows > MaxRows {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinRows, MaxRows, config.Rows)
	}
	if config.Cols < MinCols || config.Cols > MaxCols {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinCols, MaxCols, config.Cols)
	}

	// An omitted layout means an empty board
	if len(config.Layout) != 0 && len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows to match rows, got %d",
			config.Rows, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.Cols {
			return fmt.Errorf("config validation: row %d must have %d characters to match cols, got %d",
				i+1, config.Cols, len(row))
		}
		for j, char := range row {
			if _, ok := cellFromChar(char); !ok {
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	for key, value := range config.Legend {
		expected, ok := defaultLegend[key]
		if !ok {
			return fmt.Errorf("config validation: legend key '%s' is not a layout character", key)
		}
		if value != expected {
			return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expected, value)
		}
	}

	return nil
}

// DefaultBoardConfig is the standard empty 22×10 playfield.
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Name:        "empty",
		Description: "Empty 22x10 playfield",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		ClearLines:  true,
	}
}

// BoardFromConfig builds the initial board described by a preset. The config
// is assumed to be valid.
func BoardFromConfig(config *BoardConfig) *Board {
	b := NewBoard(config.Rows, config.Cols)
	for y, row := range config.Layout {
		for x, char := range row {
			if v, ok := cellFromChar(char); ok {
				b.Set(x, y, v)
			}
		}
	}
	return b
}

// InitFieldStateFromConfig creates a fresh field state from a preset
func InitFieldStateFromConfig(config *BoardConfig) *FieldState {
	if config == nil {
		config = DefaultBoardConfig()
	}

	return &FieldState{
		Board:      BoardFromConfig(config),
		History:    []PlacementRecord{},
		ConfigName: config.Name,
		Message:    fmt.Sprintf("Loaded %s (%dx%d)", config.Name, config.Rows, config.Cols),
	}
}

func cellFromChar(char rune) (int, bool) {
	if char == '.' {
		return Empty, true
	}
	for i, letter := range pieceLetters {
		if char == rune(letter) {
			return i, true
		}
	}
	return 0, false
}
