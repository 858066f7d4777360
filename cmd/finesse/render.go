package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/finesse/game/engine"
)

// pieceColors are the guideline colours in piece id order: I J L O S T Z.
var pieceColors = [...]lipgloss.Color{"51", "21", "208", "226", "46", "93", "196"}

func pieceColor(t engine.PieceType) lipgloss.Color {
	if !t.Valid() {
		return lipgloss.Color("240")
	}
	return pieceColors[t]
}

// renderer draws boards for the terminal. With color off every cell is a
// single character: '.', a piece letter, or '#' for the overlay piece.
type renderer struct {
	color bool
}

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func (r renderer) cell(value int, overlay bool, piece engine.PieceType) string {
	if !r.color {
		switch {
		case overlay:
			return "#"
		case value < 0:
			return "."
		default:
			return string(engine.PieceType(value).Letter())
		}
	}

	switch {
	case overlay:
		return lipgloss.NewStyle().Foreground(pieceColor(piece)).Render("[]")
	case value < 0:
		return "  "
	default:
		return lipgloss.NewStyle().Background(pieceColor(engine.PieceType(value))).Render("  ")
	}
}

// board renders b inside a border. overlay, when not nil, is drawn on top in
// outline so the goal placement can be told apart from the stack.
func (r renderer) board(b *engine.Board, overlay *engine.Placement) string {
	marked := make(map[engine.Block]bool)
	var piece engine.PieceType
	if overlay != nil {
		piece = overlay.Type
		for _, block := range overlay.Blocks() {
			marked[block] = true
		}
	}

	width := b.Cols
	if r.color {
		width *= 2
	}
	edge := "+" + strings.Repeat("-", width) + "+"

	var out strings.Builder
	out.WriteString(r.border(edge))
	out.WriteString("\n")
	for y := 0; y < b.Rows; y++ {
		out.WriteString(r.border("|"))
		for x := 0; x < b.Cols; x++ {
			out.WriteString(r.cell(b.At(x, y), marked[engine.Block{X: x, Y: y}], piece))
		}
		out.WriteString(r.border("|"))
		out.WriteString("\n")
	}
	out.WriteString(r.border(edge))
	out.WriteString("\n")
	return out.String()
}

func (r renderer) border(s string) string {
	if !r.color {
		return s
	}
	return borderStyle.Render(s)
}

func (r renderer) title(s string) string {
	if !r.color {
		return s
	}
	return titleStyle.Render(s)
}

func (r renderer) help(s string) string {
	if !r.color {
		return s
	}
	return helpStyle.Render(s)
}

// moves renders an input sequence as a numbered list on one line.
func (r renderer) moves(moves []engine.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = fmt.Sprintf("%d.%s", i+1, m)
	}
	return strings.Join(parts, " ")
}

// solution lays the board with the goal next to the input list.
func (r renderer) solution(b *engine.Board, goal engine.Placement, result engine.SearchResult) string {
	info := []string{
		r.title("Goal " + goal.String()),
		"",
	}
	if result.Found {
		info = append(info,
			fmt.Sprintf("Inputs: %d", len(result.Moves)),
			r.moves(result.Moves),
		)
	} else {
		info = append(info, "No input sequence reaches the goal")
	}
	info = append(info, "", r.help(fmt.Sprintf("explored %d placements", result.Expanded)))

	board := r.board(b, &goal)
	if !r.color {
		return board + strings.Join(info, "\n") + "\n"
	}
	panel := lipgloss.NewStyle().PaddingLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, info...))
	return lipgloss.JoinHorizontal(lipgloss.Top, board, panel) + "\n"
}
