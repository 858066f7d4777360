// Command analyze prints quick, human-readable statistics about the board
// presets in the configs directory. For each preset and piece type it reports
// how many placements could lock on the board, how many of those are
// reachable from spawn, and the longest input sequence among them.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/wricardo/finesse/game/config"
	"github.com/wricardo/finesse/game/engine"
)

// PieceStats summarises one piece type on one board.
type PieceStats struct {
	Piece     engine.PieceType
	Lockable  int
	Reachable int
	Longest   int              // inputs in the longest finesse path, hard drop included
	Hardest   engine.Placement // target of the longest path
}

// Unreachable is the number of lockable placements no input sequence reaches.
func (s PieceStats) Unreachable() int {
	return s.Lockable - s.Reachable
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		fmt.Printf("Error opening presets: %v\n", err)
		os.Exit(1)
	}

	presets, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing presets: %v\n", err)
		os.Exit(1)
	}

	for _, info := range presets {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)

		preset, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading preset: %v\n", err)
			continue
		}
		fmt.Print(report(preset))
	}
}

// analyzeBoard computes stats for every piece type, spawning at the standard
// spawn placement.
func analyzeBoard(b *engine.Board) []PieceStats {
	stats := make([]PieceStats, 0, 7)
	for _, t := range engine.AllPieceTypes() {
		s := PieceStats{
			Piece:    t,
			Lockable: len(engine.LockablePlacements(b, t)),
		}

		spawn := engine.SpawnPlacement(t)
		for _, goal := range engine.ReachablePlacements(b, spawn) {
			s.Reachable++
			moves, ok := engine.FindPath(b, spawn, goal)
			if ok && len(moves) > s.Longest {
				s.Longest = len(moves)
				s.Hardest = goal
			}
		}
		stats = append(stats, s)
	}
	return stats
}

func report(preset *engine.BoardConfig) string {
	b := engine.BoardFromConfig(preset)

	var out strings.Builder
	fmt.Fprintf(&out, "Name: %s\n", preset.Name)
	fmt.Fprintf(&out, "Board: %d rows x %d cols\n", preset.Rows, preset.Cols)
	fmt.Fprintf(&out, "Filled cells: %d, stack height %d\n", b.FilledCount(), engine.StackHeight(b))

	fmt.Fprintf(&out, "%-5s %8s %9s %7s  %s\n", "Piece", "Lockable", "Reachable", "Longest", "Target")
	for _, s := range analyzeBoard(b) {
		target := "-"
		if s.Longest > 0 {
			target = s.Hardest.String()
		}
		fmt.Fprintf(&out, "%-5s %8d %9d %7d  %s\n", s.Piece, s.Lockable, s.Reachable, s.Longest, target)
		if n := s.Unreachable(); n > 0 {
			fmt.Fprintf(&out, "      ⚠️  %d placements need more than movement (unreachable from spawn)\n", n)
		}
	}
	return out.String()
}
