// Command validate checks the board preset JSON files in a directory
// (../configs by default, or the first argument). For each file it checks:
//   - JSON structure, board size, layout characters and legend
//   - that the preset name matches the file name
//   - that every piece type spawns without overlapping the stack
//   - that every piece type can reach at least one lockable placement
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/finesse/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.BoardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateBoardConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	id := strings.TrimSuffix(result.File, ".json")
	if config.Name != id {
		result.fail("Name %q does not match file id %q", config.Name, id)
	}

	board := engine.BoardFromConfig(&config)

	pieces := validatePieces(board)
	if !pieces.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, pieces.Errors...)

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Board: %dx%d", config.Rows, config.Cols)
		result.info("Filled cells: %d (stack height %d)", board.FilledCount(), engine.StackHeight(board))
		result.info("Line clears: %t", config.ClearLines)
	}

	return result
}

// validatePieces checks each piece type: the spawn placement must be legal
// and at least one resting placement must be reachable from it.
func validatePieces(board *engine.Board) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	counts := make([]string, 0, 7)
	for _, t := range engine.AllPieceTypes() {
		spawn := engine.SpawnPlacement(t)
		if !board.Legal(spawn) {
			result.fail("Spawn blocked for %s at (%d,%d)", t, spawn.X, spawn.Y)
			continue
		}

		reachable := engine.ReachablePlacements(board, spawn)
		if len(reachable) == 0 {
			result.fail("No reachable lock for %s", t)
			continue
		}
		counts = append(counts, fmt.Sprintf("%s=%d", t, len(reachable)))
	}

	if result.Valid {
		result.info("Reachable locks: %s", strings.Join(counts, " "))
	}
	return result
}

// main validates every *.json preset in the directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
