package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/finesse/game/engine"
)

const testConfigDir = "../../configs"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"finesse", "--config-dir", testConfigDir, "--no-color"}, args...)
	err := newApp(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestShow(t *testing.T) {
	out, err := runApp(t, "show", "well")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	for _, want := range []string{"well:", "+----------+", "|..........|", "|IITTTJJJZ.|"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if rows := strings.Count(out, "|\n"); rows != engine.DefaultRows {
		t.Errorf("Expected %d board rows, got %d", engine.DefaultRows, rows)
	}
}

func TestShow_UnknownPreset(t *testing.T) {
	if _, err := runApp(t, "show", "nope"); err == nil {
		t.Error("Expected error for unknown preset")
	}
}

func TestSolve(t *testing.T) {
	out, err := runApp(t, "solve", "--piece", "o", "--x", "0", "--y", "20")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	for _, want := range []string{
		"Goal O@(0,20)r0",
		"Inputs: 5",
		"1.shift_left 2.shift_left 3.shift_left 4.shift_left 5.hard_drop",
		"|##........|",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestSolve_Unreachable(t *testing.T) {
	out, err := runApp(t, "solve", "--piece", "o", "--x", "0", "--y", "5")
	if !errors.Is(err, engine.ErrNoSolution) {
		t.Fatalf("Expected ErrNoSolution for a floating goal, got %v", err)
	}
	if !strings.Contains(out, "No input sequence reaches the goal") {
		t.Errorf("Expected failure message in output:\n%s", out)
	}
}

func TestSolve_Request(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	req := `{"goal": {"type": "T", "x": 3, "y": 20, "rotation": 0}}`
	if err := os.WriteFile(path, []byte(req), 0644); err != nil {
		t.Fatalf("Failed to write request: %v", err)
	}

	out, err := runApp(t, "solve", "--request", path)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "Inputs: 1") || !strings.Contains(out, "1.hard_drop") {
		t.Errorf("Expected a lone hard drop, got:\n%s", out)
	}
}

func TestSolve_BadInput(t *testing.T) {
	badPiece := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(badPiece, []byte(`{"goal": {"type": 9, "x": 0, "y": 0}}`), 0644)

	tests := []struct {
		name string
		args []string
	}{
		{"no piece", []string{"solve"}},
		{"unknown piece", []string{"solve", "--piece", "q"}},
		{"missing request", []string{"solve", "--request", "/non/existent.json"}},
		{"invalid piece id", []string{"solve", "--request", badPiece}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestSolve_RequestBadStart(t *testing.T) {
	tests := []struct {
		name string
		req  string
	}{
		{"unknown start piece", `{"goal": {"type": "T", "x": 3, "y": 20}, "start": {"type": 9, "x": 3, "y": 1}}`},
		{"start piece differs", `{"goal": {"type": "T", "x": 3, "y": 20}, "start": {"type": "O", "x": 4, "y": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "req.json")
			if err := os.WriteFile(path, []byte(tt.req), 0644); err != nil {
				t.Fatalf("Failed to write request: %v", err)
			}
			if _, err := runApp(t, "solve", "--request", path); !errors.Is(err, engine.ErrInvalidRequest) {
				t.Errorf("Expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestPlacements(t *testing.T) {
	out, err := runApp(t, "placements", "--piece", "O", "--reachable")
	if err != nil {
		t.Fatalf("placements failed: %v", err)
	}

	if !strings.Contains(out, "9 placements for O on empty") {
		t.Errorf("Expected nine floor placements, got:\n%s", out)
	}
	if strings.Contains(out, "unreachable") {
		t.Errorf("Reachable listing should not contain unreachable entries:\n%s", out)
	}
	if !strings.Contains(out, "x=4   y=20  r=0  1 inputs") {
		t.Errorf("Expected the spawn column to need one input, got:\n%s", out)
	}
}

func TestRendererPlain(t *testing.T) {
	b := engine.NewBoard(4, 4)
	b.Set(0, 3, int(engine.PieceT))
	goal := engine.Placement{Type: engine.PieceO, X: 2, Y: 2}

	got := renderer{}.board(b, &goal)
	want := strings.Join([]string{
		"+----+",
		"|....|",
		"|....|",
		"|..##|",
		"|T.##|",
		"+----+",
	}, "\n") + "\n"

	if got != want {
		t.Errorf("Unexpected board:\n%s\nwant:\n%s", got, want)
	}
}

func TestRendererColor(t *testing.T) {
	b := engine.NewBoard(4, 4)
	out := renderer{color: true}.board(b, nil)

	// Two characters per cell in color mode
	if !strings.Contains(out, strings.Repeat("-", 8)) {
		t.Errorf("Expected a double-width border, got:\n%s", out)
	}
}

func TestPieceColors(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range engine.AllPieceTypes() {
		c := string(pieceColor(p))
		if seen[c] {
			t.Errorf("Color %s used by more than one piece", c)
		}
		seen[c] = true
	}
	if pieceColor(engine.PieceType(42)) == "" {
		t.Error("Expected a fallback color for unknown pieces")
	}
}
