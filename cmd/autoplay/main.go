// Command autoplay stacks pieces on a server session. Each piece comes from a
// seven-piece bag; the client asks the server which placements are reachable,
// scores them locally and places the best one until the stack tops out.
package main

import (
	"bytes"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

const sessionFile = ".session"

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Solver server URL")
	configID := flag.String("config", "", "Board preset id (empty, well, tspin, garbage, sandbox)")
	continueSession := flag.String("continue", "", "Resume an existing session by ID")
	maxPieces := flag.Int("max-pieces", 500, "Maximum pieces to place")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Piece randomizer seed")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between placements in milliseconds")
	flag.Parse()

	ctx := context.Background()
	log.Printf("Connecting to solver server at %s", *serverURL)
	client := NewClient(*serverURL)

	session, err := openSession(ctx, client, *continueSession, *configID)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}

	state, err := client.Reset(ctx)
	if err != nil {
		log.Fatalf("Failed to reset board: %v", err)
	}
	log.Printf("Board reset - %dx%d, %d filled cells",
		state.Board.Rows, state.Board.Cols, state.Board.FilledCount())

	clearLines := session.Config == nil || session.Config.ClearLines
	stats, err := play(ctx, client, NewStrategy(DefaultWeights), NewBag(*seed), state, clearLines, *maxPieces, func(r *engine.PlacementRecord) {
		if *verbose {
			log.Printf("#%d %s in %d inputs", r.Number, r.Goal, len(r.Moves))
		}
		if *delayMs > 0 {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	})
	if err != nil {
		log.Printf("Stopped: %v", err)
	}

	log.Printf("Placed %d pieces with %d inputs, %d lines cleared", stats.Pieces, stats.Inputs, stats.Lines)
	if stats.ToppedOut {
		log.Printf("Topped out on %s", stats.LastPiece)
	}
}

// openSession resumes the requested or saved session, falling back to a new
// one whose id is written to the session file.
func openSession(ctx context.Context, client *Client, continueID, configID string) (*service.SessionInfo, error) {
	savedID := continueID
	if savedID == "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedID = string(bytes.TrimSpace(data))
		}
	}

	if savedID != "" {
		client.sessionID = savedID
		log.Printf("Resuming session: %s", savedID)
		session, err := client.GetSession(ctx)
		if err == nil {
			return session, nil
		}
		log.Printf("Failed to resume session (may be expired): %v", err)
	}

	session, err := client.CreateSession(ctx, configID)
	if err != nil {
		return nil, err
	}
	log.Printf("Session created: %s (%s)", session.ID, session.ConfigName)
	if err := os.WriteFile(sessionFile, []byte(session.ID), 0644); err != nil {
		log.Printf("Warning: Failed to save session ID: %v", err)
	}
	return session, nil
}
