package main

import (
	"context"
	"fmt"

	"github.com/wricardo/finesse/game/engine"
)

// Stats summarises a run
type Stats struct {
	Pieces    int
	Inputs    int
	Lines     int
	ToppedOut bool
	LastPiece engine.PieceType
}

// play places up to maxPieces pieces starting from state. It stops early when
// a piece has no reachable placement, which is reported as a top out.
func play(ctx context.Context, client *Client, strategy *Strategy, bag *Bag, state *engine.FieldState, clearLines bool, maxPieces int, onPlace func(*engine.PlacementRecord)) (Stats, error) {
	var stats Stats
	linesAtStart := state.LinesCleared

	for stats.Pieces < maxPieces {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		piece := bag.Next()
		stats.LastPiece = piece

		list, err := client.Placements(ctx, piece)
		if err != nil {
			return stats, err
		}

		goal, ok := strategy.Choose(state.Board, list.Placements, clearLines)
		if !ok {
			stats.ToppedOut = true
			return stats, nil
		}

		result, err := client.Place(ctx, goal)
		if err != nil {
			return stats, err
		}
		if result.State == nil || result.Record == nil {
			return stats, fmt.Errorf("place %s: empty response", goal)
		}

		state = result.State
		stats.Pieces++
		stats.Inputs += len(result.Record.Moves)
		stats.Lines = state.LinesCleared - linesAtStart
		if onPlace != nil {
			onPlace(result.Record)
		}
	}
	return stats, nil
}
