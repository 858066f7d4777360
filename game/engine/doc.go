// Package engine provides the core placement logic for the finesse solver.
//
// The engine package implements:
//   - Piece geometry for the seven tetrominoes in four rotation states
//   - Collision detection against an immutable board snapshot
//   - The six single-step moves and the hard drop
//   - Breadth-first search for the shortest move sequence between placements
//   - Move replay, line clearing and a stateful playfield for hosts
//
// Core Types:
//
// Placement is a piece type plus an anchor and rotation. Board is a
// rows × cols grid where negative cells are empty and non-negative cells hold
// the piece type that filled them. Key is the canonical identity of a
// placement, derived from the cells it covers rather than its raw fields, so
// that the O piece in all four rotations is a single search node.
//
// Usage:
//
//	board := engine.NewBoard(22, 10)
//	start := engine.SpawnPlacement(engine.PieceT)
//	goal := engine.Placement{Type: engine.PieceT, X: 0, Y: 20, Rotation: 0}
//
//	moves, ok := engine.FindPath(board, start, goal)
//	if !ok {
//		// the piece cannot be placed there
//	}
//
// Search Rules:
//
// The start and goal must both be legal and the goal must rest on the floor or
// the stack. Moves are explored in a fixed order (shift right, shift left,
// soft drop, rotate clockwise, rotate counter-clockwise, rotate 180) so that
// ties between equally short paths are always broken the same way. Trailing
// soft drops are folded into the final hard drop. Rotations never kick.
//
// Field wraps a board with a preset, a placement history and line clearing.
// It is what sessions, the CLI and the analysis tools build on.
package engine
