// Package service provides the business logic layer for the finesse solver.
//
// The service package implements:
//   - Stateless solve and replay requests on caller-supplied boards
//   - Multi-session playfield management
//   - Piece placement, line clearing and placement history
//   - A worker pool that runs searches off the request goroutine
//
// Core Interfaces:
//
// SolverService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns an engine.Field. Mutations hold the service
// lock for their whole duration; solves take a snapshot of the board under a
// read lock and search it on the Pool without holding any lock.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	pool := service.NewPool(service.PoolSize(0))
//	defer pool.Close()
//	solver := service.NewSolverService(sessionMgr, configMgr, pool)
//
//	result, err := solver.Solve(ctx, &service.SolveRequest{
//		Goal: engine.Placement{Type: engine.PieceT, X: 3, Y: 20},
//	})
//
// Failure Reporting:
//
// A goal that cannot be reached is not an error for Solve: the result comes
// back with Found false. PlacePiece, which must change the board, reports it
// as engine.ErrNoSolution.
package service
