// Package api exposes the solver over HTTP.
//
// Routes are registered on a gorilla/mux router and wrapped in chi's
// RequestID, RealIP, Logger and Recoverer middleware.
//
// Endpoints:
//
// Stateless:
//   - POST /api/solve - shortest input sequence for a goal on a given board
//   - POST /api/replay - apply an input sequence and return every placement
//
// Sessions:
//   - POST /api/sessions - create a session from a preset ({"config_id": "tspin"})
//   - GET /api/sessions - list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - several boards at once (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - session info and board
//   - DELETE /api/sessions/{id} - delete a session
//
// Board:
//   - GET /api/sessions/{id}/board - current field state
//   - PUT /api/sessions/{id}/cells - batch cell edits ({"cells": [{"x":0,"y":21,"value":5}]})
//   - POST /api/sessions/{id}/clear - empty the board
//   - POST /api/sessions/{id}/reset - restore the preset layout
//
// Placement:
//   - POST /api/sessions/{id}/solve - solve on the session board without locking
//   - POST /api/sessions/{id}/place - solve and lock the piece
//   - GET /api/sessions/{id}/placements?type=t&reachable=true&x=4&y=19 - lockable placements
//   - GET /api/sessions/{id}/history - paginated placement history (?page=&limit=&order=)
//
// Presets:
//   - GET /api/configs, POST /api/configs, GET /api/configs/{name}
//
// Other:
//   - GET /healthz
//   - GET /ws?session={id} - websocket board updates
//
// Request Format:
//
// A solve request names a board and a goal. The board is either a layout
// (rows of '.' and piece letters) or rows, cols and a flat cells array.
// Omitting it means an empty 22x10 board; omitting start means the goal
// piece's spawn placement.
//
//	{
//	  "layout": ["....", "....", "....", "TT.."],
//	  "goal": {"type": "O", "x": 2, "y": 2, "rotation": 0}
//	}
//
// Piece types may be given as ids (0-6) or letters ("T", "t-piece").
//
// Error Handling:
//
// Errors are JSON bodies of the form {"error": "message"}:
//
//	400  malformed body, unknown piece, board out of range
//	404  unknown session or preset
//	422  goal unreachable when placing, illegal replay
//	503  solver shutting down
//
// An unreachable goal in POST /api/solve is a 200 with "found": false.
package api
