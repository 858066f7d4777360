// Package mcp exposes the solver to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON response is rendered as plain text that
// a model can read (boards with row and column numbers, input sequences as
// comma separated move names).
//
// MCP Tools:
//   - solve: shortest input sequence on an ad-hoc board
//   - create_session, list_sessions, get_session: session management
//   - get_board, set_cells: inspect and edit a session board
//   - list_placements: lockable or reachable placements for a piece
//   - place_piece: solve and lock a piece in a session
//   - placement_history: paginated placement records
//   - list_configs: board presets
//   - solver_instructions: coordinate and move reference
//
// Transport Modes:
//
// The same MCP server can be served over stdio for local agents or mounted
// on the HTTP router at /mcp:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	httpServer := server.NewStreamableHTTPServer(client.GetMCPServer())
//	router.PathPrefix("/mcp").Handler(httpServer)
//
// Tool failures, including REST errors, are returned as error results rather
// than protocol errors so the agent sees the message.
package mcp
