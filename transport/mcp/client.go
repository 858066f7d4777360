package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Finesse Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Finesse Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The solver finds the shortest sequence of inputs (shifts, soft drops,
rotations) that moves a tetromino from its spawn to a goal placement,
followed by a hard drop.

AVAILABLE TOOLS:
- solve: Shortest input sequence on an ad-hoc board (layout rows)
- create_session: Create a board session from a preset
- list_sessions / get_session: Inspect sessions
- get_board: Render a session's board
- set_cells: Fill or clear cells on a session board
- list_placements: Lockable placements for a piece, optionally only reachable ones
- place_piece: Solve for a placement and lock the piece
- placement_history: Past placements with their inputs
- list_configs: Available board presets
- solver_instructions: Coordinates, rotations and move names explained

Call solver_instructions first if you are unsure about coordinates.`),
	)

	c.registerTools()
}

func placementProperties(props map[string]interface{}) map[string]interface{} {
	props["type"] = map[string]interface{}{
		"type":        "string",
		"description": "Piece type: I, J, L, O, S, T or Z",
	}
	props["x"] = map[string]interface{}{
		"type":        "integer",
		"description": "Anchor column (0-based, left to right)",
	}
	props["y"] = map[string]interface{}{
		"type":        "integer",
		"description": "Anchor row (0-based, top to bottom)",
	}
	props["rotation"] = map[string]interface{}{
		"type":        "integer",
		"description": "Rotation state 0-3 (0 spawn, 1 clockwise, 2 flipped, 3 counter-clockwise)",
	}
	return props
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve",
		Description: "Find the shortest input sequence from spawn to a goal placement on an ad-hoc board. The piece is not locked.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: placementProperties(map[string]interface{}{
				"layout": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Board rows from top to bottom, '.' for empty and piece letters for filled cells. Omit for an empty 22x10 board.",
				},
			}),
			Required: []string{"type", "x", "y", "rotation"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new board session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to start from (see list_configs). Defaults to the empty board.",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get session details",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_board",
		Description: "Render the current board of a session with row and column numbers",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_cells",
		Description: "Fill or clear cells on a session board. Value is a piece id 0-6 (I J L O S T Z) or -1 to clear.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"cells": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"x":     map[string]interface{}{"type": "integer"},
							"y":     map[string]interface{}{"type": "integer"},
							"value": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x", "y", "value"},
					},
					"description": "Cells to edit",
				},
			},
			Required: []string{"session_id", "cells"},
		},
	}, c.handleSetCells)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_placements",
		Description: "List every placement where a piece would lock on the session board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"type": map[string]interface{}{
					"type":        "string",
					"description": "Piece type: I, J, L, O, S, T or Z",
				},
				"reachable": map[string]interface{}{
					"type":        "boolean",
					"description": "Only placements reachable from spawn",
				},
			},
			Required: []string{"session_id", "type"},
		},
	}, c.handleListPlacements)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_piece",
		Description: "Solve for a goal placement on the session board and lock the piece there. Full lines are cleared.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: placementProperties(map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			}),
			Required: []string{"session_id", "type", "x", "y", "rotation"},
		},
	}, c.handlePlacePiece)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "placement_history",
		Description: "Get placement history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handlePlacementHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solver_instructions",
		Description: "Explain coordinates, rotations, moves and board notation",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSolverInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument. Numbers arrive as float64.
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// placementArg builds a placement from the type, x, y and rotation arguments
func placementArg(args map[string]interface{}) (engine.Placement, error) {
	typeName, _ := args["type"].(string)
	pieceType, err := engine.ParsePieceType(typeName)
	if err != nil {
		return engine.Placement{}, err
	}

	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return engine.Placement{}, fmt.Errorf("x and y are required integers")
	}
	rotation, _ := intArg(args, "rotation")

	return engine.Placement{Type: pieceType, X: x, Y: y, Rotation: rotation}, nil
}

// Tool handlers

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	goal, err := placementArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := service.SolveRequest{Goal: goal}
	if rows, ok := args["layout"].([]interface{}); ok {
		for _, r := range rows {
			if row, ok := r.(string); ok {
				req.Layout = append(req.Layout, row)
			}
		}
	}

	var result service.SolveResult
	if err := c.apiCall(ctx, "POST", "/api/solve", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.State != nil {
		result += "\n" + formatBoard(session.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		placements := 0
		if s.State != nil {
			placements = s.State.Placements
		}
		result += fmt.Sprintf("- %s (Config: %s, Placements: %d, Created: %s)\n",
			s.ID, s.ConfigName, placements, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGetBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.FieldState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/board", url.PathEscape(sessionID)), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&state)), nil
}

func (c *Client) handleSetCells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cellsRaw, _ := args["cells"].([]interface{})

	edits := make([]engine.CellEdit, 0, len(cellsRaw))
	for _, raw := range cellsRaw {
		cell, ok := raw.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("each cell must be an object with x, y and value"), nil
		}
		x, okX := intArg(cell, "x")
		y, okY := intArg(cell, "y")
		value, okV := intArg(cell, "value")
		if !okX || !okY || !okV {
			return mcp.NewToolResultError("each cell needs integer x, y and value"), nil
		}
		edits = append(edits, engine.CellEdit{X: x, Y: y, Value: value})
	}

	body := map[string]interface{}{"cells": edits}

	var state engine.FieldState
	if err := c.apiCall(ctx, "PUT", fmt.Sprintf("/api/sessions/%s/cells", url.PathEscape(sessionID)), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Updated %d cells\n\n%s", len(edits), formatBoard(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPlacements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	typeName, _ := args["type"].(string)
	reachable, _ := args["reachable"].(bool)

	params := url.Values{}
	params.Set("type", typeName)
	if reachable {
		params.Set("reachable", "true")
	}

	var list service.PlacementList
	path := fmt.Sprintf("/api/sessions/%s/placements?%s", url.PathEscape(sessionID), params.Encode())
	if err := c.apiCall(ctx, "GET", path, nil, &list); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlacementList(&list)), nil
}

func (c *Client) handlePlacePiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	goal, err := placementArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.PlaceResult
	body := service.PlaceRequest{Goal: goal}
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/place", url.PathEscape(sessionID)), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlaceResult(&result)), nil
}

func (c *Client) handlePlacementHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}

	path := fmt.Sprintf("/api/sessions/%s/history", url.PathEscape(sessionID))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		clearing := "on"
		if !config.ClearLines {
			clearing = "off"
		}
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Board: %d rows x %d cols, line clears %s\n\n",
			config.Name, config.ConfigID, config.Description, config.Rows, config.Cols, clearing)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolverInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Finesse Solver - Instructions

COORDINATES:
• x is the column, counted from 0 on the left
• y is the row, counted from 0 at the top; rows grow downwards
• A placement is (type, x, y, rotation); (x, y) is the anchor of the piece's
  4x4 bounding box, not necessarily a filled cell

ROTATIONS:
• 0 = spawn orientation
• 1 = rotated clockwise once
• 2 = upside down
• 3 = rotated counter-clockwise once
• Rotations use SRS wall kicks, so a rotation may also shift the piece

MOVES:
• shift_left / shift_right: one column sideways
• soft_drop: fall until the piece rests on the stack or floor
• rotate_cw / rotate_ccw / rotate_180: rotate with kicks
• hard_drop: lock the piece where it is (always last)

BOARD NOTATION:
• '.' is an empty cell
• I J L O S T Z are cells filled by that piece
• Cell values in set_cells: 0=I 1=J 2=L 3=O 4=S 5=T 6=Z, -1 clears

WORKFLOW:
1. create_session with a preset (list_configs shows them)
2. list_placements with reachable=true to see where a piece can lock
3. place_piece with one of those placements
4. get_board to see the result; full lines are cleared when the preset allows it

TIPS:
• A goal that is not resting on the stack cannot be locked
• A placement surrounded by overhangs may need a rotation kick to reach
• solve never changes a board; use it to preview an input sequence`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n",
		session.ID, session.ConfigName, session.CreatedAt.Format(time.RFC3339))
	if session.State != nil {
		result += "\n" + formatBoard(session.State)
	}
	return result
}

// formatBoard renders the board with column numbers on top and row numbers on the left
func formatBoard(state *engine.FieldState) string {
	if state == nil || state.Board == nil {
		return "Board: unavailable\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Placements: %d  Lines cleared: %d\n\n", state.Placements, state.LinesCleared)

	b.WriteString("    ")
	for x := 0; x < state.Board.Cols; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")

	for y, row := range state.Board.Layout() {
		fmt.Fprintf(&b, "%3d %s\n", y, row)
	}

	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	return b.String()
}

func formatPlacement(p engine.Placement) string {
	return fmt.Sprintf("%s at (%d,%d) rotation %d", p.Type, p.X, p.Y, p.Rotation)
}

func formatMoves(moves []engine.Move) string {
	if len(moves) == 0 {
		return "(none)"
	}
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Start: %s\nGoal:  %s\n\n", formatPlacement(result.Start), formatPlacement(result.Goal))

	if !result.Found {
		fmt.Fprintf(&b, "No input sequence reaches the goal (explored %d placements).\n", result.Expanded)
		return b.String()
	}

	fmt.Fprintf(&b, "Inputs (%d): %s\n", len(result.Moves), formatMoves(result.Moves))
	fmt.Fprintf(&b, "Explored %d placements in %.2fms\n", result.Expanded, result.ElapsedMS)
	return b.String()
}

func formatPlaceResult(result *service.PlaceResult) string {
	var b strings.Builder
	if rec := result.Record; rec != nil {
		fmt.Fprintf(&b, "Placement #%d: %s\n", rec.Number, formatPlacement(rec.Goal))
		fmt.Fprintf(&b, "Inputs (%d): %s\n", len(rec.Moves), formatMoves(rec.Moves))
		if len(rec.ClearedRows) > 0 {
			fmt.Fprintf(&b, "Cleared rows: %v\n", rec.ClearedRows)
		}
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(result.State))
	return b.String()
}

func formatPlacementList(list *service.PlacementList) string {
	kind := "Lockable"
	if list.Reachable {
		kind = "Reachable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s placements for %s (%d):\n\n", kind, list.Type, list.Count)
	for _, p := range list.Placements {
		cells := make([]string, len(p.Blocks))
		for i, block := range p.Blocks {
			cells[i] = fmt.Sprintf("(%d,%d)", block.X, block.Y)
		}
		fmt.Fprintf(&b, "- x=%d y=%d rotation=%d cells %s\n", p.X, p.Y, p.Rotation, strings.Join(cells, " "))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Placement History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalPlacements)

	for _, rec := range history.Placements {
		cleared := ""
		if len(rec.ClearedRows) > 0 {
			cleared = fmt.Sprintf(" [cleared %d]", len(rec.ClearedRows))
		}
		result += fmt.Sprintf("%d. %s: %s%s\n", rec.Number, formatPlacement(rec.Goal), formatMoves(rec.Moves), cleared)
	}

	return result
}
