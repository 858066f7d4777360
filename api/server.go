package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
	"github.com/wricardo/finesse/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SolverService
	hub     *websocket.Hub
	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server. hub may be nil.
func NewServer(solverService service.SolverService, hub *websocket.Hub) *Server {
	s := &Server{
		service: solverService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	s.handler = chi.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	).Handler(s.router)
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Stateless solving
	api.HandleFunc("/solve", s.handleSolve).Methods("POST")
	api.HandleFunc("/replay", s.handleReplay).Methods("POST")

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Must be registered before the {id} pattern
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Board editing
	api.HandleFunc("/sessions/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/sessions/{id}/cells", s.handleSetCells).Methods("PUT")
	api.HandleFunc("/sessions/{id}/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Placement
	api.HandleFunc("/sessions/{id}/solve", s.handleSessionSolve).Methods("POST")
	api.HandleFunc("/sessions/{id}/place", s.handlePlace).Methods("POST")
	api.HandleFunc("/sessions/{id}/placements", s.handlePlacements).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table so callers can mount extra handlers (MCP)
func (s *Server) Router() *mux.Router {
	return s.router
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoSolution), errors.Is(err, engine.ErrIllegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrBoardChanged):
		return http.StatusConflict
	case errors.Is(err, service.ErrPoolClosed),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

// decodeBody decodes a JSON request body, rejecting unknown fields
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", engine.ErrInvalidRequest, err)
	}
	return nil
}

// broadcast pushes the current board to websocket viewers
func (s *Server) broadcast(sessionID string, state *engine.FieldState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// Solve Handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req service.SolveRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Solve(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SOLVE] goal=%v found=%t depth=%d expanded=%d elapsed=%.2fms",
		result.Goal, result.Found, result.Depth, result.Expanded, result.ElapsedMS)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req service.ReplayRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.Replay(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	// An empty body means the default preset
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.Forget(sessionID)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Board Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetCells(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Cells []engine.CellEdit `json:"cells"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	state, err := s.service.SetCells(r.Context(), sessionID, req.Cells)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ClearBoard(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcast(sessionID, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Board reset to preset",
		"state":   state,
	})
}

// Placement Handlers

func (s *Server) handleSessionSolve(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.PlaceRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.SolveInSession(r.Context(), sessionID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SOLVE] session=%s goal=%v found=%t depth=%d expanded=%d",
		sessionID, result.Goal, result.Found, result.Depth, result.Expanded)

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.EventSolve, result)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.PlaceRequest
	if err := decodeBody(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	result, err := s.service.PlacePiece(r.Context(), sessionID, &req)
	if err != nil {
		log.Printf("[PLACE] session=%s goal=%v FAIL: %v", sessionID, req.Goal, err)
		respondServiceError(w, err)
		return
	}

	rec := result.Record
	log.Printf("[PLACE] session=%s #%d %v inputs=%d cleared=%d total_lines=%d",
		sessionID, rec.Number, rec.Goal, len(rec.Moves), len(rec.ClearedRows), result.State.LinesCleared)

	s.broadcast(sessionID, result.State)
	if s.hub != nil {
		for _, event := range result.Events {
			s.hub.BroadcastEvent(sessionID, event.Type, event)
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlacements(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	query := r.URL.Query()

	pieceType, err := engine.ParsePieceType(query.Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := service.PlacementOptions{
		Type:      pieceType,
		Reachable: query.Get("reachable") == "true",
	}

	// Pointer picking: both coordinates or neither
	xStr, yStr := query.Get("x"), query.Get("y")
	if xStr != "" || yStr != "" {
		x, errX := strconv.ParseFloat(xStr, 64)
		y, errY := strconv.ParseFloat(yStr, 64)
		if errX != nil || errY != nil {
			respondError(w, http.StatusBadRequest, "x and y must both be numbers")
			return
		}
		opts.Near = &engine.Point{X: x, Y: y}
	}

	list, err := s.service.ListPlacements(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var boardConfig engine.BoardConfig
	if err := decodeBody(r, &boardConfig); err != nil {
		respondServiceError(w, err)
		return
	}

	if boardConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), boardConfig.Name, &boardConfig); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": boardConfig.Name,
	})
}

// handleUnifiedSessions returns several boards at once for side-by-side
// viewers. ?sessionIds=a,b picks sessions, ?configName=x filters by preset.
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		for _, id := range strings.Split(sessionIDs, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if session, err := s.service.GetSession(r.Context(), id); err == nil {
				sessions = append(sessions, session)
			}
		}
	} else {
		all, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		configName := query.Get("configName")
		for _, session := range all {
			if configName == "" || session.ConfigName == configName {
				sessions = append(sessions, session)
			}
		}
	}

	entries := make([]map[string]interface{}, 0, len(sessions))
	totalLines := 0
	for _, session := range sessions {
		entry := map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"state":         session.State,
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		}
		if session.State != nil {
			totalLines += session.State.LinesCleared
		}
		entries = append(entries, entry)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":               len(entries),
		"total_lines_cleared": totalLines,
		"sessions":            entries,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusNotFound)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
