package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/finesse/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrBoardChanged    = errors.New("board changed during search")
)

// placeAttempts bounds how often PlacePiece searches again after the board
// was edited while its search ran.
const placeAttempts = 3

// Searcher runs placement searches off the request goroutine. *Pool is the
// production implementation.
type Searcher interface {
	Solve(ctx context.Context, b *engine.Board, start, goal engine.Placement) (engine.SearchResult, error)
}

// solverServiceImpl implements the SolverService interface. mu guards every
// session's Field; searches run on clones without holding it.
type solverServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	searcher Searcher
	mu       sync.RWMutex
}

// NewSolverService creates a new solver service. With a nil searcher searches
// run on the calling goroutine.
func NewSolverService(sessions SessionManager, configs ConfigManager, searcher Searcher) SolverService {
	return &solverServiceImpl{
		sessions: sessions,
		configs:  configs,
		searcher: searcher,
	}
}

// getConfigID returns the config_id for a given preset display name
func (s *solverServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// Solve finds the shortest input sequence on a request board
func (s *solverServiceImpl) Solve(ctx context.Context, req *SolveRequest) (*SolveResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty solve request", engine.ErrInvalidRequest)
	}
	start, err := engine.ResolveStart(req.Goal, req.Start)
	if err != nil {
		return nil, err
	}
	board, err := req.Build()
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, board, start, req.Goal)
}

// Replay applies a move list to a start placement on a request board
func (s *solverServiceImpl) Replay(ctx context.Context, req *ReplayRequest) (*ReplayResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty replay request", engine.ErrInvalidRequest)
	}
	if !req.Start.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown piece type %d", engine.ErrInvalidRequest, int(req.Start.Type))
	}
	for i, m := range req.Moves {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: move %d: unknown move %q", engine.ErrInvalidRequest, i+1, m)
		}
	}
	board, err := req.Build()
	if err != nil {
		return nil, err
	}

	trail, err := engine.Replay(board, req.Start, req.Moves)
	if err != nil {
		return nil, err
	}
	final := trail[len(trail)-1]
	return &ReplayResult{
		Trail:  trail,
		Final:  final,
		Locked: board.Resting(final),
	}, nil
}

// CreateSession creates a new playfield session
func (s *solverServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.BoardConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: config '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: config '%s'. Use /api/configs to list available presets", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.AccessedAt(),
		State:          session.Field.Snapshot(),
		Config:         session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *solverServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *solverServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *solverServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// GetBoard returns the current playfield state
func (s *solverServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.FieldState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Field.Snapshot(), nil
}

// SetCells applies a batch of cell edits
func (s *solverServiceImpl) SetCells(ctx context.Context, sessionID string, edits []engine.CellEdit) (*engine.FieldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Field.SetCells(edits); err != nil {
		return nil, err
	}

	s.persist(sessionID, "cell edit")
	return sess.Field.Snapshot(), nil
}

// ClearBoard empties every cell
func (s *solverServiceImpl) ClearBoard(ctx context.Context, sessionID string) (*engine.FieldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Field.Clear()

	s.persist(sessionID, "clear")
	return sess.Field.Snapshot(), nil
}

// Reset restores the preset layout
func (s *solverServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.FieldState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Field.Reset()

	s.persist(sessionID, "reset")
	return sess.Field.Snapshot(), nil
}

// SolveInSession searches the session's current board without changing it
func (s *solverServiceImpl) SolveInSession(ctx context.Context, sessionID string, req *PlaceRequest) (*SolveResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty solve request", engine.ErrInvalidRequest)
	}
	start, err := engine.ResolveStart(req.Goal, req.Start)
	if err != nil {
		return nil, err
	}

	board, _, err := s.boardSnapshot(sessionID)
	if err != nil {
		return nil, err
	}
	return s.solve(ctx, board, start, req.Goal)
}

// PlacePiece solves to the goal and locks the piece there. The search runs on
// a clone of the board; the lock is applied only if the board is unchanged by
// then, otherwise the search starts over on the new board.
func (s *solverServiceImpl) PlacePiece(ctx context.Context, sessionID string, req *PlaceRequest) (*PlaceResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty place request", engine.ErrInvalidRequest)
	}
	start, err := engine.ResolveStart(req.Goal, req.Start)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		board, version, err := s.boardSnapshot(sessionID)
		if err != nil {
			return nil, err
		}
		found, err := s.search(ctx, board, start, req.Goal)
		if err != nil {
			return nil, err
		}
		if !found.Found {
			return nil, fmt.Errorf("%w: %v cannot be reached from %v", engine.ErrNoSolution, req.Goal.Normalize(), start.Normalize())
		}

		result, err := s.lockIfUnchanged(sessionID, version, start, found.Moves)
		if !errors.Is(err, ErrBoardChanged) || attempt == placeAttempts {
			return result, err
		}
		log.Printf("Session %s changed during search for %v, retrying (%d/%d)", sessionID, req.Goal, attempt, placeAttempts)
	}
}

// lockIfUnchanged locks the piece when the field is still at version
func (s *solverServiceImpl) lockIfUnchanged(sessionID string, version uint64, start engine.Placement, moves []engine.Move) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Field.Version() != version {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrBoardChanged)
	}

	record, err := sess.Field.Lock(start, moves)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events := []BoardEvent{{
		Type:      "lock",
		Message:   fmt.Sprintf("Locked %v with %d inputs", record.Goal, len(record.Moves)),
		Timestamp: now,
	}}
	if len(record.ClearedRows) > 0 {
		events = append(events, BoardEvent{
			Type:      "line_clear",
			Message:   fmt.Sprintf("Cleared %d lines", len(record.ClearedRows)),
			Timestamp: now,
			Rows:      record.ClearedRows,
		})
	}

	s.persist(sessionID, "place")
	return &PlaceResult{
		Record: record,
		State:  sess.Field.Snapshot(),
		Events: events,
	}, nil
}

// ListPlacements lists lockable placements of one piece type
func (s *solverServiceImpl) ListPlacements(ctx context.Context, sessionID string, opts PlacementOptions) (*PlacementList, error) {
	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown piece type %d", engine.ErrInvalidRequest, int(opts.Type))
	}
	if opts.Start != nil && opts.Start.Type != opts.Type {
		return nil, fmt.Errorf("%w: start is %v, listing %v", engine.ErrInvalidRequest, opts.Start.Type, opts.Type)
	}

	board, _, err := s.boardSnapshot(sessionID)
	if err != nil {
		return nil, err
	}

	start := engine.SpawnPlacement(opts.Type)
	if opts.Start != nil {
		start = *opts.Start
	}
	var placements []engine.Placement
	if opts.Reachable {
		placements = engine.ReachablePlacements(board, start)
	} else {
		placements = engine.LockablePlacements(board, opts.Type)
	}

	list := &PlacementList{
		Type:       opts.Type,
		Reachable:  opts.Reachable,
		Count:      len(placements),
		Placements: make([]PlacementOption, 0, len(placements)),
	}
	for _, p := range placements {
		list.Placements = append(list.Placements, newPlacementOption(p))
	}
	if ghost, ok := engine.Ghost(start, board); ok {
		option := newPlacementOption(ghost)
		list.Ghost = &option
	}
	if opts.Near != nil {
		if p, _, ok := engine.NearestPlacement(placements, opts.Near.X, opts.Near.Y); ok {
			nearest := newPlacementOption(p)
			list.Nearest = &nearest
		}
	}
	return list, nil
}

// GetHistory returns paginated placement history
func (s *solverServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Field.GetHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > engine.MaxHistoryPageSize {
		opts.Limit = engine.MaxHistoryPageSize
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	placements := []engine.PlacementRecord{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				placements = append(placements, history[i])
			}
		} else {
			placements = append(placements, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Placements:      placements,
		TotalPlacements: total,
		Page:            opts.Page,
		PageSize:        opts.Limit,
		TotalPages:      totalPages,
		HasNext:         opts.Page < totalPages,
		HasPrevious:     opts.Page > 1,
	}, nil
}

// ListConfigs returns available board presets
func (s *solverServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board preset
func (s *solverServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board preset to disk
func (s *solverServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// search runs one search on the searcher, or inline without one. board must
// not be shared with anything that mutates it.
func (s *solverServiceImpl) search(ctx context.Context, board *engine.Board, start, goal engine.Placement) (engine.SearchResult, error) {
	if s.searcher == nil {
		return engine.Search(board, start, goal), nil
	}
	return s.searcher.Solve(ctx, board, start, goal)
}

// boardSnapshot clones a session's board and notes the field version
func (s *solverServiceImpl) boardSnapshot(sessionID string) (*engine.Board, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, 0, err
	}
	return sess.Field.GetBoard().Clone(), sess.Field.Version(), nil
}

// solve runs one search and describes it as a SolveResult
func (s *solverServiceImpl) solve(ctx context.Context, board *engine.Board, start, goal engine.Placement) (*SolveResult, error) {
	began := time.Now()

	found, err := s.search(ctx, board, start, goal)
	if err != nil {
		return nil, err
	}

	result := &SolveResult{
		Found:     found.Found,
		Moves:     found.Moves,
		Depth:     found.Depth,
		Expanded:  found.Expanded,
		Start:     start.Normalize(),
		Goal:      goal.Normalize(),
		ElapsedMS: float64(time.Since(began).Microseconds()) / 1000,
	}
	if found.Found {
		trail, err := engine.Replay(board, start, found.Moves)
		if err != nil {
			// A found path always replays; anything else is a solver bug
			return nil, fmt.Errorf("replay of solved path failed: %w", err)
		}
		result.Trail = trail
	}
	return result, nil
}

func (s *solverServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *solverServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.AccessedAt(),
		State:          sess.Field.Snapshot(),
		Config:         sess.Config,
	}
}

// persist saves a session after a change; failures are logged, not returned
func (s *solverServiceImpl) persist(sessionID, reason string) {
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", sessionID, reason, err)
	}
}
