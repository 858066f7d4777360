package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/finesse/game/engine"
)

// SolverService defines all solver and playfield operations
type SolverService interface {
	// Stateless solving
	Solve(ctx context.Context, req *SolveRequest) (*SolveResult, error)
	Replay(ctx context.Context, req *ReplayRequest) (*ReplayResult, error)

	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Board editing
	GetBoard(ctx context.Context, sessionID string) (*engine.FieldState, error)
	SetCells(ctx context.Context, sessionID string, edits []engine.CellEdit) (*engine.FieldState, error)
	ClearBoard(ctx context.Context, sessionID string) (*engine.FieldState, error)
	Reset(ctx context.Context, sessionID string) (*engine.FieldState, error)

	// Placement
	SolveInSession(ctx context.Context, sessionID string, req *PlaceRequest) (*SolveResult, error)
	PlacePiece(ctx context.Context, sessionID string, req *PlaceRequest) (*PlaceResult, error)
	ListPlacements(ctx context.Context, sessionID string, opts PlacementOptions) (*PlacementList, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.BoardConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.BoardConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.BoardConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.BoardConfig
	SaveConfig(name string, config *engine.BoardConfig) error
}

// Session is one playfield with its preset. The service serialises access
// to Field; the access time has its own lock because lookups update it.
type Session struct {
	ID             string
	Field          *engine.Field
	Config         *engine.BoardConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	accessMu sync.Mutex
}

// Touch records an access at the current time
func (s *Session) Touch() {
	s.accessMu.Lock()
	s.LastAccessedAt = time.Now()
	s.accessMu.Unlock()
}

// AccessedAt returns the time of the last access
func (s *Session) AccessedAt() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.LastAccessedAt
}
