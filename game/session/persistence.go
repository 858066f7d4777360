package session

import (
	"time"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

// SessionPersistence stores sessions outside the process
type SessionPersistence interface {
	Save(session *service.Session) error
	Load(id string) (*service.Session, error)
	Delete(id string) error
	ListAll() ([]string, error)
	Exists(id string) bool
}

// persistFormat is bumped when PersistedSessionData changes incompatibly
const persistFormat = 1

// PersistedSessionData is the on-disk form of a session. The preset is
// stored by id and reloaded; the board itself comes from FieldState, so
// edited boards survive a restart.
type PersistedSessionData struct {
	Format         int                `json:"format"`
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	FieldState     *engine.FieldState `json:"field_state"`
}
