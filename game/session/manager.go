package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const (
	maxIDLength = 64
	// Generated ids are 4 hex characters; after this many collisions the
	// manager switches to 8.
	shortIDAttempts = 32
)

// ValidID reports whether id can name a session. Ids double as file names,
// so only letters, digits, '-' and '_' are allowed.
func ValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// key folds an id for lookups, which ignore case
func key(id string) string {
	return strings.ToLower(id)
}

// Manager keeps playfield sessions in memory, optionally backed by a
// SessionPersistence. Sessions missing from memory are restored on Get.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence
}

func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a manager that writes every created or
// touched session through to persistence.
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

// Create starts a session on a fresh field for config. An empty id gets a
// generated one.
func (m *Manager) Create(id string, config *engine.BoardConfig) (*service.Session, error) {
	if id != "" && !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	field, err := engine.NewField(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}

	m.mu.Lock()
	if id == "" {
		id = m.newID()
	} else if _, exists := m.sessions[key(id)]; exists {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Field:          field,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = session
	m.mu.Unlock()

	m.persist(session, "create")
	return session, nil
}

// Get returns the session with id, restoring it from persistence when it is
// not in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if ok {
		return session, nil
	}

	if m.persistence == nil || !ValidID(id) || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	restored, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have restored it meanwhile
	if existing, ok := m.sessions[key(id)]; ok {
		return existing, nil
	}
	m.sessions[key(id)] = restored
	return restored, nil
}

// List returns the sessions in memory, most recently used first.
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].AccessedAt(), result[j].AccessedAt()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Delete removes a session from memory and from persistence.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))
	m.mu.Unlock()

	if m.persistence != nil && ValidID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session but leaves its persisted copy alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	session.Touch()
	m.persist(session, "access")
	return nil
}

// Save writes one session through to persistence. Without persistence it is
// a no-op.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many were removed. Persisted copies are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, session := range m.sessions {
		if session.AccessedAt().Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}
	return removed
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions restores every persisted session that is not already
// in memory. Unreadable files are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}
		session, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", id, err)
			continue
		}
		m.sessions[key(id)] = session
		loaded++
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loaded)
	}
	return nil
}

// SaveAllSessions writes every in-memory session, joining the failures.
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	var errs []error
	for _, session := range m.List() {
		if err := m.persistence.Save(session); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", session.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) persist(session *service.Session, reason string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		log.Printf("Warning: Failed to persist session %s after %s: %v", session.ID, reason, err)
	}
}

// newID returns an unused id. Callers hold m.mu.
func (m *Manager) newID() string {
	for i := 0; ; i++ {
		n := 2
		if i >= shortIDAttempts {
			n = 4
		}
		id := randomHex(n)
		if _, taken := m.sessions[key(id)]; !taken {
			return id
		}
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
