package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

const sessionExt = ".json"

// FilePersistence stores each session as <dir>/<id>.json
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// Save writes the session to a temporary file and renames it into place, so
// a crash never leaves a half-written session behind.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil || session.Field == nil || session.Config == nil {
		return fmt.Errorf("session is incomplete")
	}
	path, err := fp.path(session.ID)
	if err != nil {
		return err
	}

	data := PersistedSessionData{
		Format:         persistFormat,
		ID:             session.ID,
		ConfigName:     fp.configID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.AccessedAt(),
		FieldState:     session.Field.GetState(),
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	tmp, err := os.CreateTemp(fp.sessionsDir, ".tmp-"+session.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Load rebuilds a session from its file: the preset is loaded by id and the
// saved field state is applied on top of it.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	path, err := fp.path(id)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.Format > persistFormat {
		return nil, fmt.Errorf("session %s has format %d, newest known is %d", id, data.Format, persistFormat)
	}
	if data.FieldState == nil {
		return nil, fmt.Errorf("session %s has no field state", id)
	}

	preset, err := fp.configManager.LoadConfig(data.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}
	field, err := engine.NewField(preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}
	if err := field.SetState(data.FieldState); err != nil {
		return nil, fmt.Errorf("failed to restore field state: %w", err)
	}

	if data.ID == "" {
		data.ID = id
	}
	return &service.Session{
		ID:             data.ID,
		Field:          field,
		Config:         preset,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func (fp *FilePersistence) Delete(id string) error {
	path, err := fp.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the persisted session ids in sorted order. Temporary files
// and names that are not valid ids are skipped.
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionExt) {
			continue
		}
		if id := strings.TrimSuffix(name, sessionExt); ValidID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (fp *FilePersistence) Exists(id string) bool {
	path, err := fp.path(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (fp *FilePersistence) path(id string) (string, error) {
	if !ValidID(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return filepath.Join(fp.sessionsDir, id+sessionExt), nil
}

// configID maps a preset display name back to its file id. Names that match
// no preset are stored as they are.
func (fp *FilePersistence) configID(name string) string {
	configs, err := fp.configManager.ListConfigs()
	if err != nil {
		return name
	}
	for _, c := range configs {
		if c.Name == name {
			return c.ConfigID
		}
	}
	return name
}
