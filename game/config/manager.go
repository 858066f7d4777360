package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/finesse/game/engine"
	"github.com/wricardo/finesse/game/service"
)

// DefaultConfigID is the preset used when a session names none
const DefaultConfigID = "empty"

const presetExt = ".json"

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Manager serves board presets from a directory of JSON files. Presets are
// parsed once and cached by id until reloaded.
type Manager struct {
	dir string

	mu        sync.RWMutex
	presets   map[string]*engine.BoardConfig
	fallback  *engine.BoardConfig
	defaultID string
}

func NewManager(configDir string) (*Manager, error) {
	info, err := os.Stat(configDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		dir:       configDir,
		presets:   make(map[string]*engine.BoardConfig),
		defaultID: DefaultConfigID,
	}
	m.pickDefault()
	return m, nil
}

// presetID strips an optional .json suffix. ok is false for names that
// would leave the config directory.
func presetID(name string) (id string, ok bool) {
	id = strings.TrimSuffix(name, presetExt)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", false
	}
	return id, true
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.dir, id+presetExt)
}

// LoadConfig returns the preset named name ("well" or "well.json").
func (m *Manager) LoadConfig(name string) (*engine.BoardConfig, error) {
	id, ok := presetID(name)
	if !ok {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	preset, cached := m.presets[id]
	m.mu.RUnlock()
	if cached {
		return preset, nil
	}

	preset, err := readPreset(m.path(id))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.presets[id]; ok {
		return existing, nil
	}
	m.presets[id] = preset
	return preset, nil
}

func readPreset(path string) (*engine.BoardConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var preset engine.BoardConfig
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(path), err)
	}
	if err := engine.ValidateBoardConfig(&preset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &preset, nil
}

// ListConfigs describes every valid preset in the directory, sorted by id.
// Files that fail to load are logged and left out.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != presetExt {
			continue
		}
		id, ok := presetID(entry.Name())
		if !ok {
			continue
		}

		preset, err := m.LoadConfig(id)
		if err != nil {
			log.Printf("Skipping preset %s: %v", entry.Name(), err)
			continue
		}
		infos = append(infos, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        preset.Name,
			Description: preset.Description,
			Rows:        preset.Rows,
			Cols:        preset.Cols,
			ClearLines:  preset.ClearLines,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ConfigID < infos[j].ConfigID })
	return infos, nil
}

func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fallback
}

// SetDefault makes the named preset the default for new sessions. The choice
// survives RefreshCache.
func (m *Manager) SetDefault(name string) error {
	id, ok := presetID(name)
	if !ok {
		return ErrConfigNotFound
	}
	preset, err := m.LoadConfig(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.fallback = preset
	m.defaultID = id
	m.mu.Unlock()
	return nil
}

// RefreshCache forgets every cached preset so edited files are read again,
// then picks the default again.
func (m *Manager) RefreshCache() error {
	if info, err := os.Stat(m.dir); err != nil || !info.IsDir() {
		return fmt.Errorf("config directory does not exist: %s", m.dir)
	}

	m.mu.Lock()
	m.presets = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()

	m.pickDefault()
	return nil
}

// pickDefault prefers the chosen default id, then the first valid preset,
// then the built-in empty board.
func (m *Manager) pickDefault() {
	m.mu.RLock()
	id := m.defaultID
	m.mu.RUnlock()

	preset, err := m.LoadConfig(id)
	if err != nil {
		if infos, listErr := m.ListConfigs(); listErr == nil && len(infos) > 0 {
			preset, err = m.LoadConfig(infos[0].ConfigID)
		}
	}
	if err != nil {
		preset = engine.DefaultBoardConfig()
	}

	m.mu.Lock()
	m.fallback = preset
	m.mu.Unlock()
}

// SaveConfig validates a preset and writes it as <name>.json, replacing the
// cached copy.
func (m *Manager) SaveConfig(name string, preset *engine.BoardConfig) error {
	if err := engine.ValidateBoardConfig(preset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	id, ok := presetID(name)
	if !ok {
		return fmt.Errorf("%w: bad preset name %q", ErrInvalidConfig, name)
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(m.path(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.presets[id] = preset
	m.mu.Unlock()
	return nil
}
