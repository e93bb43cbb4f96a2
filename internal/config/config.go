// Package config manages the persisted runtime settings of the daemon.
// Settings live in a small JSON file and are sanitized on every load and
// save, so an out-of-range value on disk can never reach the store.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	// DefaultMaxHistoryItems is used when no config file exists.
	DefaultMaxHistoryItems = 100

	minHistoryItems = 1
	maxHistoryItems = 5000
)

// Settings are the user-adjustable runtime parameters.
type Settings struct {
	MaxHistoryItems int64 `json:"max_history_items"`
}

// Default returns the settings used in the absence of a config file.
func Default() Settings {
	return Settings{MaxHistoryItems: DefaultMaxHistoryItems}
}

// sanitized clamps all fields into their valid ranges.
func (s Settings) sanitized() Settings {
	if s.MaxHistoryItems < minHistoryItems {
		s.MaxHistoryItems = minHistoryItems
	}
	if s.MaxHistoryItems > maxHistoryItems {
		s.MaxHistoryItems = maxHistoryItems
	}
	return s
}

// Manager holds the current settings and persists changes to a JSON file.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	path     string
	settings Settings
}

// Load reads settings from path, falling back to defaults when the file does
// not exist. A file that exists but cannot be parsed is an error; silently
// replacing it would discard the user's configuration.
func Load(path string) (*Manager, error) {
	m := &Manager{path: path, settings: Default()}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	m.settings = loaded.sanitized()
	return m, nil
}

// Current returns a copy of the active settings.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// Update sanitizes s, makes it the active settings and persists it.
// The sanitized value that took effect is returned.
func (m *Manager) Update(s Settings) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = s.sanitized()
	if err := m.saveLocked(); err != nil {
		return m.settings, err
	}
	return m.settings, nil
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(m.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
