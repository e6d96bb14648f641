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

	"gopkg.in/yaml.v3"

	"github.com/wricardo/gridball/game/engine"
	"github.com/wricardo/gridball/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = engine.ErrInvalidConfig
)

// levelExtensions are probed in order when a level is requested by name
var levelExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new level manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure level directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.defaultConfig = m.pickDefault()
	return m, nil
}

// levelID strips a known extension from a level name
func levelID(name string) string {
	if _, ok := engine.FormatForPath(name); ok {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// findFile returns the on-disk path of a level
func (m *Manager) findFile(name string) (string, error) {
	if _, ok := engine.FormatForPath(name); ok {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("level %s: %w", name, ErrConfigNotFound)
			}
			return "", err
		}
		return path, nil
	}

	for _, ext := range levelExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("level %s: %w", name, ErrConfigNotFound)
}

// LoadConfig loads a level by name, with or without its extension
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := levelID(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(name)
	if err != nil {
		return nil, err
	}

	config, err := engine.LoadGameConfig(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("level %s: %w", name, ErrConfigNotFound)
		}
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all valid levels, sorted by id
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := engine.FormatForPath(entry.Name()); !ok {
			continue
		}

		id := levelID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			log.Printf("[CONFIG] skipping %s: %v", entry.Name(), err)
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Columns:     config.Columns,
			Rows:        config.Rows,
			Actors:      len(config.Actors),
			EnemyPolicy: config.EnemyPolicy,
		})
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached levels and picks the default again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.pickDefault()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// pickDefault prefers classic, then the first valid level, then the built-in board.
// It must be called without m.mu held.
func (m *Manager) pickDefault() *engine.GameConfig {
	if config, err := m.LoadConfig("classic"); err == nil {
		return config
	}

	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].Filename); err == nil {
			return config
		}
	}

	log.Printf("[CONFIG] no valid level in %s, using built-in board", m.configDir)
	return engine.DefaultGameConfig()
}

// SaveConfig validates a level and writes it to disk. Names ending in .yaml
// or .yml are written as YAML, everything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: invalid level name %q", ErrInvalidConfig, name)
	}

	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}

	format, ok := engine.FormatForPath(name)
	filename := name
	if !ok {
		format = "json"
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[levelID(name)] = config
	m.mu.Unlock()

	log.Printf("[CONFIG] saved %s", configPath)
	return nil
}
