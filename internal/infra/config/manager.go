package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/kanban/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// configHeader is written above the generated TOML.
const configHeader = `# kanban configuration
#
# [server]  addr, shutdown_timeout   HTTP listen address and graceful shutdown timeout
# [store]   backend, path            csv (default), json or sqlite; path relative to this directory
# [log]     level                    debug, info, warn, error

`

// Manager manages configuration files.
type Manager struct {
	dataDir       string // Path to the .kanban data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/kanban)
}

// NewManager creates a new Manager.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dataDir, globalConfDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// LocalConfigInfo returns information about the data directory config file.
func (m *Manager) LocalConfigInfo() domain.ConfigInfo {
	return getConfigInfo(domain.LocalConfigPath(m.dataDir))
}

// GlobalConfigInfo returns information about the global config file.
func (m *Manager) GlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitLocalConfig writes cfg to the data directory config file.
// Returns ErrConfigExists if the file already exists.
func (m *Manager) InitLocalConfig(cfg *domain.Config) (string, error) {
	path := domain.LocalConfigPath(m.dataDir)

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return path, domain.ErrConfigExists
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	content, err := Render(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.dataDir, 0o750); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// Render encodes cfg as commented TOML.
func Render(cfg *domain.Config) ([]byte, error) {
	body, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
