package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	Server   ServerConfig `toml:"server"`
	Store    StoreConfig  `toml:"store"`
	Log      LogConfig    `toml:"log"`
}

// ServerConfig holds HTTP settings from [server] section.
type ServerConfig struct {
	Addr            string `toml:"addr,omitempty"`             // Listen address, e.g. ":8080"
	ShutdownTimeout string `toml:"shutdown_timeout,omitempty"` // Graceful shutdown timeout, e.g. "10s"
}

// ShutdownTimeoutDuration parses ShutdownTimeout, falling back to the default.
func (c ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return DefaultShutdownTimeout
	}
	return d
}

// StoreConfig holds persistence settings from [store] section.
type StoreConfig struct {
	Backend string `toml:"backend,omitempty"` // "csv" (default), "json" or "sqlite"
	Path    string `toml:"path,omitempty"`    // Store file path (empty = default file in data dir)
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// ConfigInfo describes a config file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// Store backends.
const (
	StoreCSV    = "csv"
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// AllStoreBackends returns all supported store backends.
func AllStoreBackends() []string {
	return []string{StoreCSV, StoreJSON, StoreSQLite}
}

// ParseStoreBackend validates a backend name.
// An empty name selects the default CSV backend.
func ParseStoreBackend(s string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(s))
	switch backend {
	case "":
		return StoreCSV, nil
	case StoreCSV, StoreJSON, StoreSQLite:
		return backend, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStore, s)
	}
}

// Default configuration values.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout.String(),
		},
		Store: StoreConfig{
			Backend: StoreCSV,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Directory and file names for kanban.
const (
	DataDirName    = ".kanban"     // Default data directory (relative to the working directory)
	AppDirName     = "kanban"      // Directory name under the user config home
	ConfigFileName = "config.toml" // Config file name
	LogFileName    = "kanban.log"  // Log file name
)

// StoreFileName returns the default store file name for a backend.
func StoreFileName(backend string) string {
	switch backend {
	case StoreJSON:
		return "tasks.json"
	case StoreSQLite:
		return "tasks.db"
	default:
		return "tasks.csv"
	}
}

// StorePath resolves the store file for a backend.
// A configured path is used as-is when absolute and relative to dataDir otherwise.
func StorePath(dataDir string, cfg StoreConfig, backend string) string {
	if cfg.Path == "" {
		return filepath.Join(dataDir, StoreFileName(backend))
	}
	if filepath.IsAbs(cfg.Path) {
		return cfg.Path
	}
	return filepath.Join(dataDir, cfg.Path)
}

// LocalConfigPath returns the config path inside the data directory.
func LocalConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// LogPath returns the log file path inside the data directory.
func LogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", LogFileName)
}

// GlobalConfigDir returns the global kanban directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}
