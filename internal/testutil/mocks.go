// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"fmt"
	"sync"

	"github.com/runoshun/kanban/internal/domain"
)

// MockStateStore is an in-memory test double for domain.StateStore.
// Fields are ordered to minimize memory padding.
type MockStateStore struct {
	Snapshot  *domain.Snapshot
	LoadErr   error
	SaveErr   error
	SaveCalls int
	mu        sync.Mutex
}

// NewMockStateStore creates an uninitialized MockStateStore.
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{}
}

// Ensure MockStateStore implements domain.StateStore interface.
var _ domain.StateStore = (*MockStateStore)(nil)

// Load returns a copy of the last saved snapshot.
// Returns ErrNotInitialized if nothing was saved yet.
func (m *MockStateStore) Load() (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Snapshot == nil {
		return nil, domain.ErrNotInitialized
	}
	return CloneSnapshot(m.Snapshot), nil
}

// Save records a copy of the snapshot.
func (m *MockStateStore) Save(snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Snapshot = CloneSnapshot(snap)
	return nil
}

// Saved returns the last saved snapshot, or nil.
func (m *MockStateStore) Saved() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshot
}

// Initialize marks the store as created.
func (m *MockStateStore) Initialize() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Snapshot != nil {
		return false, nil
	}
	m.Snapshot = &domain.Snapshot{}
	return true, nil
}

// IsInitialized reports whether a snapshot exists.
func (m *MockStateStore) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshot != nil
}

// CloneSnapshot deep-copies a snapshot.
func CloneSnapshot(s *domain.Snapshot) *domain.Snapshot {
	c := &domain.Snapshot{LastID: s.LastID}
	for _, t := range s.Tasks {
		c.Tasks = append(c.Tasks, t.Clone())
	}
	for _, e := range s.Epics {
		c.Epics = append(c.Epics, e.Clone())
	}
	for _, st := range s.Subtasks {
		c.Subtasks = append(c.Subtasks, st.Clone())
	}
	return c
}

// LogEntry is a single entry captured by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	ItemID   int
}

// String formats the entry for assertion messages.
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] [%d] [%s] %s", e.Level, e.ItemID, e.Category, e.Msg)
}

// MockLogger records log entries for assertions.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level string, itemID int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, ItemID: itemID, Category: category, Msg: msg})
}

// Debug records a debug entry.
func (m *MockLogger) Debug(itemID int, category, msg string) { m.add("DEBUG", itemID, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(itemID int, category, msg string) { m.add("INFO", itemID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(itemID int, category, msg string) { m.add("WARN", itemID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(itemID int, category, msg string) { m.add("ERROR", itemID, category, msg) }

// ByLevel returns the entries with the given level.
func (m *MockLogger) ByLevel(level string) []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []LogEntry
	for _, e := range m.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the configured config or error.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitErr    error
	Written    *domain.Config
	Local      domain.ConfigInfo
	Global     domain.ConfigInfo
	InitCalled bool
}

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		Local:  domain.ConfigInfo{Path: "/test/.kanban/config.toml"},
		Global: domain.ConfigInfo{Path: "/home/test/.config/kanban/config.toml"},
	}
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// LocalConfigInfo returns the configured local config info.
func (m *MockConfigManager) LocalConfigInfo() domain.ConfigInfo {
	return m.Local
}

// GlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GlobalConfigInfo() domain.ConfigInfo {
	return m.Global
}

// InitLocalConfig records the call and returns the configured error.
func (m *MockConfigManager) InitLocalConfig(cfg *domain.Config) (string, error) {
	m.InitCalled = true
	if m.InitErr != nil {
		return "", m.InitErr
	}
	m.Written = cfg
	m.Local.Exists = true
	return m.Local.Path, nil
}
