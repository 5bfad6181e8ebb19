package domain

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	// Returns true if the store was created, false if it already existed.
	Initialize() (bool, error)

	// IsInitialized reports whether the store exists.
	IsInitialized() bool
}

// StateStore persists the full manager state.
type StateStore interface {
	// Load reads the stored snapshot.
	// Returns ErrNotInitialized if the store does not exist.
	Load() (*Snapshot, error)

	// Save replaces the stored state with the snapshot.
	Save(snapshot *Snapshot) error
}

// ItemWriter creates work items and returns their assigned IDs.
type ItemWriter interface {
	AddTask(task Task) (int, error)
	AddEpic(epic Task) (int, error)
	AddSubtask(subtask Task) (int, error)
}

// Logger writes item-scoped log entries.
// itemID 0 means the entry is not tied to an item.
type Logger interface {
	Debug(itemID int, category, msg string)
	Info(itemID int, category, msg string)
	Warn(itemID int, category, msg string)
	Error(itemID int, category, msg string)
}

// NopLogger discards all entries.
type NopLogger struct{}

func (NopLogger) Debug(int, string, string) {}
func (NopLogger) Info(int, string, string)  {}
func (NopLogger) Warn(int, string, string)  {}
func (NopLogger) Error(int, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (defaults <- global <- local).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager inspects and writes configuration files.
type ConfigManager interface {
	// LocalConfigInfo describes the config file in the data directory.
	LocalConfigInfo() ConfigInfo

	// GlobalConfigInfo describes the user-wide config file.
	GlobalConfigInfo() ConfigInfo

	// InitLocalConfig writes a default config file into the data directory.
	// Returns ErrConfigExists if the file already exists.
	InitLocalConfig(cfg *Config) (string, error)
}
