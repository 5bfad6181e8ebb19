// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/history"
	"github.com/runoshun/kanban/internal/httpapi"
	"github.com/runoshun/kanban/internal/infra/config"
	"github.com/runoshun/kanban/internal/infra/csvstore"
	"github.com/runoshun/kanban/internal/infra/jsonstore"
	"github.com/runoshun/kanban/internal/infra/logging"
	"github.com/runoshun/kanban/internal/infra/sqlitestore"
	"github.com/runoshun/kanban/internal/manager"
	"github.com/runoshun/kanban/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	DataDir   string // Path to the .kanban directory
	StorePath string // Path to the configured store file
	LogPath   string // Path to kanban.log
}

// Store is a persistence backend with its initializer.
type Store interface {
	domain.StateStore
	domain.StoreInitializer
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// Fields are ordered to minimize memory padding.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         Store
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager
	ItemLogger    domain.Logger

	// Pointer fields
	Logger    *slog.Logger
	AppConfig *domain.Config
	manager   *manager.FileBacked
	closer    io.Closer

	// Configuration
	Config Config

	mu sync.Mutex
}

// New creates a new Container for the given data directory.
// Configuration is loaded from the global config and <dataDir>/config.toml.
func New(dataDir string) (*Container, error) {
	dataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	configLoader := config.NewLoader(dataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := Config{
		DataDir:   dataDir,
		StorePath: domain.StorePath(dataDir, appConfig.Store, appConfig.Store.Backend),
		LogPath:   domain.LogPath(dataDir),
	}

	store, err := OpenStore(appConfig.Store.Backend, cfg.StorePath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(appConfig.Log.Level)

	// Item events go to the log file only once the data directory exists
	logDir := ""
	if _, err := os.Stat(dataDir); err == nil {
		logDir = dataDir
	}
	itemLogger := logging.New(logDir, level)

	return &Container{
		Store:         store,
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(dataDir),
		ItemLogger:    itemLogger,
		Logger:        logging.NewProcessLogger(os.Stderr, level),
		AppConfig:     appConfig,
		closer:        itemLogger,
		Config:        cfg,
	}, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store Store, configLoader domain.ConfigLoader, configManager domain.ConfigManager, logger *slog.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Container{
		Store:         store,
		ConfigLoader:  configLoader,
		ConfigManager: configManager,
		ItemLogger:    domain.NopLogger{},
		Logger:        logger,
		AppConfig:     appConfig,
		Config:        cfg,
	}
}

// OpenStore returns the persistence backend for the given name.
func OpenStore(backend, path string) (Store, error) {
	backend, err := domain.ParseStoreBackend(backend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case domain.StoreJSON:
		return jsonstore.New(path), nil
	case domain.StoreSQLite:
		return sqlitestore.New(path), nil
	default:
		return csvstore.New(path), nil
	}
}

// Manager returns the file-backed task manager, loading it from the store on first use.
// The store must be initialized.
func (c *Container) Manager() (*manager.FileBacked, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.manager != nil {
		return c.manager, nil
	}
	if !c.Store.IsInitialized() {
		return nil, domain.ErrNotInitialized
	}
	m, err := manager.LoadFileBacked(c.Store, c.ItemLogger, manager.WithHistory(history.New()))
	if err != nil {
		return nil, err
	}
	c.manager = m
	return m, nil
}

// Close releases the log file.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// UseCase factory methods

// InitBoardUseCase returns a new InitBoard use case.
func (c *Container) InitBoardUseCase() *usecase.InitBoard {
	return usecase.NewInitBoard(c.Store, c.ConfigManager)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.DataDir)
}

// ImportBoardUseCase returns a new ImportBoard use case bound to the task manager.
func (c *Container) ImportBoardUseCase() (*usecase.ImportBoard, error) {
	m, err := c.Manager()
	if err != nil {
		return nil, err
	}
	return usecase.NewImportBoard(m, c.ItemLogger), nil
}

// MigrateStoreUseCase returns a new MigrateStore use case between two backends.
// The configured store path is used for the configured backend; others use their default file.
func (c *Container) MigrateStoreUseCase(from, to string) (*usecase.MigrateStore, error) {
	source, err := c.openBackend(from)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	dest, err := c.openBackend(to)
	if err != nil {
		return nil, fmt.Errorf("destination: %w", err)
	}
	return usecase.NewMigrateStore(source, dest, dest, c.ItemLogger), nil
}

func (c *Container) openBackend(name string) (Store, error) {
	backend, err := domain.ParseStoreBackend(name)
	if err != nil {
		return nil, err
	}
	storeCfg := domain.StoreConfig{}
	if backend == c.AppConfig.Store.Backend {
		storeCfg = c.AppConfig.Store
	}
	return OpenStore(backend, domain.StorePath(c.Config.DataDir, storeCfg, backend))
}

// HTTPServer returns the HTTP server for the task manager.
// An empty addr uses the configured address.
func (c *Container) HTTPServer(addr string) (*httpapi.Server, error) {
	m, err := c.Manager()
	if err != nil {
		return nil, err
	}
	if addr == "" {
		addr = c.AppConfig.Server.Addr
	}
	return httpapi.New(m, httpapi.Options{
		Logger:          c.Logger,
		Addr:            addr,
		ShutdownTimeout: c.AppConfig.Server.ShutdownTimeoutDuration(),
	}), nil
}
