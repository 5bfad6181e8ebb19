// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/kanban/internal/domain"
)

// InitBoardInput contains the input parameters for InitBoard.
type InitBoardInput struct {
	Config  *domain.Config // Config written to config.toml when it does not exist
	DataDir string         // Path to the .kanban directory
}

// InitBoardOutput contains the output from InitBoard.
type InitBoardOutput struct {
	DataDir            string // Path to the data directory
	ConfigPath         string // Path to config.toml (empty if it was not written)
	AlreadyInitialized bool   // True if the store already existed
	ConfigCreated      bool   // True if config.toml was written by this call
}

// InitBoard initializes a kanban data directory.
type InitBoard struct {
	storeInit     domain.StoreInitializer
	configManager domain.ConfigManager
}

// NewInitBoard creates a new InitBoard use case.
func NewInitBoard(storeInit domain.StoreInitializer, configManager domain.ConfigManager) *InitBoard {
	return &InitBoard{storeInit: storeInit, configManager: configManager}
}

// Execute creates the data directory, the logs directory, an empty store and config.toml.
// Running it again is safe: existing files are left untouched.
func (uc *InitBoard) Execute(_ context.Context, in InitBoardInput) (*InitBoardOutput, error) {
	alreadyInitialized := uc.storeInit.IsInitialized()

	if err := os.MkdirAll(filepath.Join(in.DataDir, "logs"), 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if _, err := uc.storeInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	out := &InitBoardOutput{
		DataDir:            in.DataDir,
		AlreadyInitialized: alreadyInitialized,
	}

	cfg := in.Config
	if cfg == nil {
		cfg = domain.NewDefaultConfig()
	}
	path, err := uc.configManager.InitLocalConfig(cfg)
	switch {
	case errors.Is(err, domain.ErrConfigExists):
	case err != nil:
		return nil, fmt.Errorf("write config: %w", err)
	default:
		out.ConfigPath = path
		out.ConfigCreated = true
	}

	return out, nil
}
