// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/kanban/internal/domain"
)

// MigrateStoreInput contains parameters for MigrateStore.
type MigrateStoreInput struct {
	// Force overwrites a destination store that already holds items.
	Force bool
}

// MigrateStoreOutput contains migration results.
type MigrateStoreOutput struct {
	Tasks    int
	Epics    int
	Subtasks int
	LastID   int
}

// MigrateStore copies the full state from one store to another.
type MigrateStore struct {
	source   domain.StateStore
	dest     domain.StateStore
	destInit domain.StoreInitializer
	logger   domain.Logger
}

// NewMigrateStore creates a new MigrateStore use case.
func NewMigrateStore(source, dest domain.StateStore, destInit domain.StoreInitializer, logger domain.Logger) *MigrateStore {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &MigrateStore{source: source, dest: dest, destInit: destInit, logger: logger}
}

// Execute copies the source snapshot into the destination store.
// A non-empty destination is rejected unless Force is set.
func (uc *MigrateStore) Execute(_ context.Context, in MigrateStoreInput) (*MigrateStoreOutput, error) {
	if uc.source == nil || uc.dest == nil {
		return nil, errors.New("source or destination store is nil")
	}
	if uc.destInit == nil {
		return nil, errors.New("destination store initializer is nil")
	}

	snap, err := uc.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load source store: %w", err)
	}

	if _, err := uc.destInit.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize destination store: %w", err)
	}

	if !in.Force {
		existing, err := uc.dest.Load()
		if err != nil && !errors.Is(err, domain.ErrNotInitialized) {
			return nil, fmt.Errorf("check destination store: %w", err)
		}
		if existing != nil && existing.Len() > 0 {
			return nil, fmt.Errorf("%w: %d items", domain.ErrStoreNotEmpty, existing.Len())
		}
	}

	// Stores without a counter resume from the highest id.
	snap.LastID = max(snap.LastID, snap.MaxID())

	if err := uc.dest.Save(snap); err != nil {
		return nil, fmt.Errorf("save destination store: %w", err)
	}

	uc.logger.Info(0, "migrate", fmt.Sprintf("migrated %d items (last id %d)", snap.Len(), snap.LastID))
	return &MigrateStoreOutput{
		Tasks:    len(snap.Tasks),
		Epics:    len(snap.Epics),
		Subtasks: len(snap.Subtasks),
		LastID:   snap.LastID,
	}, nil
}
