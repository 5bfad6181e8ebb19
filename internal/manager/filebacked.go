package manager

import (
	"errors"
	"fmt"
	"sync"

	"github.com/runoshun/kanban/internal/domain"
)

// FileBacked is a Manager that saves its full state to a store after every
// successful mutation. Reads are served by the embedded Manager.
// If a save fails the in-memory change is kept and ErrPersistence is returned.
type FileBacked struct {
	*Manager
	store  domain.StateStore
	logger domain.Logger
	mu     sync.Mutex // serializes mutate+save so saves land in mutation order
}

// NewFileBacked wraps m so that mutations are persisted to store.
func NewFileBacked(m *Manager, store domain.StateStore, logger domain.Logger) *FileBacked {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &FileBacked{Manager: m, store: store, logger: logger}
}

// LoadFileBacked creates a manager restored from store.
// An uninitialized store yields an empty manager.
func LoadFileBacked(store domain.StateStore, logger domain.Logger, opts ...Option) (*FileBacked, error) {
	m := New(append([]Option{WithLogger(logger)}, opts...)...)
	fb := NewFileBacked(m, store, logger)

	snap, err := store.Load()
	if errors.Is(err, domain.ErrNotInitialized) {
		return fb, nil
	}
	if err != nil {
		return nil, persistenceError("load", err)
	}
	if err := m.Restore(snap); err != nil {
		return nil, persistenceError("restore", err)
	}
	return fb, nil
}

// Save writes the current state to the store.
func (f *FileBacked) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save()
}

func (f *FileBacked) save() error {
	if err := f.store.Save(f.Manager.Snapshot()); err != nil {
		f.logger.Error(0, "store", fmt.Sprintf("save failed: %v", err))
		return persistenceError("save", err)
	}
	return nil
}

// mutate runs op and saves when it succeeds.
func (f *FileBacked) mutate(op func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := op(); err != nil {
		return err
	}
	return f.save()
}

func (f *FileBacked) add(op func() (int, error)) (int, error) {
	var id int
	err := f.mutate(func() error {
		var err error
		id, err = op()
		return err
	})
	return id, err
}

// AddTask adds a task and saves.
func (f *FileBacked) AddTask(task domain.Task) (int, error) {
	return f.add(func() (int, error) { return f.Manager.AddTask(task) })
}

// AddEpic adds an epic and saves.
func (f *FileBacked) AddEpic(epic domain.Task) (int, error) {
	return f.add(func() (int, error) { return f.Manager.AddEpic(epic) })
}

// AddSubtask adds a subtask and saves.
func (f *FileBacked) AddSubtask(subtask domain.Task) (int, error) {
	return f.add(func() (int, error) { return f.Manager.AddSubtask(subtask) })
}

// UpdateTask updates a task and saves.
func (f *FileBacked) UpdateTask(task domain.Task) error {
	return f.mutate(func() error { return f.Manager.UpdateTask(task) })
}

// UpdateEpic updates an epic and saves.
func (f *FileBacked) UpdateEpic(epic domain.Task) error {
	return f.mutate(func() error { return f.Manager.UpdateEpic(epic) })
}

// UpdateSubtask updates a subtask and saves.
func (f *FileBacked) UpdateSubtask(subtask domain.Task) error {
	return f.mutate(func() error { return f.Manager.UpdateSubtask(subtask) })
}

// RemoveTask removes a task and saves.
func (f *FileBacked) RemoveTask(id int) error {
	return f.mutate(func() error { return f.Manager.RemoveTask(id) })
}

// RemoveEpic removes an epic with its subtasks and saves.
func (f *FileBacked) RemoveEpic(id int) error {
	return f.mutate(func() error { return f.Manager.RemoveEpic(id) })
}

// RemoveSubtask removes a subtask and saves.
func (f *FileBacked) RemoveSubtask(id int) error {
	return f.mutate(func() error { return f.Manager.RemoveSubtask(id) })
}

// ClearTasks removes all tasks and saves.
func (f *FileBacked) ClearTasks() error {
	return f.mutate(f.Manager.ClearTasks)
}

// ClearEpics removes all epics and subtasks and saves.
func (f *FileBacked) ClearEpics() error {
	return f.mutate(f.Manager.ClearEpics)
}

// ClearSubtasks removes all subtasks and saves.
func (f *FileBacked) ClearSubtasks() error {
	return f.mutate(f.Manager.ClearSubtasks)
}

// Restore replaces the state and saves it.
func (f *FileBacked) Restore(snap *domain.Snapshot) error {
	return f.mutate(func() error { return f.Manager.Restore(snap) })
}

func persistenceError(op string, err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}
