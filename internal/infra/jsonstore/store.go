// Package jsonstore persists manager state as a JSON file.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/infra/filelock"
)

// storeData represents the JSON file structure.
// Items are keyed by their ID.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks    map[string]*itemData `json:"tasks"`
	Epics    map[string]*itemData `json:"epics"`
	Subtasks map[string]*itemData `json:"subtasks"`
	Meta     meta                 `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	LastID int `json:"lastId"`
}

// itemData is the JSON representation of an item (without ID, which is the map key).
// Epic schedules are derived and not stored.
type itemData struct {
	Start       *string       `json:"start,omitempty"`    // Local date-time
	DurationMin *int64        `json:"duration,omitempty"` // Minutes
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      domain.Status `json:"status"`
	EpicID      int           `json:"epicId,omitempty"`
}

// Store implements domain.StateStore using a JSON file.
type Store struct {
	path string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// IsInitialized checks if the store file exists.
func (s *Store) IsInitialized() bool {
	return filelock.Exists(s.path)
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() (bool, error) {
	created := false
	err := filelock.With(s.path, filelock.Exclusive, func() error {
		if filelock.Exists(s.path) {
			return nil // Already exists
		}
		created = true
		return s.write(&domain.Snapshot{})
	})
	if err != nil {
		return false, fmt.Errorf("%w: initialize %s: %w", domain.ErrPersistence, s.path, err)
	}
	return created, nil
}

// Load reads the snapshot from the file.
func (s *Store) Load() (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := filelock.With(s.path, filelock.Shared, func() error {
		data, err := s.read()
		if err != nil {
			return err
		}
		snap, err = data.toSnapshot()
		return err
	})
	if errors.Is(err, domain.ErrNotInitialized) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", domain.ErrPersistence, s.path, err)
	}
	return snap, nil
}

// Save replaces the file contents with the snapshot.
func (s *Store) Save(snap *domain.Snapshot) error {
	err := filelock.With(s.path, filelock.Exclusive, func() error {
		return s.write(snap)
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, s.path, err)
	}
	return nil
}

func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return &data, nil
}

func (s *Store) write(snap *domain.Snapshot) error {
	content, err := json.MarshalIndent(fromSnapshot(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}
	return filelock.WriteAtomic(s.path, content)
}

func fromSnapshot(snap *domain.Snapshot) *storeData {
	return &storeData{
		Tasks:    encodeGroup(snap.Tasks),
		Epics:    encodeGroup(snap.Epics),
		Subtasks: encodeGroup(snap.Subtasks),
		Meta:     meta{LastID: max(snap.LastID, snap.MaxID())},
	}
}

func encodeGroup(tasks []domain.Task) map[string]*itemData {
	group := make(map[string]*itemData, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		item := &itemData{
			Name:        t.Name,
			Description: t.Description,
			Status:      t.Status,
		}
		if t.IsSubtask() {
			item.EpicID = t.EpicID
		}
		if !t.IsEpic() {
			if t.StartTime != nil {
				item.Start = domain.Ptr(domain.FormatLocalTime(*t.StartTime))
			}
			if t.Duration != nil {
				item.DurationMin = domain.Ptr(int64(*t.Duration / time.Minute))
			}
		}
		group[strconv.Itoa(t.ID)] = item
	}
	return group
}

func (d *storeData) toSnapshot() (*domain.Snapshot, error) {
	snap := &domain.Snapshot{LastID: d.Meta.LastID}
	var err error
	if snap.Tasks, err = decodeGroup(d.Tasks, domain.KindTask); err != nil {
		return nil, err
	}
	if snap.Epics, err = decodeGroup(d.Epics, domain.KindEpic); err != nil {
		return nil, err
	}
	if snap.Subtasks, err = decodeGroup(d.Subtasks, domain.KindSubtask); err != nil {
		return nil, err
	}
	return snap, nil
}

func decodeGroup(group map[string]*itemData, kind domain.Kind) ([]domain.Task, error) {
	type keyed struct {
		item *itemData
		id   int
	}
	entries := make([]keyed, 0, len(group))
	for key, item := range group {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid %s id %q: %w", kind, key, err)
		}
		entries = append(entries, keyed{id: id, item: item})
	}
	// Sort by ID for consistent ordering
	slices.SortFunc(entries, func(a, b keyed) int { return a.id - b.id })

	var tasks []domain.Task
	for _, e := range entries {
		t := domain.Task{
			ID:          e.id,
			Kind:        kind,
			Name:        e.item.Name,
			Description: e.item.Description,
			Status:      e.item.Status,
		}
		if t.Status != "" && !t.Status.IsValid() {
			return nil, fmt.Errorf("item %d: %w: %q", e.id, domain.ErrInvalidStatus, t.Status)
		}
		if kind == domain.KindSubtask {
			t.EpicID = e.item.EpicID
		}
		if kind != domain.KindEpic {
			if e.item.Start != nil {
				start, err := domain.ParseLocalTime(*e.item.Start)
				if err != nil {
					return nil, fmt.Errorf("item %d: invalid start: %w", e.id, err)
				}
				t.StartTime = &start
			}
			if e.item.DurationMin != nil {
				t.Duration = domain.Ptr(time.Duration(*e.item.DurationMin) * time.Minute)
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Ensure Store implements the persistence ports.
var (
	_ domain.StateStore       = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
