// Package domain contains core business entities and interfaces.
package domain

import (
	"slices"
	"strings"
	"time"
)

// Kind tags the variant of a work item.
type Kind string

// Work item kinds.
const (
	KindTask    Kind = "TASK"
	KindEpic    Kind = "EPIC"
	KindSubtask Kind = "SUBTASK"
)

// IsValid returns true if the kind is a known value.
func (k Kind) IsValid() bool {
	switch k {
	case KindTask, KindEpic, KindSubtask:
		return true
	default:
		return false
	}
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Task represents a work item managed by kanban.
// Tasks, epics and subtasks share this type and are distinguished by Kind.
// Fields are ordered to minimize memory padding.
type Task struct {
	StartTime   *time.Time     // Scheduled start (nil = unscheduled)
	Duration    *time.Duration // Planned duration (nil = not set)
	EpicEnd     *time.Time     // Derived end time (epics only)
	Name        string         // Name (required)
	Description string         // Description (optional)
	Kind        Kind           // Variant tag
	Status      Status         // Current status
	SubtaskIDs  []int          // Child subtask IDs in insertion order (epics only)
	ID          int            // Assigned by the manager
	EpicID      int            // Parent epic ID (subtasks only)
}

// IsEpic returns true if the item is an epic.
func (t *Task) IsEpic() bool {
	return t.Kind == KindEpic
}

// IsSubtask returns true if the item is a subtask.
func (t *Task) IsSubtask() bool {
	return t.Kind == KindSubtask
}

// IsScheduled returns true if the item has a start time.
func (t *Task) IsScheduled() bool {
	return t.StartTime != nil
}

// EndTime returns the end of the item's schedule.
// For epics this is the derived end; otherwise StartTime + Duration.
// Returns nil for unscheduled items.
func (t *Task) EndTime() *time.Time {
	if t.IsEpic() {
		return t.EpicEnd
	}
	if t.StartTime == nil {
		return nil
	}
	end := t.StartTime.Add(t.DurationOrZero())
	return &end
}

// DurationOrZero returns the duration, treating nil as zero.
func (t *Task) DurationOrZero() time.Duration {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// Validate checks the caller-controlled fields of an item.
// An empty status is accepted and normalized to NEW by the manager.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Status != "" && !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	// Stores keep durations in minutes.
	if t.Duration != nil && (*t.Duration < 0 || *t.Duration%time.Minute != 0) {
		return ErrInvalidDuration
	}
	return nil
}

// Clone returns a deep copy of the item.
func (t Task) Clone() Task {
	c := t
	if t.StartTime != nil {
		v := *t.StartTime
		c.StartTime = &v
	}
	if t.Duration != nil {
		v := *t.Duration
		c.Duration = &v
	}
	if t.EpicEnd != nil {
		v := *t.EpicEnd
		c.EpicEnd = &v
	}
	c.SubtaskIDs = slices.Clone(t.SubtaskIDs)
	return c
}

// Snapshot is the full manager state exchanged with persistence adapters.
// Fields are ordered to minimize memory padding.
type Snapshot struct {
	Tasks    []Task
	Epics    []Task
	Subtasks []Task
	LastID   int // Last assigned ID; the next item receives LastID+1
}

// MaxID returns the largest item ID in the snapshot.
func (s *Snapshot) MaxID() int {
	maxID := 0
	for _, group := range [][]Task{s.Tasks, s.Epics, s.Subtasks} {
		for i := range group {
			maxID = max(maxID, group[i].ID)
		}
	}
	return maxID
}

// Len returns the number of items in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Tasks) + len(s.Epics) + len(s.Subtasks)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
