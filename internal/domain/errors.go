package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrScheduleConflict = errors.New("schedule conflict")
	ErrTaskNotFound     = errors.New("task not found")
	ErrEpicNotFound     = errors.New("epic not found")
	ErrSubtaskNotFound  = errors.New("subtask not found")
	ErrEpicMismatch     = errors.New("subtask cannot change its epic")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidDuration  = errors.New("duration must be a non-negative whole number of minutes")
	ErrInvalidKind      = errors.New("invalid item kind")
	ErrPersistence      = errors.New("persistence failure")
	ErrNotInitialized   = errors.New("kanban not initialized (run 'kanban init' first)")
	ErrUnknownStore     = errors.New("unknown store backend")
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoItemsInFile    = errors.New("no items found in file")
	ErrConfigExists     = errors.New("config file already exists")
	ErrStoreNotEmpty    = errors.New("destination store is not empty")
)

// ScheduleConflictError reports an item whose interval overlaps an already scheduled item.
type ScheduleConflictError struct {
	Name       string // Name of the rejected item
	ConflictID int    // ID of the item it overlaps
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: %q overlaps item #%d", ErrScheduleConflict, e.Name, e.ConflictID)
}

// Is makes errors.Is(err, ErrScheduleConflict) match.
func (e *ScheduleConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}

// IsNotFound returns true if err reports a missing task, epic or subtask.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrEpicNotFound) ||
		errors.Is(err, ErrSubtaskNotFound)
}
