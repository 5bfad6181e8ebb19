package domain

import "strings"

// Status represents the progress state of a work item.
type Status string

const (
	StatusNew        Status = "NEW"         // Created, not started
	StatusInProgress Status = "IN_PROGRESS" // Being worked on
	StatusDone       Status = "DONE"        // Finished
)

// AllStatuses returns all valid status values.
func AllStatuses() []Status {
	return []Status{
		StatusNew,
		StatusInProgress,
		StatusDone,
	}
}

// ParseStatus parses a status name case-insensitively.
// Both "in_progress" and "in-progress" are accepted.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	st := Status(normalized)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusNew:
		return "New"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// DeriveEpicStatus computes an epic's status from its subtasks' statuses.
//
//	no subtasks          -> NEW
//	any IN_PROGRESS      -> IN_PROGRESS
//	all NEW              -> NEW
//	all DONE             -> DONE
//	mix of NEW and DONE  -> IN_PROGRESS
func DeriveEpicStatus(statuses []Status) Status {
	if len(statuses) == 0 {
		return StatusNew
	}

	newCount, doneCount := 0, 0
	for _, s := range statuses {
		switch s {
		case StatusInProgress:
			return StatusInProgress
		case StatusNew:
			newCount++
		case StatusDone:
			doneCount++
		}
	}

	switch len(statuses) {
	case newCount:
		return StatusNew
	case doneCount:
		return StatusDone
	default:
		return StatusInProgress
	}
}
