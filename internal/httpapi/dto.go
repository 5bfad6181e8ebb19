package httpapi

import (
	"fmt"
	"time"

	"github.com/runoshun/kanban/internal/domain"
)

// Item is the JSON representation of a task, epic or subtask.
// Times use the local date-time layout without zone; durations are minutes.
// Fields are ordered to minimize memory padding.
type Item struct {
	StartTime   *string `json:"startTime,omitempty"`
	Duration    *int64  `json:"duration,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	SubtaskIDs  []int   `json:"subtaskIds,omitempty"`
	ID          int     `json:"id"`
	EpicID      int     `json:"epicId,omitempty"`
}

// ItemRequest is the body of POST /tasks, /epics and /subtasks.
// ID 0 creates a new item; any other ID updates the existing one.
// Fields are ordered to minimize memory padding.
type ItemRequest struct {
	StartTime   *string `json:"startTime"`
	Duration    *int64  `json:"duration"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	ID          int     `json:"id"`
	EpicID      int     `json:"epicId"`
}

// CreatedResponse is returned when an item is created.
type CreatedResponse struct {
	ID int `json:"id"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewItem converts a domain item to its JSON representation.
func NewItem(t domain.Task) Item {
	item := Item{
		ID:          t.ID,
		Type:        string(t.Kind),
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
		EpicID:      t.EpicID,
		SubtaskIDs:  t.SubtaskIDs,
	}
	if t.StartTime != nil {
		item.StartTime = domain.Ptr(domain.FormatLocalTime(*t.StartTime))
	}
	if t.Duration != nil {
		item.Duration = domain.Ptr(int64(*t.Duration / time.Minute))
	}
	if end := t.EndTime(); end != nil {
		item.EndTime = domain.Ptr(domain.FormatLocalTime(*end))
	}
	return item
}

// NewItems converts a list of domain items.
func NewItems(tasks []domain.Task) []Item {
	items := make([]Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, NewItem(t))
	}
	return items
}

// ToTask converts the request into a domain item of the given kind.
// Epic status and schedule are derived, so status, start and duration are ignored for epics.
func (r ItemRequest) ToTask(kind domain.Kind) (domain.Task, error) {
	task := domain.Task{
		ID:          r.ID,
		Kind:        kind,
		Name:        r.Name,
		Description: r.Description,
	}
	if kind == domain.KindEpic {
		return task, nil
	}
	if r.Status != "" {
		st, err := domain.ParseStatus(r.Status)
		if err != nil {
			return domain.Task{}, fmt.Errorf("%w: %q", err, r.Status)
		}
		task.Status = st
	}
	if kind == domain.KindSubtask {
		task.EpicID = r.EpicID
	}
	if r.StartTime != nil && *r.StartTime != "" {
		start, err := domain.ParseLocalTime(*r.StartTime)
		if err != nil {
			return domain.Task{}, fmt.Errorf("%w: invalid startTime %q", errBadRequest, *r.StartTime)
		}
		task.StartTime = &start
	}
	if r.Duration != nil {
		task.Duration = domain.Ptr(time.Duration(*r.Duration) * time.Minute)
	}
	return task, nil
}
