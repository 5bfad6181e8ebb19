package manager

import (
	"cmp"
	"slices"
	"time"

	"github.com/runoshun/kanban/internal/domain"
)

// slot is a scheduled interval in the priority view.
type slot struct {
	start time.Time
	end   time.Time
	id    int
}

func compareSlots(a, b slot) int {
	if c := a.start.Compare(b.start); c != 0 {
		return c
	}
	return cmp.Compare(a.id, b.id)
}

// priorityView orders scheduled tasks and subtasks by start time, then by ID.
// Unscheduled items and epics are never inserted.
type priorityView struct {
	byID  map[int]slot
	slots []slot
}

func newPriorityView() *priorityView {
	return &priorityView{byID: make(map[int]slot)}
}

// insert adds or replaces the slot for task. Unscheduled tasks are removed.
func (v *priorityView) insert(task *domain.Task) {
	v.remove(task.ID)
	if !task.IsScheduled() || task.IsEpic() {
		return
	}
	s := slot{start: *task.StartTime, end: *task.EndTime(), id: task.ID}
	i, _ := slices.BinarySearchFunc(v.slots, s, compareSlots)
	v.slots = slices.Insert(v.slots, i, s)
	v.byID[task.ID] = s
}

func (v *priorityView) remove(id int) {
	s, ok := v.byID[id]
	if !ok {
		return
	}
	if i, found := slices.BinarySearchFunc(v.slots, s, compareSlots); found {
		v.slots = slices.Delete(v.slots, i, i+1)
	}
	delete(v.byID, id)
}

// conflict returns the ID of a slot overlapping candidate, ignoring the candidate's own ID.
// Returns 0 when there is no conflict or the candidate is unscheduled.
func (v *priorityView) conflict(candidate *domain.Task) int {
	if !candidate.IsScheduled() {
		return 0
	}
	start, end := *candidate.StartTime, *candidate.EndTime()
	for _, s := range v.slots {
		if !s.start.Before(end) {
			// Sorted by start: nothing later can overlap.
			break
		}
		if s.id == candidate.ID {
			continue
		}
		if domain.Overlaps(start, end, s.start, s.end) {
			return s.id
		}
	}
	return 0
}

func (v *priorityView) ids() []int {
	ids := make([]int, len(v.slots))
	for i, s := range v.slots {
		ids[i] = s.id
	}
	return ids
}

func (v *priorityView) size() int {
	return len(v.slots)
}

func (v *priorityView) contains(id int) bool {
	_, ok := v.byID[id]
	return ok
}
