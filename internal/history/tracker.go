// Package history records recently viewed work items.
package history

import "github.com/runoshun/kanban/internal/domain"

type node struct {
	prev *node
	next *node
	task domain.Task
}

// Tracker keeps distinct items in the order they were last viewed.
// Viewing an item again moves it to the most recent position.
// Record and Forget run in constant time.
// A Tracker is not safe for concurrent use; the manager serializes access.
type Tracker struct {
	index map[int]*node
	head  *node // oldest
	tail  *node // most recent
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{index: make(map[int]*node)}
}

// Record appends task as the most recent entry, replacing any earlier entry with the same ID.
func (t *Tracker) Record(task domain.Task) {
	if n, ok := t.index[task.ID]; ok {
		t.detach(n)
	}
	n := &node{task: task.Clone(), prev: t.tail}
	if t.tail == nil {
		t.head = n
	} else {
		t.tail.next = n
	}
	t.tail = n
	t.index[task.ID] = n
}

// Forget removes the entry for id. It is a no-op if id is not tracked.
func (t *Tracker) Forget(id int) {
	if n, ok := t.index[id]; ok {
		t.detach(n)
	}
}

// Contains reports whether id is tracked.
func (t *Tracker) Contains(id int) bool {
	_, ok := t.index[id]
	return ok
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	return len(t.index)
}

// IDs returns the tracked IDs from oldest to most recent.
func (t *Tracker) IDs() []int {
	ids := make([]int, 0, len(t.index))
	for n := t.head; n != nil; n = n.next {
		ids = append(ids, n.task.ID)
	}
	return ids
}

// Snapshot returns copies of the tracked items from oldest to most recent.
// Mutating the result does not affect the tracker.
func (t *Tracker) Snapshot() []domain.Task {
	tasks := make([]domain.Task, 0, len(t.index))
	for n := t.head; n != nil; n = n.next {
		tasks = append(tasks, n.task.Clone())
	}
	return tasks
}

// Reset forgets every entry.
func (t *Tracker) Reset() {
	t.index = make(map[int]*node)
	t.head = nil
	t.tail = nil
}

func (t *Tracker) detach(n *node) {
	if n.prev == nil {
		t.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		t.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	delete(t.index, n.task.ID)
}
