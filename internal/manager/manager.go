// Package manager owns the in-memory state of tasks, epics and subtasks.
package manager

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/history"
)

// Manager stores work items and keeps epics, the priority view and the
// view history consistent with them.
// All methods are safe for concurrent use; each one runs under a single lock
// and either applies completely or leaves the state untouched.
type Manager struct {
	logger   domain.Logger
	tasks    map[int]*domain.Task
	epics    map[int]*domain.Task
	subtasks map[int]*domain.Task
	priority *priorityView
	history  *history.Tracker
	lastID   int
	mu       sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for item events.
func WithLogger(logger domain.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHistory sets the tracker that records viewed items.
func WithHistory(tracker *history.Tracker) Option {
	return func(m *Manager) {
		if tracker != nil {
			m.history = tracker
		}
	}
}

// New creates an empty manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		logger:   domain.NopLogger{},
		tasks:    make(map[int]*domain.Task),
		epics:    make(map[int]*domain.Task),
		subtasks: make(map[int]*domain.Task),
		priority: newPriorityView(),
		history:  history.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTask stores a new standalone task and returns its ID.
func (m *Manager) AddTask(task domain.Task) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := prepare(task, domain.KindTask)
	if err != nil {
		return 0, err
	}
	t.ID = 0
	if err := m.checkConflict(&t); err != nil {
		return 0, err
	}

	t.ID = m.nextID()
	m.tasks[t.ID] = &t
	m.priority.insert(&t)
	m.logger.Info(t.ID, "task", fmt.Sprintf("created: %q", t.Name))
	return t.ID, nil
}

// AddEpic stores a new epic and returns its ID.
// Status and schedule are derived from subtasks, so input values for them are ignored.
func (m *Manager) AddEpic(epic domain.Task) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, err := prepare(epic, domain.KindEpic)
	if err != nil {
		return 0, err
	}
	e.ID = m.nextID()
	e.SubtaskIDs = nil
	m.epics[e.ID] = &e
	m.refreshEpic(&e)
	m.logger.Info(e.ID, "epic", fmt.Sprintf("created: %q", e.Name))
	return e.ID, nil
}

// AddSubtask stores a new subtask under its epic and returns its ID.
// Returns ErrEpicNotFound without consuming an ID if the epic does not exist.
func (m *Manager) AddSubtask(subtask domain.Task) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := prepare(subtask, domain.KindSubtask)
	if err != nil {
		return 0, err
	}
	epic, ok := m.epics[s.EpicID]
	if !ok {
		return 0, fmt.Errorf("%w: #%d", domain.ErrEpicNotFound, s.EpicID)
	}
	s.ID = 0
	if err := m.checkConflict(&s); err != nil {
		return 0, err
	}

	s.ID = m.nextID()
	m.subtasks[s.ID] = &s
	epic.SubtaskIDs = append(epic.SubtaskIDs, s.ID)
	m.priority.insert(&s)
	m.refreshEpic(epic)
	m.logger.Info(s.ID, "subtask", fmt.Sprintf("created in epic #%d: %q", epic.ID, s.Name))
	return s.ID, nil
}

// UpdateTask replaces a stored task with the same ID.
func (m *Manager) UpdateTask(task domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; !ok {
		return fmt.Errorf("%w: #%d", domain.ErrTaskNotFound, task.ID)
	}
	t, err := prepare(task, domain.KindTask)
	if err != nil {
		return err
	}
	if err := m.checkConflict(&t); err != nil {
		return err
	}

	m.tasks[t.ID] = &t
	m.priority.insert(&t)
	m.logger.Info(t.ID, "task", fmt.Sprintf("updated (status: %s)", t.Status))
	return nil
}

// UpdateEpic changes the name and description of an epic.
// Status and schedule stay derived from the epic's subtasks.
func (m *Manager) UpdateEpic(epic domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.epics[epic.ID]
	if !ok {
		return fmt.Errorf("%w: #%d", domain.ErrEpicNotFound, epic.ID)
	}
	e, err := prepare(epic, domain.KindEpic)
	if err != nil {
		return err
	}

	stored.Name = e.Name
	stored.Description = e.Description
	m.logger.Info(stored.ID, "epic", "updated")
	return nil
}

// UpdateSubtask replaces a stored subtask and re-derives its epic.
// A zero EpicID keeps the stored parent; any other value must match it.
func (m *Manager) UpdateSubtask(subtask domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.subtasks[subtask.ID]
	if !ok {
		return fmt.Errorf("%w: #%d", domain.ErrSubtaskNotFound, subtask.ID)
	}
	if subtask.EpicID != 0 && subtask.EpicID != stored.EpicID {
		return fmt.Errorf("%w: #%d belongs to epic #%d", domain.ErrEpicMismatch, stored.ID, stored.EpicID)
	}
	s, err := prepare(subtask, domain.KindSubtask)
	if err != nil {
		return err
	}
	s.EpicID = stored.EpicID
	if err := m.checkConflict(&s); err != nil {
		return err
	}

	m.subtasks[s.ID] = &s
	m.priority.insert(&s)
	if epic, ok := m.epics[s.EpicID]; ok {
		m.refreshEpic(epic)
	}
	m.logger.Info(s.ID, "subtask", fmt.Sprintf("updated (status: %s)", s.Status))
	return nil
}

// GetTask returns the task and records it in the view history.
func (m *Manager) GetTask(id int) (domain.Task, error) {
	return m.get(m.tasks, id, domain.ErrTaskNotFound)
}

// GetEpic returns the epic and records it in the view history.
func (m *Manager) GetEpic(id int) (domain.Task, error) {
	return m.get(m.epics, id, domain.ErrEpicNotFound)
}

// GetSubtask returns the subtask and records it in the view history.
func (m *Manager) GetSubtask(id int) (domain.Task, error) {
	return m.get(m.subtasks, id, domain.ErrSubtaskNotFound)
}

func (m *Manager) get(store map[int]*domain.Task, id int, notFound error) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := store[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: #%d", notFound, id)
	}
	m.history.Record(*item)
	return item.Clone(), nil
}

// EpicSubtasks returns the subtasks of an epic in the order they were added.
// It does not record a view.
func (m *Manager) EpicSubtasks(epicID int) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.epics[epicID]
	if !ok {
		return nil, fmt.Errorf("%w: #%d", domain.ErrEpicNotFound, epicID)
	}
	return m.children(epic), nil
}

// Tasks returns all tasks sorted by ID.
func (m *Manager) Tasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopy(m.tasks)
}

// Epics returns all epics sorted by ID.
func (m *Manager) Epics() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopy(m.epics)
}

// Subtasks returns all subtasks sorted by ID.
func (m *Manager) Subtasks() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedCopy(m.subtasks)
}

// RemoveTask deletes a task.
func (m *Manager) RemoveTask(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("%w: #%d", domain.ErrTaskNotFound, id)
	}
	m.purge(m.tasks, id)
	m.logger.Info(id, "task", "removed")
	return nil
}

// RemoveSubtask deletes a subtask and re-derives its epic.
func (m *Manager) RemoveSubtask(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.subtasks[id]
	if !ok {
		return fmt.Errorf("%w: #%d", domain.ErrSubtaskNotFound, id)
	}
	m.purge(m.subtasks, id)
	if epic, ok := m.epics[s.EpicID]; ok {
		epic.SubtaskIDs = slices.DeleteFunc(epic.SubtaskIDs, func(childID int) bool { return childID == id })
		m.refreshEpic(epic)
	}
	m.logger.Info(id, "subtask", "removed")
	return nil
}

// RemoveEpic deletes an epic together with all of its subtasks.
func (m *Manager) RemoveEpic(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	epic, ok := m.epics[id]
	if !ok {
		return fmt.Errorf("%w: #%d", domain.ErrEpicNotFound, id)
	}
	for _, childID := range epic.SubtaskIDs {
		m.purge(m.subtasks, childID)
	}
	m.purge(m.epics, id)
	m.logger.Info(id, "epic", fmt.Sprintf("removed with %d subtask(s)", len(epic.SubtaskIDs)))
	return nil
}

// ClearTasks deletes every task.
func (m *Manager) ClearTasks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tasks)
	for id := range m.tasks {
		m.purge(m.tasks, id)
	}
	m.logger.Info(0, "task", fmt.Sprintf("cleared %d task(s)", n))
	return nil
}

// ClearSubtasks deletes every subtask and resets every epic to NEW with no schedule.
func (m *Manager) ClearSubtasks() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.subtasks)
	for id := range m.subtasks {
		m.purge(m.subtasks, id)
	}
	for _, epic := range m.epics {
		epic.SubtaskIDs = nil
		m.refreshEpic(epic)
	}
	m.logger.Info(0, "subtask", fmt.Sprintf("cleared %d subtask(s)", n))
	return nil
}

// ClearEpics deletes every epic and, with them, every subtask.
func (m *Manager) ClearEpics() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.epics)
	for id := range m.subtasks {
		m.purge(m.subtasks, id)
	}
	for id := range m.epics {
		m.purge(m.epics, id)
	}
	m.logger.Info(0, "epic", fmt.Sprintf("cleared %d epic(s)", n))
	return nil
}

// History returns viewed items from oldest to most recent view, with their current values.
func (m *Manager) History() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	viewed := m.history.Snapshot()
	out := make([]domain.Task, 0, len(viewed))
	for _, v := range viewed {
		if item := m.lookup(v.ID); item != nil {
			out = append(out, item.Clone())
			continue
		}
		out = append(out, v)
	}
	return out
}

// Prioritized returns scheduled tasks and subtasks ordered by start time.
// Items starting at the same time are ordered by ID.
func (m *Manager) Prioritized() []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.priority.ids()
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		if item := m.lookup(id); item != nil {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Snapshot returns a copy of the full state for persistence.
func (m *Manager) Snapshot() *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &domain.Snapshot{
		Tasks:    sortedCopy(m.tasks),
		Epics:    sortedCopy(m.epics),
		Subtasks: sortedCopy(m.subtasks),
		LastID:   m.lastID,
	}
}

// Restore replaces the state with a snapshot.
// Subtasks are linked to their epics in ID order, epics are re-derived and the
// ID counter continues after the largest known ID. Subtasks whose epic is
// missing are dropped, as are tasks and subtasks overlapping an item with a
// lower ID (tasks are scheduled before subtasks). The view history is reset.
func (m *Manager) Restore(snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make(map[int]*domain.Task, len(snap.Tasks))
	epics := make(map[int]*domain.Task, len(snap.Epics))
	subtasks := make(map[int]*domain.Task, len(snap.Subtasks))
	seen := make(map[int]bool, snap.Len())

	claim := func(id int) error {
		if id <= 0 {
			return fmt.Errorf("restore: invalid item id %d", id)
		}
		if seen[id] {
			return fmt.Errorf("restore: duplicate item id %d", id)
		}
		seen[id] = true
		return nil
	}

	priority := newPriorityView()
	dropped := 0
	// schedule keeps the no-overlap rule for stored data: the later ID loses.
	schedule := func(c *domain.Task) bool {
		if id := priority.conflict(c); id != 0 {
			m.logger.Warn(c.ID, strings.ToLower(string(c.Kind)), fmt.Sprintf("dropped on restore: overlaps item #%d", id))
			dropped++
			return false
		}
		priority.insert(c)
		return true
	}

	for _, t := range slices.SortedFunc(slices.Values(snap.Tasks), byID) {
		if err := claim(t.ID); err != nil {
			return err
		}
		c := normalize(t, domain.KindTask)
		if !schedule(&c) {
			continue
		}
		tasks[c.ID] = &c
	}
	for _, e := range snap.Epics {
		if err := claim(e.ID); err != nil {
			return err
		}
		c := normalize(e, domain.KindEpic)
		c.SubtaskIDs = nil
		epics[c.ID] = &c
	}
	for _, s := range slices.SortedFunc(slices.Values(snap.Subtasks), byID) {
		if err := claim(s.ID); err != nil {
			return err
		}
		epic, ok := epics[s.EpicID]
		if !ok {
			m.logger.Warn(s.ID, "subtask", fmt.Sprintf("dropped on restore: epic #%d not found", s.EpicID))
			dropped++
			continue
		}
		c := normalize(s, domain.KindSubtask)
		if !schedule(&c) {
			continue
		}
		subtasks[c.ID] = &c
		epic.SubtaskIDs = append(epic.SubtaskIDs, c.ID)
	}

	m.tasks, m.epics, m.subtasks = tasks, epics, subtasks
	m.priority = priority
	m.history.Reset()
	m.lastID = max(snap.LastID, snap.MaxID())
	for _, epic := range m.epics {
		m.refreshEpic(epic)
	}
	m.logger.Info(0, "manager", fmt.Sprintf("restored %d item(s), %d dropped", snap.Len()-dropped, dropped))
	return nil
}

func (m *Manager) nextID() int {
	m.lastID++
	return m.lastID
}

func (m *Manager) checkConflict(candidate *domain.Task) error {
	if id := m.priority.conflict(candidate); id != 0 {
		return &domain.ScheduleConflictError{Name: candidate.Name, ConflictID: id}
	}
	return nil
}

// purge removes an item from its store, the priority view and the view history.
func (m *Manager) purge(store map[int]*domain.Task, id int) {
	delete(store, id)
	m.priority.remove(id)
	m.history.Forget(id)
}

// refreshEpic re-derives the epic's status and schedule from its subtasks.
func (m *Manager) refreshEpic(epic *domain.Task) {
	children := m.children(epic)
	statuses := make([]domain.Status, len(children))
	for i := range children {
		statuses[i] = children[i].Status
	}
	epic.Status = domain.DeriveEpicStatus(statuses)

	sched := domain.DeriveEpicSchedule(children)
	epic.StartTime = sched.Start
	epic.EpicEnd = sched.End
	epic.Duration = sched.Duration
}

func (m *Manager) children(epic *domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(epic.SubtaskIDs))
	for _, id := range epic.SubtaskIDs {
		if s, ok := m.subtasks[id]; ok {
			out = append(out, s.Clone())
		}
	}
	return out
}

// lookup finds an item of any kind. IDs are unique across kinds.
func (m *Manager) lookup(id int) *domain.Task {
	if t, ok := m.tasks[id]; ok {
		return t
	}
	if e, ok := m.epics[id]; ok {
		return e
	}
	return m.subtasks[id]
}

// prepare validates caller input and normalizes it to the given kind.
func prepare(in domain.Task, kind domain.Kind) (domain.Task, error) {
	if err := in.Validate(); err != nil {
		return domain.Task{}, err
	}
	return normalize(in, kind), nil
}

// normalize returns a detached copy with kind-specific fields reset.
func normalize(in domain.Task, kind domain.Kind) domain.Task {
	t := in.Clone()
	t.Kind = kind
	if t.Status == "" {
		t.Status = domain.StatusNew
	}
	switch kind {
	case domain.KindEpic:
		t.EpicID = 0
	case domain.KindSubtask:
		t.SubtaskIDs = nil
		t.EpicEnd = nil
	default:
		t.EpicID = 0
		t.SubtaskIDs = nil
		t.EpicEnd = nil
	}
	return t
}

func byID(a, b domain.Task) int {
	return cmp.Compare(a.ID, b.ID)
}

func sortedCopy(store map[int]*domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(store))
	for _, id := range slices.Sorted(maps.Keys(store)) {
		out = append(out, store[id].Clone())
	}
	return out
}
