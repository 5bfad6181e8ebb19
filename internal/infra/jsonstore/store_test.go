package jsonstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := New(filepath.Join(t.TempDir(), "tasks.json"))
	_, err := store.Initialize()
	require.NoError(t, err)
	return store
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 1, hour, minute, 0, 0, time.Local)
}

func TestStore_Initialize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "tasks.json")

	store := New(path)
	assert.False(t, store.IsInitialized())

	// Initialize should create the file
	created, err := store.Initialize()
	require.NoError(t, err)
	assert.True(t, created)
	assert.FileExists(t, path)

	// Initialize again should be idempotent
	created, err = store.Initialize()
	require.NoError(t, err)
	assert.False(t, created)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, snap.Len())
}

func TestStore_LoadNotInitialized(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "tasks.json"))

	_, err := store.Load()

	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	snap := &domain.Snapshot{
		Tasks: []domain.Task{
			{ID: 4, Kind: domain.KindTask, Name: "later", Status: domain.StatusNew},
			{ID: 1, Kind: domain.KindTask, Name: "first", Status: domain.StatusDone, StartTime: domain.Ptr(at(9, 0)), Duration: domain.Ptr(45 * time.Minute)},
		},
		Epics:    []domain.Task{{ID: 2, Kind: domain.KindEpic, Name: "epic", Description: "d", Status: domain.StatusInProgress}},
		Subtasks: []domain.Task{{ID: 3, Kind: domain.KindSubtask, Name: "sub", Status: domain.StatusInProgress, EpicID: 2}},
		LastID:   6,
	}

	require.NoError(t, store.Save(snap))
	got, err := store.Load()
	require.NoError(t, err)

	// Items come back sorted by ID.
	assert.Equal(t, []domain.Task{snap.Tasks[1], snap.Tasks[0]}, got.Tasks)
	assert.Equal(t, snap.Epics, got.Epics)
	assert.Equal(t, snap.Subtasks, got.Subtasks)
	assert.Equal(t, 6, got.LastID)
}

func TestStore_FileLayout(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(&domain.Snapshot{
		Tasks: []domain.Task{{ID: 1, Kind: domain.KindTask, Name: "t", Status: domain.StatusNew, StartTime: domain.Ptr(at(10, 30)), Duration: domain.Ptr(90 * time.Minute)}},
		Epics: []domain.Task{{ID: 2, Kind: domain.KindEpic, Name: "e", Status: domain.StatusNew, StartTime: domain.Ptr(at(1, 0))}},
	}))

	content, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var data storeData
	require.NoError(t, json.Unmarshal(content, &data))

	require.Contains(t, data.Tasks, "1")
	assert.Equal(t, "2024-05-01T10:30:00", *data.Tasks["1"].Start)
	assert.Equal(t, int64(90), *data.Tasks["1"].DurationMin)
	require.Contains(t, data.Epics, "2")
	assert.Nil(t, data.Epics["2"].Start, "epic schedule is derived")
	assert.Equal(t, 2, data.Meta.LastID)
}

func TestStore_LoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o600))

	_, err := store.Load()

	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestStore_LoadInvalidStatus(t *testing.T) {
	store := newTestStore(t)
	raw := `{"tasks":{"1":{"name":"t","status":"LATER"}},"meta":{"lastId":1}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o600))

	_, err := store.Load()

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestStore_ManagerRoundTrip(t *testing.T) {
	store := newTestStore(t)
	fb, err := manager.LoadFileBacked(store, nil)
	require.NoError(t, err)

	epicID, _ := fb.AddEpic(domain.Task{Name: "E"})
	_, err = fb.AddSubtask(domain.Task{Name: "S", EpicID: epicID, Status: domain.StatusDone, StartTime: domain.Ptr(at(14, 0)), Duration: domain.Ptr(time.Hour)})
	require.NoError(t, err)
	removed, _ := fb.AddTask(domain.Task{Name: "gone"})
	require.NoError(t, fb.RemoveTask(removed))

	loaded, err := manager.LoadFileBacked(store, nil)
	require.NoError(t, err)

	assert.Equal(t, fb.Epics(), loaded.Epics())
	assert.Equal(t, fb.Subtasks(), loaded.Subtasks())
	// The JSON file keeps the counter, so removed IDs are never reused.
	next, err := loaded.AddTask(domain.Task{Name: "next"})
	require.NoError(t, err)
	assert.Equal(t, removed+1, next)
}
