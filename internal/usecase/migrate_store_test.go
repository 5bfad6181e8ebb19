package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/infra/csvstore"
	"github.com/runoshun/kanban/internal/infra/sqlitestore"
	"github.com/runoshun/kanban/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *domain.Snapshot {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	return &domain.Snapshot{
		Tasks: []domain.Task{
			{ID: 1, Kind: domain.KindTask, Name: "Task", Status: domain.StatusNew, StartTime: &start, Duration: domain.Ptr(30 * time.Minute)},
		},
		Epics: []domain.Task{
			{ID: 2, Kind: domain.KindEpic, Name: "Epic", Status: domain.StatusDone, SubtaskIDs: []int{3}},
		},
		Subtasks: []domain.Task{
			{ID: 3, Kind: domain.KindSubtask, Name: "Sub", Status: domain.StatusDone, EpicID: 2},
		},
		LastID: 3,
	}
}

func TestMigrateStore_Execute_CopiesSnapshot(t *testing.T) {
	// Setup
	source := testutil.NewMockStateStore()
	require.NoError(t, source.Save(sampleSnapshot()))
	dest := testutil.NewMockStateStore()
	uc := NewMigrateStore(source, dest, dest, nil)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateStoreInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &MigrateStoreOutput{Tasks: 1, Epics: 1, Subtasks: 1, LastID: 3}, out)
	assert.Equal(t, sampleSnapshot(), dest.Saved())
}

func TestMigrateStore_Execute_RestoresCounterFromMaxID(t *testing.T) {
	source := testutil.NewMockStateStore()
	snap := sampleSnapshot()
	snap.LastID = 0
	require.NoError(t, source.Save(snap))
	dest := testutil.NewMockStateStore()

	out, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{})

	require.NoError(t, err)
	assert.Equal(t, 3, out.LastID)
	assert.Equal(t, 3, dest.Saved().LastID)
}

func TestMigrateStore_Execute_DestinationNotEmpty(t *testing.T) {
	source := testutil.NewMockStateStore()
	require.NoError(t, source.Save(sampleSnapshot()))
	dest := testutil.NewMockStateStore()
	require.NoError(t, dest.Save(&domain.Snapshot{Tasks: []domain.Task{{ID: 9, Kind: domain.KindTask, Name: "keep"}}}))

	_, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{})
	require.ErrorIs(t, err, domain.ErrStoreNotEmpty)
	assert.Equal(t, 9, dest.Saved().Tasks[0].ID)

	out, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Tasks)
	assert.Equal(t, 1, dest.Saved().Tasks[0].ID)
}

func TestMigrateStore_Execute_SourceNotInitialized(t *testing.T) {
	source := testutil.NewMockStateStore()
	dest := testutil.NewMockStateStore()

	_, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{})

	require.ErrorIs(t, err, domain.ErrNotInitialized)
	assert.False(t, dest.IsInitialized())
}

func TestMigrateStore_Execute_SaveError(t *testing.T) {
	source := testutil.NewMockStateStore()
	require.NoError(t, source.Save(sampleSnapshot()))
	dest := testutil.NewMockStateStore()
	dest.SaveErr = errors.New("read-only")

	_, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestMigrateStore_Execute_NilStores(t *testing.T) {
	_, err := NewMigrateStore(nil, nil, nil, nil).Execute(context.Background(), MigrateStoreInput{})
	assert.Error(t, err)
}

func TestMigrateStore_Execute_CSVToSQLite(t *testing.T) {
	// Setup
	dir := t.TempDir()
	source := csvstore.New(filepath.Join(dir, "tasks.csv"))
	require.NoError(t, source.Save(sampleSnapshot()))
	dest := sqlitestore.New(filepath.Join(dir, "tasks.db"))

	// Execute
	_, err := NewMigrateStore(source, dest, dest, nil).Execute(context.Background(), MigrateStoreInput{})

	// Assert
	require.NoError(t, err)
	loaded, err := dest.Load()
	require.NoError(t, err)
	want := sampleSnapshot()
	assert.Equal(t, 3, loaded.LastID)
	require.Len(t, loaded.Tasks, 1)
	require.Len(t, loaded.Epics, 1)
	require.Len(t, loaded.Subtasks, 1)
	assert.True(t, want.Tasks[0].StartTime.Equal(*loaded.Tasks[0].StartTime))
	assert.Equal(t, 30*time.Minute, *loaded.Tasks[0].Duration)
	assert.Equal(t, 2, loaded.Subtasks[0].EpicID)
	assert.Equal(t, domain.StatusDone, loaded.Epics[0].Status)
}
