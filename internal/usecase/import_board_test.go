package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/manager"
	"github.com/runoshun/kanban/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const board = `
tasks:
  - name: Write report
    start: 2024-05-01T10:00:00
    duration: 30m
  - name: Review
epics:
  - name: Release
    description: Ship v1
    subtasks:
      - name: Tag
        status: done
      - name: Announce
        status: in_progress
`

func TestImportBoard_Execute_CreatesItems(t *testing.T) {
	// Setup
	m := manager.New()
	uc := NewImportBoard(m, nil)

	// Execute
	out, err := uc.Execute(context.Background(), ImportBoardInput{Content: []byte(board)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 5, out.Created)
	assert.Zero(t, out.Skipped)
	require.Len(t, out.Items, 5)
	assert.Equal(t, ImportedItem{Name: "Write report", Kind: domain.KindTask, ID: 1}, out.Items[0])
	assert.Equal(t, ImportedItem{Name: "Release", Kind: domain.KindEpic, ID: 3}, out.Items[2])
	assert.Equal(t, ImportedItem{Name: "Announce", Kind: domain.KindSubtask, ID: 5, EpicID: 3}, out.Items[4])

	assert.Len(t, m.Tasks(), 2)
	epic, err := m.GetEpic(3)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, epic.SubtaskIDs)
	assert.Equal(t, domain.StatusInProgress, epic.Status)
	assert.Len(t, m.Prioritized(), 1)
}

func TestImportBoard_Execute_DryRun(t *testing.T) {
	m := manager.New()
	uc := NewImportBoard(m, nil)

	out, err := uc.Execute(context.Background(), ImportBoardInput{Content: []byte(board), DryRun: true})

	require.NoError(t, err)
	assert.Zero(t, out.Created)
	require.Len(t, out.Items, 5)
	assert.Equal(t, domain.KindSubtask, out.Items[3].Kind)
	assert.Zero(t, out.Items[3].ID)
	assert.Empty(t, m.Tasks())
	assert.Empty(t, m.Epics())
}

func TestImportBoard_Execute_Conflict(t *testing.T) {
	content := []byte(`
tasks:
  - name: A
    start: 2024-05-01T10:00:00
    duration: 1h
  - name: B
    start: 2024-05-01T10:30:00
    duration: 1h
  - name: C
`)

	t.Run("fails by default", func(t *testing.T) {
		m := manager.New()
		uc := NewImportBoard(m, nil)

		out, err := uc.Execute(context.Background(), ImportBoardInput{Content: content})

		require.ErrorIs(t, err, domain.ErrScheduleConflict)
		assert.Contains(t, err.Error(), "task 2")
		assert.Equal(t, 1, out.Created)
		assert.Len(t, m.Tasks(), 1)
	})

	t.Run("skips when requested", func(t *testing.T) {
		m := manager.New()
		logger := &testutil.MockLogger{}
		uc := NewImportBoard(m, logger)

		out, err := uc.Execute(context.Background(), ImportBoardInput{Content: content, SkipConflicts: true})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Created)
		assert.Equal(t, 1, out.Skipped)
		assert.True(t, out.Items[1].Skipped)
		assert.Equal(t, 2, out.Items[2].ID, "skipped item consumes no id")
		assert.Len(t, logger.ByLevel("WARN"), 1)
	})
}

func TestImportBoard_Execute_InvalidContent(t *testing.T) {
	tests := []struct {
		want    error
		name    string
		content string
	}{
		{name: "empty", content: "  \n", want: domain.ErrEmptyFile},
		{name: "no items", content: "tasks: []\n", want: domain.ErrNoItemsInFile},
		{name: "bad status", content: "tasks:\n  - name: a\n    status: later\n", want: domain.ErrInvalidStatus},
		{name: "empty name", content: "epics:\n  - name: ''\n", want: domain.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manager.New()
			uc := NewImportBoard(m, nil)

			_, err := uc.Execute(context.Background(), ImportBoardInput{Content: []byte(tt.content)})

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, m.Tasks())
		})
	}
}

func TestImportBoard_Execute_Cancelled(t *testing.T) {
	m := manager.New()
	uc := NewImportBoard(m, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, ImportBoardInput{Content: []byte(board)})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, m.Tasks())
}
