package usecase

import (
	"context"
	"log/slog"
	"testing"

	"github.com/runoshun/kanban/internal/infra/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, dataDir string) {
	t.Helper()
	logger := logging.New(dataDir, slog.LevelInfo)
	logger.Info(1, "task", "created one")
	logger.Info(2, "task", "created two")
	logger.Info(1, "task", "updated one")
	logger.Info(0, "store", "saved")
	require.NoError(t, logger.Close())
}

func TestShowLogs_Execute_All(t *testing.T) {
	dataDir := t.TempDir()
	writeLog(t, dataDir)

	out, err := NewShowLogs(dataDir).Execute(context.Background(), ShowLogsInput{})

	require.NoError(t, err)
	assert.Equal(t, 4, countLines(out.Content))
	assert.Contains(t, out.LogPath, "kanban.log")
}

func TestShowLogs_Execute_FilterByItem(t *testing.T) {
	dataDir := t.TempDir()
	writeLog(t, dataDir)

	out, err := NewShowLogs(dataDir).Execute(context.Background(), ShowLogsInput{ItemID: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, countLines(out.Content))
	assert.NotContains(t, out.Content, "created two")
}

func TestShowLogs_Execute_Tail(t *testing.T) {
	dataDir := t.TempDir()
	writeLog(t, dataDir)

	out, err := NewShowLogs(dataDir).Execute(context.Background(), ShowLogsInput{Lines: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, countLines(out.Content))
	assert.Contains(t, out.Content, "saved")
}

func TestShowLogs_Execute_NoFile(t *testing.T) {
	_, err := NewShowLogs(t.TempDir()).Execute(context.Background(), ShowLogsInput{})

	assert.ErrorIs(t, err, ErrNoLogFile)
}

func countLines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
