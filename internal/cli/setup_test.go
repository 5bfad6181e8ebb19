package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	dir := newTestDir(t)

	// Execute
	out := mustRun(t, dir, "init")

	// Assert
	assert.Contains(t, out, "Initialized kanban in")
	assert.Contains(t, out, "(csv store)")
	assert.Contains(t, out, "Created config file:")
	assert.FileExists(t, filepath.Join(dir, "tasks.csv"))
	assert.FileExists(t, filepath.Join(dir, "config.toml"))
	assert.DirExists(t, filepath.Join(dir, "logs"))

	// Running again is a no-op
	out = mustRun(t, dir, "init")
	assert.Contains(t, out, "Already initialized")
	assert.NotContains(t, out, "Created config file")
}

func TestInitCommand_Backend(t *testing.T) {
	dir := newTestDir(t)

	out := mustRun(t, dir, "init", "--backend", "sqlite")

	assert.Contains(t, out, "(sqlite store)")
	assert.FileExists(t, filepath.Join(dir, "tasks.db"))
	config, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Regexp(t, `backend = .sqlite.`, string(config))

	// The new config selects the SQLite store
	mustRun(t, dir, "task", "add", "--name", "t")
	assert.Contains(t, mustRun(t, dir, "task", "list"), "t")
}

func TestInitCommand_UnknownBackend(t *testing.T) {
	dir := newTestDir(t)

	_, err := runCLI(t, dir, "init", "--backend", "redis")

	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}

func TestConfigCommand_ShowsSourcesAndEffectiveConfig(t *testing.T) {
	dir := initBoard(t)

	out := mustRun(t, dir, "config")

	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, "(not found)", "global config is absent")
	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "[server]")
	assert.Regexp(t, `backend = .csv.`, out)
}

func TestConfigInitCommand(t *testing.T) {
	dir := newTestDir(t)

	out := mustRun(t, dir, "config", "init")
	assert.Contains(t, out, "Created config file:")
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	_, err := runCLI(t, dir, "config", "init")
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestLogsCommand(t *testing.T) {
	dir := initBoard(t)
	mustRun(t, dir, "task", "add", "--name", "first")
	mustRun(t, dir, "task", "add", "--name", "second")
	mustRun(t, dir, "task", "rm", "1")

	// All entries
	out := mustRun(t, dir, "logs")
	assert.Contains(t, out, `created: "first"`)
	assert.Contains(t, out, `created: "second"`)

	// Filtered by item
	out = mustRun(t, dir, "logs", "--item", "1")
	assert.Contains(t, out, "[item-1] [task] removed")
	assert.NotContains(t, out, "second")

	// Tail
	out = mustRun(t, dir, "logs", "-n", "1")
	assert.Len(t, splitLines(out), 1)
	assert.Contains(t, out, "removed")
}

func TestLogsCommand_NoLogFile(t *testing.T) {
	dir := newTestDir(t)

	_, err := runCLI(t, dir, "logs")

	assert.ErrorIs(t, err, usecase.ErrNoLogFile)
}

func TestMigrateCommand(t *testing.T) {
	dir := initBoard(t)
	mustRun(t, dir, "task", "add", "--name", "t", "--start", "2024-05-01T10:00:00", "--duration", "30m")
	mustRun(t, dir, "epic", "add", "--name", "e")
	mustRun(t, dir, "subtask", "add", "--epic", "2", "--name", "s")

	// Execute
	out := mustRun(t, dir, "migrate", "--to", "json")

	// Assert
	assert.Equal(t, "Migrated 1 task(s), 1 epic(s), 1 subtask(s) from csv to json\n", out)
	assert.FileExists(t, filepath.Join(dir, "tasks.json"))

	// A second run refuses to overwrite
	_, err := runCLI(t, dir, "migrate", "--to", "json")
	require.ErrorIs(t, err, domain.ErrStoreNotEmpty)
	mustRun(t, dir, "migrate", "--to", "json", "--force")
}

func TestMigrateCommand_SameBackend(t *testing.T) {
	dir := initBoard(t)

	_, err := runCLI(t, dir, "migrate", "--to", "csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestImportCommand(t *testing.T) {
	dir := initBoard(t)
	board := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(board, []byte(`tasks:
  - name: Write report
    start: 2024-05-01T10:00:00
    duration: 30m
  - name: Clashing
    start: 2024-05-01T10:15:00
    duration: 30m
epics:
  - name: Release
    subtasks:
      - name: Tag
        status: done
`), 0o600))

	// Dry run creates nothing
	out := mustRun(t, dir, "import", "--from", board, "--dry-run")
	assert.Contains(t, out, "Would create task: Write report")
	assert.Contains(t, out, "4 item(s) would be created")
	assert.Equal(t, "No tasks\n", mustRun(t, dir, "task", "list"))

	// Without --skip-conflicts the clash aborts the import
	_, err := runCLI(t, dir, "import", "--from", board)
	require.ErrorIs(t, err, domain.ErrScheduleConflict)

	mustRun(t, dir, "task", "clear", "-y")
	out = mustRun(t, dir, "import", "--from", board, "--skip-conflicts")
	assert.Contains(t, out, "Skipped task: Clashing (schedule conflict)")
	assert.Contains(t, out, "Created epic")
	assert.Contains(t, out, "Created 3 item(s), skipped 1")

	out = mustRun(t, dir, "epic", "list")
	assert.Contains(t, out, "Release")
	assert.Contains(t, out, "Done")
}

func TestImportCommand_MissingFile(t *testing.T) {
	dir := initBoard(t)

	_, err := runCLI(t, dir, "import", "--from", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
