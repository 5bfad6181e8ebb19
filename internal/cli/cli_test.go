package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/runoshun/kanban/internal/app"
	"github.com/stretchr/testify/require"
)

// newTestDir returns a data directory path with the global config isolated.
func newTestDir(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return filepath.Join(t.TempDir(), ".kanban")
}

// runCLI executes a fresh root command against dir and returns its output.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(app.New, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--dir", dir}, args...))
	err := root.Execute()
	return out.String(), err
}

// mustRun executes the command and fails the test on error.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, args...)
	require.NoError(t, err, "kanban %v: %s", args, out)
	return out
}

// initBoard initializes a board in a fresh data directory.
func initBoard(t *testing.T, args ...string) string {
	t.Helper()
	dir := newTestDir(t)
	mustRun(t, dir, append([]string{"init"}, args...)...)
	return dir
}
