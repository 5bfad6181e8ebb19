package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Version(t *testing.T) {
	// Setup: the factory must not be called for --version
	root := NewRootCommand(nil, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})

	// Execute
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "test-version")
}

func TestNewRootCommand_HelpShowsGroups(t *testing.T) {
	root := NewRootCommand(nil, "test-version")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})

	err := root.Execute()

	require.NoError(t, err)
	help := out.String()
	assert.Contains(t, help, "Setup Commands:")
	assert.Contains(t, help, "Board Management:")
	assert.Contains(t, help, "Server:")
	for _, name := range []string{"init", "config", "migrate", "logs", "task", "epic", "subtask", "prioritized", "import", "serve"} {
		assert.Contains(t, help, name)
	}
}

func TestNewRootCommand_ConfigWarningsPrinted(t *testing.T) {
	dir := initBoard(t)
	config := "[log]\nlevel = \"debug\"\n\n[bogus]\nkey = 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(config), 0o600))

	out := mustRun(t, dir, "task", "list")

	assert.Contains(t, out, "Warning: unknown section: bogus")
	assert.Contains(t, out, "No tasks")
}
