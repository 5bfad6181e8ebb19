package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_LocalConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		dataDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		writeConfig(t, dataDir, configContent)

		info := NewManagerWithGlobalDir(dataDir, "").LocalConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		dataDir := t.TempDir()

		info := NewManagerWithGlobalDir(dataDir, "").LocalConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GlobalConfigInfo(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, "[server]\naddr = \":1\"")

	info := NewManagerWithGlobalDir("", globalDir).GlobalConfigInfo()
	assert.True(t, info.Exists)
	assert.Equal(t, filepath.Join(globalDir, domain.ConfigFileName), info.Path)

	assert.Equal(t, domain.ConfigInfo{}, NewManagerWithGlobalDir("", "").GlobalConfigInfo())
}

func TestManager_InitLocalConfig(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), ".kanban")
	m := NewManagerWithGlobalDir(dataDir, "")

	cfg := domain.NewDefaultConfig()
	cfg.Store.Backend = domain.StoreJSON
	path, err := m.InitLocalConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# kanban configuration")

	// The written file loads back to the same settings.
	loaded, err := NewLoaderWithGlobalDir(dataDir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreJSON, loaded.Store.Backend)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.Log, loaded.Log)
	assert.Empty(t, loaded.Warnings)

	// Second init does not overwrite.
	_, err = m.InitLocalConfig(domain.NewDefaultConfig())
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}
