package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/infra/csvstore"
	"github.com/runoshun/kanban/internal/infra/jsonstore"
	"github.com/runoshun/kanban/internal/infra/sqlitestore"
	"github.com/runoshun/kanban/internal/testutil"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T) (*Container, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := filepath.Join(t.TempDir(), ".kanban")
	c, err := New(dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, dataDir
}

func TestNew_Defaults(t *testing.T) {
	c, dataDir := newContainer(t)

	assert.Equal(t, dataDir, c.Config.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "tasks.csv"), c.Config.StorePath)
	assert.Equal(t, filepath.Join(dataDir, "logs", "kanban.log"), c.Config.LogPath)
	assert.IsType(t, &csvstore.Store{}, c.Store)
	assert.Equal(t, domain.DefaultAddr, c.AppConfig.Server.Addr)
}

func TestNew_ConfiguredBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[store]\nbackend = \"SQLite\"\npath = \"board.db\"\n"), 0o600))

	c, err := New(dataDir)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.IsType(t, &sqlitestore.Store{}, c.Store)
	assert.Equal(t, filepath.Join(dataDir, "board.db"), c.Config.StorePath)
}

func TestNew_UnknownBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[store]\nbackend = \"redis\"\n"), 0o600))

	_, err := New(dataDir)

	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		want    any
		backend string
	}{
		{&csvstore.Store{}, ""},
		{&csvstore.Store{}, "csv"},
		{&jsonstore.Store{}, "json"},
		{&sqlitestore.Store{}, "sqlite"},
	}
	for _, tt := range tests {
		store, err := OpenStore(tt.backend, filepath.Join(dir, "x"))
		require.NoError(t, err)
		assert.IsType(t, tt.want, store)
	}

	_, err := OpenStore("bolt", dir)
	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}

func TestContainer_ManagerRequiresInit(t *testing.T) {
	c, dataDir := newContainer(t)

	_, err := c.Manager()
	require.ErrorIs(t, err, domain.ErrNotInitialized)

	out, err := c.InitBoardUseCase().Execute(context.Background(), usecase.InitBoardInput{DataDir: dataDir})
	require.NoError(t, err)
	assert.True(t, out.ConfigCreated)

	m, err := c.Manager()
	require.NoError(t, err)
	id, err := m.AddTask(domain.Task{Name: "first"})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	again, err := c.Manager()
	require.NoError(t, err)
	assert.Same(t, m, again)

	snap, err := c.Store.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Tasks, 1)
}

func TestContainer_MigrateStoreUseCase(t *testing.T) {
	c, dataDir := newContainer(t)
	_, err := c.InitBoardUseCase().Execute(context.Background(), usecase.InitBoardInput{DataDir: dataDir})
	require.NoError(t, err)
	m, err := c.Manager()
	require.NoError(t, err)
	_, err = m.AddEpic(domain.Task{Name: "epic"})
	require.NoError(t, err)

	uc, err := c.MigrateStoreUseCase("csv", "json")
	require.NoError(t, err)
	out, err := uc.Execute(context.Background(), usecase.MigrateStoreInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Epics)
	loaded, err := jsonstore.New(filepath.Join(dataDir, "tasks.json")).Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Epics, 1)

	_, err = c.MigrateStoreUseCase("csv", "mongo")
	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}

func TestContainer_HTTPServer(t *testing.T) {
	store := testutil.NewMockStateStore()
	_, _ = store.Initialize()
	cfg := domain.NewDefaultConfig()
	cfg.Server.Addr = "127.0.0.1:9999"
	c := NewWithDeps(Config{DataDir: t.TempDir()}, cfg, store, testutil.NewMockConfigLoader(), testutil.NewMockConfigManager(), nil)

	srv, err := c.HTTPServer("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", srv.Addr())

	srv, err = c.HTTPServer(":7000")
	require.NoError(t, err)
	assert.Equal(t, ":7000", srv.Addr())
}

func TestContainer_ImportBoardUseCase(t *testing.T) {
	store := testutil.NewMockStateStore()
	_, _ = store.Initialize()
	c := NewWithDeps(Config{}, nil, store, testutil.NewMockConfigLoader(), testutil.NewMockConfigManager(), nil)

	uc, err := c.ImportBoardUseCase()
	require.NoError(t, err)
	out, err := uc.Execute(context.Background(), usecase.ImportBoardInput{Content: []byte("tasks:\n  - name: a\n")})

	require.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Len(t, store.Saved().Tasks, 1)
}
