package usecase_test

import (
	"context"
	"testing"

	"github.com/runoshun/kanban/internal/domain"
	"github.com/runoshun/kanban/internal/testutil"
	"github.com/runoshun/kanban/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Execute(t *testing.T) {
	t.Run("creates local config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{})

		require.NoError(t, err)
		assert.Equal(t, "/test/.kanban/config.toml", out.Path)
		assert.True(t, manager.InitCalled)
		assert.Equal(t, domain.NewDefaultConfig(), manager.Written)
	})

	t.Run("returns error when config already exists", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.InitErr = domain.ErrConfigExists

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{})

		assert.ErrorIs(t, err, domain.ErrConfigExists)
		assert.Nil(t, out)
	})
}
