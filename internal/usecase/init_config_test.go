package usecase_test

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/testutil"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Execute(t *testing.T) {
	t.Run("creates data config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{Global: false})

		require.NoError(t, err)
		assert.Equal(t, "/home/test/.local/share/gtdsheet/config.toml", out.Path)
		assert.True(t, manager.InitDataCalled)
		assert.False(t, manager.InitGlobalCalled)
	})

	t.Run("creates global config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{Global: true})

		require.NoError(t, err)
		assert.Equal(t, "/home/test/.config/gtdsheet/config.toml", out.Path)
		assert.False(t, manager.InitDataCalled)
		assert.True(t, manager.InitGlobalCalled)
	})

	t.Run("returns error when config already exists", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.InitDataErr = domain.ErrConfigExists

		uc := usecase.NewInitConfig(manager)
		_, err := uc.Execute(context.Background(), usecase.InitConfigInput{})

		assert.ErrorIs(t, err, domain.ErrConfigExists)
	})
}

func TestShowConfig_Execute(t *testing.T) {
	// Setup
	manager := testutil.NewMockConfigManager()
	manager.DataConfigInfo.Exists = true
	manager.DataConfigInfo.Content = "[log]\nlevel = \"debug\"\n"
	loader := testutil.NewMockConfigLoader()
	loader.Config.Log.Level = "debug"

	// Execute
	out, err := usecase.NewShowConfig(manager, loader).Execute(context.Background(), usecase.ShowConfigInput{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", out.Effective.Log.Level)
	assert.True(t, out.DataConfig.Exists)
	assert.False(t, out.GlobalConfig.Exists)
}

func TestShowConfig_LoadError(t *testing.T) {
	loader := testutil.NewMockConfigLoader()
	loader.LoadErr = assert.AnError

	_, err := usecase.NewShowConfig(testutil.NewMockConfigManager(), loader).Execute(context.Background(), usecase.ShowConfigInput{})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestShowConfigTemplate_Execute(t *testing.T) {
	out, err := usecase.NewShowConfigTemplate().Execute(context.Background(), usecase.ShowConfigTemplateInput{})

	require.NoError(t, err)
	assert.Equal(t, domain.ConfigTemplate(), out.Template)
	assert.Contains(t, out.Template, "[scoring]")
}
