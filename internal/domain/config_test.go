package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGlobalConfigPath(t *testing.T) {
	assert.Equal(t, "/home/user/.config/gtdsheet/config.toml", GlobalConfigPath("/home/user/.config"))
}

func TestDataPaths(t *testing.T) {
	dir := DataDir("/home/user/.local/share")

	assert.Equal(t, "/home/user/.local/share/gtdsheet", dir)
	assert.Equal(t, dir+"/config.toml", DataConfigPath(dir))
	assert.Equal(t, dir+"/logs/gtd.log", LogPath(dir))
	assert.Equal(t, dir+"/items.csv", ResolvePath(dir, "items.csv"))
	assert.Equal(t, "/tmp/x.csv", ResolvePath(dir, "/tmp/x.csv"))
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultTableFile, cfg.Store.Table)
	assert.Equal(t, DefaultLockTimeout, cfg.Store.LockTimeout)
	assert.Equal(t, SchemeMultiplicative, cfg.Scoring.Scheme)
	assert.Equal(t, DefaultChunkSize, cfg.Batch.ChunkSize)
	assert.True(t, cfg.Migration.Snapshot)

	w := cfg.Scoring.Additive
	assert.Equal(t, 100.0, w.Due+w.ProjectImportance+w.Context+w.Energy+w.TimeFit+w.Age+w.FanOut)
}

func TestConfig_Location(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Store.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.Store.Timezone = "Nowhere/Special"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestConfigTemplate(t *testing.T) {
	assert.Contains(t, ConfigTemplate(), "[scoring]")
}
