package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	// Setup
	e := newTestEnv(t)
	e.rows.Missing = true

	// Execute
	out, err := e.runRoot("init")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Initialized gtd in "+e.c.Config.DataDir+"\n", out)
	assert.Equal(t, 1, e.init.Calls)
	assert.False(t, e.rows.Missing)
}

func TestInitCommand_AlreadyInitialized(t *testing.T) {
	e := newTestEnv(t)
	e.init.Err = domain.ErrAlreadyInitialized

	out, err := e.runRoot("init")

	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
	assert.Empty(t, out)
}

func TestConfigShowCommand(t *testing.T) {
	// Setup
	e := newTestEnv(t)
	e.manager.GlobalConfigInfo.Exists = true

	// Execute
	out, err := e.runRoot("config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "[Loaded from]")
	assert.Contains(t, out, "- /home/test/.config/gtdsheet/config.toml\n")
	assert.Contains(t, out, "- /home/test/.local/share/gtdsheet/config.toml (not found)")
	assert.Contains(t, out, "[Effective Config]")
	assert.Contains(t, out, "[scoring]")
	assert.Contains(t, out, "multiplicative")
}

func TestConfigTemplateCommand(t *testing.T) {
	e := newTestEnv(t)

	out, err := e.runRoot("config", "template")

	require.NoError(t, err)
	assert.Equal(t, domain.ConfigTemplate(), out)
}

func TestConfigInitCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantPath   string
		wantGlobal bool
	}{
		{
			name:     "data dir config",
			args:     []string{"config", "init"},
			wantPath: "/home/test/.local/share/gtdsheet/config.toml",
		},
		{
			name:       "global config",
			args:       []string{"config", "init", "--global"},
			wantPath:   "/home/test/.config/gtdsheet/config.toml",
			wantGlobal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := newTestEnv(t)

			// Execute
			out, err := e.runRoot(tt.args...)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "Created config file: "+tt.wantPath+"\n", out)
			assert.Equal(t, tt.wantGlobal, e.manager.InitGlobalCalled)
			assert.Equal(t, !tt.wantGlobal, e.manager.InitDataCalled)
		})
	}
}

func TestConfigInitCommand_Exists(t *testing.T) {
	e := newTestEnv(t)
	e.manager.InitDataErr = domain.ErrConfigExists

	_, err := e.runRoot("config", "init")

	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func writeLog(t *testing.T, dataDir string, lines ...string) {
	t.Helper()
	path := domain.LogPath(dataDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

func TestLogsCommand(t *testing.T) {
	e := newTestEnv(t)
	writeLog(t, e.c.Config.DataDir,
		"2025-06-10 09:00:00 INFO [global] init: initialized 3 parts",
		"2025-06-10 09:01:00 INFO [item-aaaa1111] create: created task",
		"2025-06-10 09:02:00 INFO [item-bbbb2222] create: created task",
		"2025-06-10 09:03:00 INFO [item-aaaa1111] complete: done",
	)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "all lines",
			args: []string{"logs"},
			want: []string{"[global]", "[item-aaaa1111] create", "[item-bbbb2222]", "[item-aaaa1111] complete"},
		},
		{
			name: "one item",
			args: []string{"logs", "aaaa1111-5678"},
			want: []string{"[item-aaaa1111] create", "[item-aaaa1111] complete"},
		},
		{
			name: "tail",
			args: []string{"logs", "-n", "1"},
			want: []string{"[item-aaaa1111] complete"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.runRoot(tt.args...)

			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, len(tt.want))
			for i, want := range tt.want {
				assert.Contains(t, lines[i], want)
			}
		})
	}
}

func TestLogsCommand_NoLogFile(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.runRoot("logs")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
