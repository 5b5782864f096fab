package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, domain.LogsDirName), 0o755))
	require.NoError(t, os.WriteFile(domain.LogPath(dataDir), []byte(content), 0o644))
	return dataDir
}

const sampleLog = `[2025-06-10 09:30:00] [INFO] [item-3f2a9c1b] [create] created task "Buy milk"
[2025-06-10 09:31:00] [INFO] [global] [migrate] copy: processed 4 rows
[2025-06-10 09:32:00] [INFO] [item-3f2a9c1b] [update] updated title
[2025-06-10 09:33:00] [WARN] [item-77aa0000] [delete] orphaned 2 children
`

func TestShowLogs_Execute(t *testing.T) {
	dataDir := writeLog(t, sampleLog)

	tests := []struct {
		name string
		in   ShowLogsInput
		want string
	}{
		{
			name: "all",
			in:   ShowLogsInput{},
			want: sampleLog[:len(sampleLog)-1],
		},
		{
			name: "tail",
			in:   ShowLogsInput{Lines: 1},
			want: "[2025-06-10 09:33:00] [WARN] [item-77aa0000] [delete] orphaned 2 children",
		},
		{
			name: "one item by full id",
			in:   ShowLogsInput{ItemID: "3f2a9c1b-1111-4222-8333-944445555666"},
			want: "[2025-06-10 09:30:00] [INFO] [item-3f2a9c1b] [create] created task \"Buy milk\"\n" +
				"[2025-06-10 09:32:00] [INFO] [item-3f2a9c1b] [update] updated title",
		},
		{
			name: "one item tail",
			in:   ShowLogsInput{ItemID: "3f2a9c1b", Lines: 1},
			want: "[2025-06-10 09:32:00] [INFO] [item-3f2a9c1b] [update] updated title",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewShowLogs(dataDir).Execute(context.Background(), tt.in)

			require.NoError(t, err)
			assert.Equal(t, domain.LogPath(dataDir), out.LogPath)
			assert.Equal(t, tt.want, out.Content)
		})
	}
}

func TestShowLogs_NoLogFile(t *testing.T) {
	_, err := NewShowLogs(t.TempDir()).Execute(context.Background(), ShowLogsInput{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
