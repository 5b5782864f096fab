package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mloExport = `<?xml version="1.0" encoding="utf-8"?>
<MyLifeOrganized-xml>
  <TaskTree>
    <TaskNode>
      <Caption>Home</Caption>
      <TaskNode><Caption>Fix door</Caption></TaskNode>
      <TaskNode>
        <Caption>Paint fence</Caption>
        <CompletionDateTime>2025-01-01T10:00:00</CompletionDateTime>
      </TaskNode>
    </TaskNode>
    <TaskNode><Caption>Call mom</Caption></TaskNode>
  </TaskTree>
</MyLifeOrganized-xml>`

func doneTask(id, title string, completed time.Time) domain.Item {
	item := task(id, title, domain.StatusDone)
	item.CompletedDate = completed
	return item
}

func TestExportDoneCommand_Stdout(t *testing.T) {
	// Setup
	e := newTestEnv(t,
		doneTask("t1", "Filed taxes", time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)),
		doneTask("t2", "Paid rent", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		task("t3", "Still open", domain.StatusNext),
	)

	// Execute
	out, err := e.runRoot("export", "done", "--since", "2025-05-01")

	// Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "title,completedDate,notes", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Paid rent,"))
}

func TestExportDoneCommand_File(t *testing.T) {
	e := newTestEnv(t, doneTask("t1", "Filed taxes", time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)))
	path := filepath.Join(t.TempDir(), "done.csv")

	out, err := e.runRoot("export", "done", "-o", path)

	require.NoError(t, err)
	assert.Equal(t, "Exported 1 item(s) to "+path+"\n", out)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Filed taxes")
}

func TestExportDoneCommand_BadSince(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.runRoot("export", "done", "--since", "last week")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestImportMLOCommand(t *testing.T) {
	// Setup
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "export.xml")
	require.NoError(t, os.WriteFile(path, []byte(mloExport), 0o600))

	// Execute
	out, err := e.runRoot("import", "mlo", path)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "3 task node(s), 1 completed node(s) skipped")
	assert.Contains(t, out, "Imported: processed 3, changed 3")
	assert.Len(t, e.rows.Rows, 3)
}

func TestImportMLOCommand_Stdin(t *testing.T) {
	e := newTestEnv(t)
	cmd := newImportCommand(e.c)
	cmd.SetIn(strings.NewReader(mloExport))

	_, err := run(cmd, "mlo", "-")

	require.NoError(t, err)
	assert.Len(t, e.rows.Rows, 3)
}

func TestImportMLOCommand_MissingFile(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.runRoot("import", "mlo", filepath.Join(t.TempDir(), "nope.xml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompactMLOCommand(t *testing.T) {
	// Setup
	e := newTestEnv(t)
	cmd := newCompactCommand(e.c)
	cmd.SetIn(strings.NewReader(mloExport))
	var stderr bytes.Buffer

	// Execute
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"mlo", "-"})
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Fix door")
	assert.NotContains(t, stdout.String(), "Paint fence")
	assert.Equal(t, "Removed 1 completed node(s)\n", stderr.String())
	assert.Empty(t, e.rows.Rows)
}
