package cli

import (
	"encoding/json"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLegacyEnv seeds a legacy table where a1 links to p1 only through projectId.
func newLegacyEnv(t *testing.T) *testEnv {
	t.Helper()
	e := newTestEnvWithLayout(t, domain.LegacyLayout(),
		project("p1", "Website"),
		task("a1", "Write copy", domain.StatusNext),
	)
	col, _ := domain.LegacyLayout().Index(domain.FieldProjectID)
	e.rows.Rows[1][col] = "p1"
	return e
}

func TestMigrateCommand_Phases(t *testing.T) {
	// Setup
	e := newLegacyEnv(t)

	// Execute / Assert: delete before clear is refused
	_, err := e.runRoot("migrate", "delete")
	require.ErrorIs(t, err, domain.ErrPhaseOrder)

	// copy
	out, err := e.runRoot("migrate", "copy")
	require.NoError(t, err)
	assert.Contains(t, out, "Phase copy: processed 2, changed 1")
	assert.Equal(t, "p1", e.item(t, "a1").ParentID)

	// copy again is a no-op
	out, err = e.runRoot("migrate", "copy")
	require.NoError(t, err)
	assert.Equal(t, "Phase copy: nothing to do\n", out)

	// clear snapshots first
	out, err = e.runRoot("migrate", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot saved to refs/gtd/snapshots/clear-")
	require.Len(t, e.snapshots.Snapshots, 1)

	// delete removes the column
	_, err = e.runRoot("migrate", "delete")
	require.NoError(t, err)
	assert.NotContains(t, e.rows.Header, string(domain.FieldProjectID))
	require.Len(t, e.snapshots.Snapshots, 2)
}

func TestMigrateCommand_InvalidPhase(t *testing.T) {
	e := newLegacyEnv(t)

	_, err := run(newMigrateCommand(e.c), "rollback")

	assert.ErrorIs(t, err, domain.ErrInvalidPhase)
}

func TestMigrateCommand_CurrentLayout(t *testing.T) {
	e := newTestEnv(t, task("t1", "Fine", domain.StatusNext))

	out, err := run(newMigrateCommand(e.c), "copy")

	require.NoError(t, err)
	assert.Equal(t, "Phase copy: nothing to do\n", out)
}

func TestMigrateCommand_JSON(t *testing.T) {
	e := newLegacyEnv(t)

	out, err := run(newMigrateCommand(e.c), "copy", "--json")

	require.NoError(t, err)
	var res struct {
		Phase string `json:"phase"`
		batchResult
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "copy", res.Phase)
	assert.True(t, res.Success)
	assert.True(t, res.Complete)
	assert.Equal(t, 1, res.Changed)
}

// =============================================================================
// Snapshot Command Tests
// =============================================================================

func TestSnapshotCommand_ListAndShow(t *testing.T) {
	// Setup
	e := newTestEnv(t)
	e.snapshots.Snapshots = []testutil.Snapshot{
		{
			Name:   "clear-1749547800",
			Header: []string{"id", "title", "projectId"},
			Rows:   []domain.Row{{"a1", "Write copy", "p1"}, {"a2", "Edit", ""}},
		},
	}

	// Execute / Assert
	out, err := e.runRoot("snapshot", "list")
	require.NoError(t, err)
	assert.Equal(t, "clear-1749547800\n", out)

	out, err = e.runRoot("snapshot", "show", "clear-1749547800", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "projectId")
	assert.Contains(t, out, "Write copy")
	assert.NotContains(t, out, "Edit")
	assert.Contains(t, out, "... 1 more rows")

	_, err = e.runRoot("snapshot", "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSnapshotCommand_Empty(t *testing.T) {
	e := newTestEnv(t)

	out, err := run(newSnapshotCommand(e.c), "list")

	require.NoError(t, err)
	assert.Equal(t, "No snapshots.\n", out)
}
