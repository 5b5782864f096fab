package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// legacyEnv seeds a legacy table:
//
//	a1: projectId P1, parentId blank  -> copied
//	a2: projectId P2, parentId X      -> legacy wins
//	a3: both blank                    -> untouched
//	a4: projectId P4, parentId P4     -> already migrated
func legacyEnv(t *testing.T) *env {
	t.Helper()
	e := newEnvWithLayout(t, domain.LegacyLayout())
	rows := []struct {
		id, legacy, parent string
	}{
		{"a1", "P1", ""},
		{"a2", "P2", "X"},
		{"a3", "", ""},
		{"a4", "P4", "P4"},
	}
	col, _ := domain.LegacyLayout().Index(domain.FieldProjectID)
	for _, r := range rows {
		e.seed(child(task(r.id, "Task "+r.id, domain.StatusNext), r.parent))
		e.rows.Rows[len(e.rows.Rows)-1][col] = r.legacy
	}
	return e
}

func (e *env) column(f domain.Field) []string {
	col := domain.HeaderIndex(e.rows.Header, f)
	out := make([]string, len(e.rows.Rows))
	for i, r := range e.rows.Rows {
		if col >= 0 && col < len(r) {
			out[i] = domain.CellText(r[col])
		}
	}
	return out
}

func TestMigrateLayout_Copy(t *testing.T) {
	// Setup
	e := legacyEnv(t)
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseCopy})

	// Assert
	require.NoError(t, err)
	assert.False(t, out.AlreadyComplete)
	assert.Equal(t, 4, out.Report.Processed)
	assert.Equal(t, 2, out.Report.Changed)
	assert.True(t, out.Report.Complete)
	assert.Equal(t, []string{"P1", "P2", "", "P4"}, e.column(domain.FieldParentID))
	assert.Equal(t, []string{"P1", "P2", "", "P4"}, e.column(domain.FieldProjectID), "copy leaves projectId alone")
	assert.Len(t, e.rows.CellUpdates, 2)

	// A second run has nothing to do.
	again, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseCopy})
	require.NoError(t, err)
	assert.True(t, again.AlreadyComplete)
	assert.Len(t, e.rows.CellUpdates, 2)
}

func TestMigrateLayout_CopyResumesFromCursor(t *testing.T) {
	e := legacyEnv(t)
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	out, err := uc.Execute(context.Background(), MigrateLayoutInput{
		Phase: domain.PhaseCopy,
		Batch: domain.BatchOptions{Cursor: 1, ChunkSize: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, out.Report.Processed)
	assert.Equal(t, 1, out.Report.Changed)
	assert.Equal(t, 4, out.Report.NextCursor)
	assert.Equal(t, []string{"", "P2", "", "P4"}, e.column(domain.FieldParentID))
}

func TestMigrateLayout_CopySkipsRowsMovedBetweenChunks(t *testing.T) {
	// Setup: another writer deletes a2 after the first chunk is flushed.
	e := legacyEnv(t)
	e.rows.OnUpdateCells = func(m *testutil.MockRowStore) {
		m.OnUpdateCells = nil
		m.Rows = append(m.Rows[:1], m.Rows[2:]...)
	}
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	// Execute
	out, err := uc.Execute(context.Background(), MigrateLayoutInput{
		Phase: domain.PhaseCopy,
		Batch: domain.BatchOptions{ChunkSize: 1},
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, out.Report.Complete)
	assert.Equal(t, 1, out.Report.Changed)
	require.Len(t, out.Report.Errors, 1)
	assert.Equal(t, "a2", out.Report.Errors[0].ID)
	assert.ErrorIs(t, out.Report.Errors[0].Err, domain.ErrRowShapeChanged)
	assert.Equal(t, []string{"P1", "", "P4"}, e.column(domain.FieldParentID))
}

func TestMigrateLayout_CopyFlushError(t *testing.T) {
	e := legacyEnv(t)
	e.rows.UpdateCellsErr = fmt.Errorf("quota exceeded")
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	_, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseCopy})

	assert.ErrorContains(t, err, "quota exceeded")
}

func TestMigrateLayout_PhaseOrder(t *testing.T) {
	tests := []struct {
		name  string
		phase domain.MigrationPhase
	}{
		{"clear before copy", domain.PhaseClear},
		{"delete before clear", domain.PhaseDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := legacyEnv(t)
			uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

			_, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: tt.phase})

			assert.ErrorIs(t, err, domain.ErrPhaseOrder)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, e.rows.CellUpdates)
		})
	}
}

func TestMigrateLayout_AllPhases(t *testing.T) {
	// Setup
	e := legacyEnv(t)
	snaps := &testutil.MockSnapshotter{}
	uc := NewMigrateLayout(e.rows, snaps, e.clock, e.logger, true)
	ctx := context.Background()

	// Execute: copy, clear
	_, err := uc.Execute(ctx, MigrateLayoutInput{Phase: domain.PhaseCopy})
	require.NoError(t, err)
	cleared, err := uc.Execute(ctx, MigrateLayoutInput{Phase: domain.PhaseClear})
	require.NoError(t, err)

	// Assert: clear
	assert.Equal(t, 3, cleared.Report.Changed)
	assert.Equal(t, []string{"", "", "", ""}, e.column(domain.FieldProjectID))
	require.Len(t, snaps.Snapshots, 1)
	assert.Equal(t, fmt.Sprintf("clear-%d", testNow.Unix()), snaps.Snapshots[0].Name)
	assert.Equal(t, "refs/gtd/snapshots/"+snaps.Snapshots[0].Name, cleared.SnapshotRef)
	assert.Equal(t, "P1", domain.CellText(snaps.Snapshots[0].Rows[0][5]), "snapshot holds the table before clearing")

	// Execute: delete
	deleted, err := uc.Execute(ctx, MigrateLayoutInput{Phase: domain.PhaseDelete})

	// Assert: delete
	require.NoError(t, err)
	assert.True(t, deleted.Report.Complete)
	assert.Len(t, snaps.Snapshots, 2)
	assert.False(t, domain.HasLegacyColumn(e.rows.Header))
	assert.Len(t, e.rows.Header, domain.CurrentLayout().Width())
	assert.Equal(t, []string{"P1", "P2", "", "P4"}, e.column(domain.FieldParentID))

	// Every phase is now a no-op.
	for _, phase := range domain.AllPhases() {
		out, err := uc.Execute(ctx, MigrateLayoutInput{Phase: phase})
		require.NoError(t, err)
		assert.True(t, out.AlreadyComplete, phase)
	}
	assert.Len(t, snaps.Snapshots, 2)
}

func TestMigrateLayout_SnapshotError(t *testing.T) {
	e := legacyEnv(t)
	snaps := &testutil.MockSnapshotter{Err: fmt.Errorf("disk full")}
	uc := NewMigrateLayout(e.rows, snaps, e.clock, e.logger, true)
	_, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseCopy})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseClear})

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []string{"P1", "P2", "", "P4"}, e.column(domain.FieldProjectID))
}

func TestMigrateLayout_CurrentLayoutIsComplete(t *testing.T) {
	e := newEnv(t)
	e.seed(task("a1", "Task", domain.StatusNext))
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	out, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: domain.PhaseCopy})

	require.NoError(t, err)
	assert.True(t, out.AlreadyComplete)
	assert.True(t, out.Report.Complete)
}

func TestMigrateLayout_InvalidPhase(t *testing.T) {
	e := legacyEnv(t)
	uc := NewMigrateLayout(e.rows, nil, e.clock, e.logger, false)

	_, err := uc.Execute(context.Background(), MigrateLayoutInput{Phase: "rename"})

	assert.ErrorIs(t, err, domain.ErrInvalidPhase)
}
