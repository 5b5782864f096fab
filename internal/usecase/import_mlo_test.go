package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(items []*domain.Item) map[string]*domain.Item {
	out := make(map[string]*domain.Item, len(items))
	for _, item := range items {
		out[item.Title] = item
	}
	return out
}

func TestImportMLO_Execute(t *testing.T) {
	// Setup
	e := newEnv(t)
	uc := NewImportMLO(e.store, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), ImportMLOInput{R: strings.NewReader(mloExport)})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, out.Dropped)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, 4, out.Report.Changed)
	assert.True(t, out.Report.Complete)
	assert.Empty(t, out.Report.Errors)

	all, err := e.store.GetAll(context.Background(), false)
	require.NoError(t, err)
	byTitle := titles(all)
	require.Len(t, byTitle, 4)
	home := byTitle["Home"]
	assert.Equal(t, domain.TypeProject, home.Type)
	assert.Equal(t, domain.StatusNext, home.Status)
	assert.Empty(t, home.ParentID)
	assert.Equal(t, home.ID, byTitle["Fix door"].ParentID)
	assert.Equal(t, home.ID, byTitle["Oil hinges"].ParentID)
	assert.Empty(t, byTitle["Call mom"].ParentID)
	assert.NotContains(t, byTitle, "Paint fence")
}

func TestImportMLO_UnderParent(t *testing.T) {
	e := newEnv(t)
	e.seed(project("p1", "Imported"))

	_, err := NewImportMLO(e.store, e.clock, e.logger).Execute(context.Background(), ImportMLOInput{
		R:        strings.NewReader(mloExport),
		ParentID: "p1",
	})

	require.NoError(t, err)
	all, err := e.store.GetAll(context.Background(), false)
	require.NoError(t, err)
	byTitle := titles(all)
	assert.Equal(t, "p1", byTitle["Home"].ParentID)
	assert.Equal(t, "p1", byTitle["Call mom"].ParentID)
}

func TestImportMLO_ParentNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := NewImportMLO(e.store, e.clock, e.logger).Execute(context.Background(), ImportMLOInput{
		R:        strings.NewReader(mloExport),
		ParentID: "missing",
	})

	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Empty(t, e.rows.Rows)
}

func TestImportMLO_Resume(t *testing.T) {
	// Setup: an earlier run imported Home and Fix door, then stopped
	e := newEnv(t)
	home := project("h1", "Home")
	e.seed(home, child(task("d1", "Fix door", domain.StatusNext), "h1"))
	uc := NewImportMLO(e.store, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), ImportMLOInput{
		R:     strings.NewReader(mloExport),
		Batch: domain.BatchOptions{Cursor: 2},
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, out.Report.Processed)
	assert.Equal(t, 2, out.Report.Changed)
	all, err := e.store.GetAll(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, all, 4)
	byTitle := titles(all)
	assert.Equal(t, "h1", byTitle["Oil hinges"].ParentID)
	assert.Empty(t, byTitle["Call mom"].ParentID)
}

func TestImportMLO_ResumeWithMissingParent(t *testing.T) {
	// Setup: the earlier run's items are gone
	e := newEnv(t)
	uc := NewImportMLO(e.store, e.clock, e.logger)

	// Execute
	out, err := uc.Execute(context.Background(), ImportMLOInput{
		R:     strings.NewReader(mloExport),
		Batch: domain.BatchOptions{Cursor: 2},
	})

	// Assert: Oil hinges cannot be attached, Call mom is top-level
	require.NoError(t, err)
	assert.Equal(t, 1, out.Report.Changed)
	require.Len(t, out.Report.Errors, 1)
	assert.ErrorIs(t, out.Report.Errors[0], domain.ErrParentNotFound)
	assert.Equal(t, "Oil hinges", out.Report.Errors[0].ID)
	assert.True(t, e.logger.HasLevel("WARN"))
}

func TestImportMLO_Invalid(t *testing.T) {
	e := newEnv(t)

	_, err := NewImportMLO(e.store, e.clock, e.logger).Execute(context.Background(), ImportMLOInput{
		R: strings.NewReader("not xml"),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
