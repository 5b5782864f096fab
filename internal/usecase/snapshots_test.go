package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshots(t *testing.T) {
	// Setup
	catalog := &testutil.MockSnapshotter{}
	_, err := catalog.Snapshot(context.Background(), "clear-1", []string{"id", "projectId"}, []domain.Row{{"a1", "P1"}})
	require.NoError(t, err)
	uc := NewSnapshots(catalog)

	// Execute
	list, err := uc.List(context.Background())
	require.NoError(t, err)
	shown, err := uc.Show(context.Background(), ShowSnapshotInput{Name: "clear-1"})
	require.NoError(t, err)
	_, missingErr := uc.Show(context.Background(), ShowSnapshotInput{Name: "nope"})

	// Assert
	assert.Equal(t, []string{"clear-1"}, list.Names)
	assert.Equal(t, []string{"id", "projectId"}, shown.Header)
	assert.Equal(t, [][]string{{"a1", "P1"}}, shown.Rows)
	assert.ErrorIs(t, missingErr, domain.ErrNotFound)
}
