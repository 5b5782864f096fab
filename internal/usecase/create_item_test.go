package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_Execute(t *testing.T) {
	// Setup
	e := newEnv(t)
	e.refs.Contexts["c1"] = domain.Context{ID: "c1", Name: "Home"}
	uc := NewCreateItem(e.store, e.refs)

	// Execute
	out, err := uc.Execute(context.Background(), CreateItemInput{Patch: domain.ItemPatch{
		Title:     domain.Ptr("Call mom"),
		ContextID: domain.Ptr("c1"),
	}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "id-1", out.Item.ID)
	assert.Equal(t, "c1", out.Item.ContextID)
	assert.Equal(t, domain.StatusInbox, out.Item.Status)
	assert.Len(t, e.rows.Rows, 1)
}

func TestCreateItem_Execute_EmailCapture(t *testing.T) {
	// Setup
	e := newEnv(t)
	uc := NewCreateItem(e.store, nil)

	// Execute
	out, err := uc.Execute(context.Background(), CreateItemInput{Patch: domain.ItemPatch{
		Title:         domain.Ptr("Re: invoice"),
		Notes:         domain.Ptr("body"),
		Status:        domain.Ptr(domain.StatusInbox),
		EmailID:       domain.Ptr("m-1"),
		EmailThreadID: domain.Ptr("t-1"),
	}})

	// Assert
	require.NoError(t, err)
	stored := e.codec.Decode(e.rows.Rows[0])
	assert.Equal(t, "m-1", stored.EmailID)
	assert.Equal(t, "t-1", stored.EmailThreadID)
	assert.Equal(t, out.Item.ID, stored.ID)
}

func TestCreateItem_Execute_UnknownReferences(t *testing.T) {
	tests := []struct {
		name  string
		patch domain.ItemPatch
		want  error
	}{
		{"unknown context", domain.ItemPatch{Title: domain.Ptr("x"), ContextID: domain.Ptr("nope")}, domain.ErrContextNotFound},
		{"unknown area", domain.ItemPatch{Title: domain.Ptr("x"), AreaID: domain.Ptr("nope")}, domain.ErrAreaNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			uc := NewCreateItem(e.store, e.refs)

			_, err := uc.Execute(context.Background(), CreateItemInput{Patch: tt.patch})

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, e.rows.Rows)
		})
	}
}

func TestCreateItem_Execute_ClearingReferenceSkipsCheck(t *testing.T) {
	e := newEnv(t)
	uc := NewCreateItem(e.store, e.refs)

	_, err := uc.Execute(context.Background(), CreateItemInput{Patch: domain.ItemPatch{
		Title:     domain.Ptr("x"),
		ContextID: domain.Ptr(""),
	}})

	assert.NoError(t, err)
}

func TestCreateItem_Execute_EmptyTitle(t *testing.T) {
	e := newEnv(t)
	uc := NewCreateItem(e.store, nil)

	_, err := uc.Execute(context.Background(), CreateItemInput{})

	assert.ErrorIs(t, err, domain.ErrEmptyTitle)
}
