package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayouts(t *testing.T) {
	legacy := LegacyLayout()
	current := CurrentLayout()

	assert.Equal(t, SchemaLegacy, legacy.Version)
	assert.Equal(t, SchemaCurrent, current.Version)
	assert.Equal(t, current.Width()+1, legacy.Width())

	col, ok := legacy.Index(FieldProjectID)
	assert.True(t, ok)
	assert.Equal(t, 5, col)

	_, ok = current.Index(FieldProjectID)
	assert.False(t, ok)

	col, ok = current.Index(FieldParentID)
	assert.True(t, ok)
	assert.Equal(t, 5, col)

	col, ok = legacy.Index(FieldWaitingFor)
	assert.True(t, ok)
	assert.Equal(t, legacy.Width()-1, col)
}

func TestLayout_Header(t *testing.T) {
	header := CurrentLayout().Header()

	assert.Equal(t, "id", header[0])
	assert.Equal(t, "waitingFor", header[len(header)-1])
	assert.NotContains(t, header, "projectId")
}

func TestHasLegacyColumn(t *testing.T) {
	assert.True(t, HasLegacyColumn([]string{"id", "title", " projectId "}))
	assert.False(t, HasLegacyColumn([]string{"id", "title", "parentId"}))
	assert.False(t, HasLegacyColumn(nil))
}
