package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem() Item {
	return Item{
		ID:            "item-1",
		Title:         "Call Bob",
		Notes:         "about the contract",
		Status:        StatusNext,
		Type:          TypeTask,
		ParentID:      "proj-1",
		ContextID:     "ctx-phone",
		AreaID:        "area-work",
		DueDate:       NewDate(2025, time.June, 3),
		ScheduledDate: NewDate(2025, time.June, 1),
		CompletedDate: time.Date(2025, 6, 4, 10, 15, 30, 0, time.UTC),
		CreatedDate:   time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		ModifiedDate:  time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC),
		Energy:        EnergyHigh,
		TimeEstimate:  25,
		Importance:    4,
		Urgency:       3,
		IsStarred:     true,
		Priority:      3680.5,
		SortOrder:     7,
		LastReviewed:  NewDate(2025, time.May, 30),
		EmailID:       "msg-1",
		EmailThreadID: "thread-1",
		WaitingFor:    "Alice",
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, layout := range []Layout{LegacyLayout(), CurrentLayout()} {
		t.Run(layout.Version.String(), func(t *testing.T) {
			codec := NewCodec(layout)
			item := sampleItem()

			row := codec.Encode(item, nil)

			assert.Len(t, row, layout.Width())
			assert.Equal(t, item, codec.Decode(row))
		})
	}
}

func TestCodec_RoundTripThroughStrings(t *testing.T) {
	// Stores that only hold text hand back every cell as a string.
	codec := NewCodec(CurrentLayout())
	item := sampleItem()
	row := codec.Encode(item, nil)

	text := make(Row, len(row))
	for i, v := range row {
		text[i] = cellString(v)
	}

	assert.Equal(t, item, codec.Decode(text))
}

func TestCodec_DecodeDefaults(t *testing.T) {
	codec := NewCodec(CurrentLayout())

	item := codec.Decode(Row{"id-1", "Title"})

	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, StatusInbox, item.Status)
	assert.Equal(t, TypeTask, item.Type)
	assert.Equal(t, EnergyMedium, item.Energy)
	assert.Equal(t, DefaultImportance, item.Importance)
	assert.Equal(t, DefaultUrgency, item.Urgency)
	assert.Zero(t, item.TimeEstimate)
	assert.True(t, item.DueDate.IsZero())
	assert.True(t, item.CreatedDate.IsZero())
	assert.False(t, item.IsStarred)
}

func TestCodec_DecodeMalformed(t *testing.T) {
	layout := CurrentLayout()
	codec := NewCodec(layout)
	row := make(Row, layout.Width())
	set := func(f Field, v any) {
		col, ok := layout.Index(f)
		require.True(t, ok)
		row[col] = v
	}
	set(FieldID, "x")
	set(FieldStatus, "archived")
	set(FieldType, "epic")
	set(FieldEnergyRequired, "extreme")
	set(FieldDueDate, "soon")
	set(FieldCreatedDate, "yesterday")
	set(FieldImportance, "9")
	set(FieldUrgency, "-3")
	set(FieldPriority, "high")
	set(FieldIsStarred, "TRUE")

	item := codec.Decode(row)

	assert.Equal(t, StatusInbox, item.Status)
	assert.Equal(t, TypeTask, item.Type)
	assert.Equal(t, EnergyMedium, item.Energy)
	assert.True(t, item.DueDate.IsZero())
	assert.True(t, item.CreatedDate.IsZero())
	assert.Equal(t, MaxRating, item.Importance)
	assert.Equal(t, MinRating, item.Urgency)
	assert.Zero(t, item.Priority)
	assert.True(t, item.IsStarred)
}

func TestCodec_DecodeNativeValues(t *testing.T) {
	layout := CurrentLayout()
	codec := NewCodec(layout)
	row := make(Row, layout.Width())
	due, _ := layout.Index(FieldDueDate)
	created, _ := layout.Index(FieldCreatedDate)
	importance, _ := layout.Index(FieldImportance)
	starred, _ := layout.Index(FieldIsStarred)
	row[due] = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	row[created] = time.Date(2025, 5, 1, 8, 0, 0, 999, time.UTC)
	row[importance] = 4.0
	row[starred] = true

	item := codec.Decode(row)

	assert.Equal(t, NewDate(2025, time.June, 3), item.DueDate)
	assert.Equal(t, time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), item.CreatedDate)
	assert.Equal(t, 4, item.Importance)
	assert.True(t, item.IsStarred)
}

func TestCodec_LegacyProjectFallback(t *testing.T) {
	layout := LegacyLayout()
	codec := NewCodec(layout)
	project, _ := layout.Index(FieldProjectID)
	parent, _ := layout.Index(FieldParentID)

	row := make(Row, layout.Width())
	row[project] = "P1"
	assert.Equal(t, "P1", codec.Decode(row).ParentID)

	row[parent] = "P2"
	assert.Equal(t, "P2", codec.Decode(row).ParentID)
}

func TestCodec_EncodeNeverWritesProjectID(t *testing.T) {
	layout := LegacyLayout()
	codec := NewCodec(layout)
	project, _ := layout.Index(FieldProjectID)

	// Setup: existing row carries a legacy value
	base := codec.Encode(sampleItem(), nil)
	base[project] = "P-legacy"

	// Execute
	item := sampleItem()
	item.ParentID = "P-new"
	row := codec.Encode(item, base)

	// Assert
	assert.Equal(t, "P-legacy", row[project])
	assert.Equal(t, "", codec.Encode(item, nil)[project])
}

func TestCodec_EncodeKeepsExtraColumns(t *testing.T) {
	layout := CurrentLayout()
	codec := NewCodec(layout)
	base := make(Row, layout.Width()+2)
	base[layout.Width()+1] = "user column"

	row := codec.Encode(sampleItem(), base)

	assert.Len(t, row, layout.Width()+2)
	assert.Equal(t, "", row[layout.Width()])
	assert.Equal(t, "user column", row[layout.Width()+1])
}

func TestCodec_EncodeFormats(t *testing.T) {
	layout := CurrentLayout()
	codec := NewCodec(layout)

	row := codec.Encode(sampleItem(), nil)

	due, _ := layout.Index(FieldDueDate)
	created, _ := layout.Index(FieldCreatedDate)
	assert.Equal(t, "2025-06-03", row[due])
	assert.Equal(t, "2025-05-01T08:00:00", row[created])
}
