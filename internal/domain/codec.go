package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one ordered record of the item table.
// Cells may be strings or native values (numbers, booleans, dates).
type Row = []any

// Codec converts between rows and items under a column layout.
type Codec struct {
	Location *time.Location // zone for timestamps and native dates (nil = UTC)
	Layout   Layout
}

// NewCodec creates a codec for the layout in UTC.
func NewCodec(layout Layout) Codec {
	return Codec{Layout: layout, Location: time.UTC}
}

func (c Codec) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Codec) cell(row Row, f Field) any {
	i, ok := c.Layout.Index(f)
	if !ok || i >= len(row) {
		return nil
	}
	return row[i]
}

// Decode converts a row into an item. It never fails: blank or malformed
// cells become the field's default.
func (c Codec) Decode(row Row) Item {
	item := Item{
		ID:            cellString(c.cell(row, FieldID)),
		Title:         cellString(c.cell(row, FieldTitle)),
		Notes:         cellString(c.cell(row, FieldNotes)),
		ParentID:      cellString(c.cell(row, FieldParentID)),
		ContextID:     cellString(c.cell(row, FieldContextID)),
		AreaID:        cellString(c.cell(row, FieldAreaID)),
		EmailID:       cellString(c.cell(row, FieldEmailID)),
		EmailThreadID: cellString(c.cell(row, FieldEmailThreadID)),
		WaitingFor:    cellString(c.cell(row, FieldWaitingFor)),
		DueDate:       c.cellDate(c.cell(row, FieldDueDate)),
		ScheduledDate: c.cellDate(c.cell(row, FieldScheduledDate)),
		LastReviewed:  c.cellDate(c.cell(row, FieldLastReviewed)),
		CompletedDate: c.cellTime(c.cell(row, FieldCompletedDate)),
		CreatedDate:   c.cellTime(c.cell(row, FieldCreatedDate)),
		ModifiedDate:  c.cellTime(c.cell(row, FieldModifiedDate)),
		TimeEstimate:  max(cellInt(c.cell(row, FieldTimeEstimate)), 0),
		Importance:    cellRating(c.cell(row, FieldImportance), DefaultImportance),
		Urgency:       cellRating(c.cell(row, FieldUrgency), DefaultUrgency),
		SortOrder:     cellInt(c.cell(row, FieldSortOrder)),
		Priority:      cellFloat(c.cell(row, FieldPriority)),
		IsStarred:     cellBool(c.cell(row, FieldIsStarred)),
		Status:        StatusInbox,
		Type:          TypeTask,
		Energy:        EnergyMedium,
	}
	if s, err := ParseStatus(cellString(c.cell(row, FieldStatus))); err == nil {
		item.Status = s
	}
	if t, err := ParseItemType(cellString(c.cell(row, FieldType))); err == nil {
		item.Type = t
	}
	if e, err := ParseEnergy(cellString(c.cell(row, FieldEnergyRequired))); err == nil {
		item.Energy = e
	}
	if item.ParentID == "" {
		item.ParentID = cellString(c.cell(row, FieldProjectID))
	}
	return item
}

// Encode converts an item into a row sized to the layout. Cells of base
// (the stored row) are carried over where the item has no field for them.
// The projectId column is never written.
func (c Codec) Encode(item Item, base Row) Row {
	row := make(Row, max(c.Layout.Width(), len(base)))
	for i := range row {
		row[i] = ""
		if i < len(base) && base[i] != nil {
			row[i] = base[i]
		}
	}

	set := func(f Field, v any) {
		if i, ok := c.Layout.Index(f); ok {
			row[i] = v
		}
	}
	set(FieldID, item.ID)
	set(FieldTitle, item.Title)
	set(FieldNotes, item.Notes)
	set(FieldStatus, string(item.Status))
	set(FieldType, string(item.Type))
	set(FieldParentID, item.ParentID)
	set(FieldContextID, item.ContextID)
	set(FieldAreaID, item.AreaID)
	set(FieldDueDate, item.DueDate.String())
	set(FieldScheduledDate, item.ScheduledDate.String())
	set(FieldCompletedDate, c.formatTime(item.CompletedDate))
	set(FieldCreatedDate, c.formatTime(item.CreatedDate))
	set(FieldModifiedDate, c.formatTime(item.ModifiedDate))
	set(FieldEnergyRequired, string(item.Energy))
	set(FieldTimeEstimate, optionalInt(item.TimeEstimate))
	set(FieldImportance, item.Importance)
	set(FieldUrgency, item.Urgency)
	set(FieldIsStarred, item.IsStarred)
	set(FieldPriority, item.Priority)
	set(FieldSortOrder, item.SortOrder)
	set(FieldLastReviewed, item.LastReviewed.String())
	set(FieldEmailID, item.EmailID)
	set(FieldEmailThreadID, item.EmailThreadID)
	set(FieldWaitingFor, item.WaitingFor)
	return row
}

// Check pins a row write to id under the layout.
func (c Codec) Check(id string) RowCheck {
	col, _ := c.Layout.Index(FieldID)
	return RowCheck{ID: id, Col: col}
}

// CellID returns the id cell of row under the layout.
func (c Codec) CellID(row Row) string {
	return cellString(c.cell(row, FieldID))
}

// CellString returns the cell of f as a string.
func (c Codec) CellString(row Row, f Field) string {
	return cellString(c.cell(row, f))
}

// CellText returns any cell value as trimmed text.
func CellText(v any) string {
	return cellString(v)
}

func (c Codec) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(c.loc()).Format(TimestampLayout)
}

func (c Codec) cellDate(v any) Date {
	switch x := v.(type) {
	case Date:
		return x
	case time.Time:
		if x.IsZero() {
			return Date{}
		}
		return DateOf(x.In(c.loc()))
	case string:
		d, err := ParseDate(x)
		if err != nil {
			return Date{}
		}
		return d
	default:
		return Date{}
	}
}

func (c Codec) cellTime(v any) time.Time {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}
		}
		return x.In(c.loc()).Truncate(time.Second)
	case Date:
		if x.IsZero() {
			return time.Time{}
		}
		return x.In(c.loc())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, c.loc()); err == nil {
				return t.In(c.loc()).Truncate(time.Second)
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(TimestampLayout)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func cellFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

func cellInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return int(cellFloat(s))
	default:
		return int(cellFloat(v))
	}
}

func cellRating(v any, def int) int {
	n := cellInt(v)
	switch {
	case n == 0:
		return def
	case n < MinRating:
		return MinRating
	case n > MaxRating:
		return MaxRating
	default:
		return n
	}
}

func cellBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "y":
			return true
		}
		return false
	default:
		return cellFloat(v) != 0
	}
}

func optionalInt(n int) any {
	if n == 0 {
		return ""
	}
	return n
}
