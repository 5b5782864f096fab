package domain

import "strings"

// Field is a column name in the item table.
type Field string

// Item table fields.
const (
	FieldID             Field = "id"
	FieldTitle          Field = "title"
	FieldNotes          Field = "notes"
	FieldStatus         Field = "status"
	FieldType           Field = "type"
	FieldProjectID      Field = "projectId" // legacy foreign key, superseded by parentId
	FieldParentID       Field = "parentId"
	FieldContextID      Field = "contextId"
	FieldAreaID         Field = "areaId"
	FieldDueDate        Field = "dueDate"
	FieldScheduledDate  Field = "scheduledDate"
	FieldCompletedDate  Field = "completedDate"
	FieldCreatedDate    Field = "createdDate"
	FieldModifiedDate   Field = "modifiedDate"
	FieldEnergyRequired Field = "energyRequired"
	FieldTimeEstimate   Field = "timeEstimate"
	FieldImportance     Field = "importance"
	FieldUrgency        Field = "urgency"
	FieldIsStarred      Field = "isStarred"
	FieldPriority       Field = "priority"
	FieldSortOrder      Field = "sortOrder"
	FieldLastReviewed   Field = "lastReviewed"
	FieldEmailID        Field = "emailId"
	FieldEmailThreadID  Field = "emailThreadId"
	FieldWaitingFor     Field = "waitingFor"
)

// SchemaVersion identifies a column layout of the item table.
type SchemaVersion int

const (
	SchemaLegacy  SchemaVersion = 1 // has the projectId column
	SchemaCurrent SchemaVersion = 2 // parentId only
)

// String returns the version name.
func (v SchemaVersion) String() string {
	switch v {
	case SchemaLegacy:
		return "legacy"
	case SchemaCurrent:
		return "current"
	default:
		return "unknown"
	}
}

var legacyFields = []Field{
	FieldID, FieldTitle, FieldNotes, FieldStatus, FieldType, FieldProjectID, FieldParentID,
	FieldContextID, FieldAreaID, FieldDueDate, FieldScheduledDate, FieldCompletedDate,
	FieldCreatedDate, FieldModifiedDate, FieldEnergyRequired, FieldTimeEstimate,
	FieldImportance, FieldUrgency, FieldIsStarred, FieldPriority, FieldSortOrder,
	FieldLastReviewed, FieldEmailID, FieldEmailThreadID, FieldWaitingFor,
}

// Layout maps field names to zero-based column indexes.
// Fields absent from the layout have no column.
type Layout struct {
	index   map[Field]int
	fields  []Field
	Version SchemaVersion
}

func newLayout(version SchemaVersion, fields []Field) Layout {
	index := make(map[Field]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}
	return Layout{Version: version, fields: fields, index: index}
}

// LegacyLayout returns the layout that includes the projectId column.
func LegacyLayout() Layout {
	return newLayout(SchemaLegacy, legacyFields)
}

// CurrentLayout returns the layout without the projectId column.
func CurrentLayout() Layout {
	fields := make([]Field, 0, len(legacyFields)-1)
	for _, f := range legacyFields {
		if f != FieldProjectID {
			fields = append(fields, f)
		}
	}
	return newLayout(SchemaCurrent, fields)
}

// LayoutFor returns the layout of the given version.
func LayoutFor(v SchemaVersion) Layout {
	if v == SchemaCurrent {
		return CurrentLayout()
	}
	return LegacyLayout()
}

// Index returns the column of f, or ok=false if the layout has no such column.
func (l Layout) Index(f Field) (int, bool) {
	i, ok := l.index[f]
	return i, ok
}

// Fields returns the ordered field list (the header row).
func (l Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Header returns the header row as cell values.
func (l Layout) Header() Row {
	row := make(Row, len(l.fields))
	for i, f := range l.fields {
		row[i] = string(f)
	}
	return row
}

// Width returns the number of columns in the layout.
func (l Layout) Width() int {
	return len(l.fields)
}

// HasLegacyColumn returns true if header names the projectId column.
func HasLegacyColumn(header []string) bool {
	return HeaderIndex(header, FieldProjectID) >= 0
}

// HeaderIndex returns the column of f in header, or -1.
// Matching ignores surrounding whitespace.
func HeaderIndex(header []string, f Field) int {
	for i, h := range header {
		if strings.TrimSpace(h) == string(f) {
			return i
		}
	}
	return -1
}
