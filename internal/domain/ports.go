package domain

import (
	"context"
	"time"
)

// FirstDataRow is the sheet row number of the first item. Row 1 is the header.
const FirstDataRow = 2

// RowCheck pins a write to the row that held ID in column Col when the
// caller read the table. The zero value skips the check.
type RowCheck struct {
	ID  string
	Col int
}

// Matches reports whether row still holds the pinned id.
func (c RowCheck) Matches(row Row) bool {
	if c.ID == "" {
		return true
	}
	return c.Col >= 0 && c.Col < len(row) && cellString(row[c.Col]) == c.ID
}

// CellUpdate addresses a single cell by sheet row number (1-based) and
// zero-based column.
type CellUpdate struct {
	Value any
	Check RowCheck
	Row   int
	Col   int
}

// RowStore is the backing table. Row numbers are 1-based sheet rows. Other
// processes may insert or delete rows between a read and a write, so row
// writes carry a RowCheck that the store verifies under the same lock as
// the write. A failed check, including a row that no longer exists, is
// ErrRowShapeChanged.
type RowStore interface {
	// ReadHeader returns the header row. Returns ErrStoreUnavailable if the
	// table does not exist.
	ReadHeader(ctx context.Context) ([]string, error)

	// ReadAllRows returns every data row in order, header excluded.
	// Data row i lives at sheet row i+FirstDataRow.
	ReadAllRows(ctx context.Context) ([]Row, error)

	// AppendRow adds a row at the end of the table.
	AppendRow(ctx context.Context, row Row) error

	// WriteRow replaces the row at the given sheet row number.
	WriteRow(ctx context.Context, rowNum int, check RowCheck, row Row) error

	// DeleteRow removes the row at the given sheet row number.
	DeleteRow(ctx context.Context, rowNum int, check RowCheck) error

	// EnsureColumns widens the table to at least n columns.
	EnsureColumns(ctx context.Context, n int) error

	// UpdateCells writes individual cells in one round trip. Updates whose
	// check fails are skipped and returned as stale; the rest are written.
	UpdateCells(ctx context.Context, updates []CellUpdate) (stale []CellUpdate, err error)

	// DeleteColumn removes a column (zero-based) including its header.
	DeleteColumn(ctx context.Context, col int) error
}

// ItemRepository is the item persistence boundary used by use cases.
// Returned errors wrap the sentinels in errors.go.
type ItemRepository interface {
	GetAll(ctx context.Context, includeDeleted bool) ([]*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	Create(ctx context.Context, patch ItemPatch) (*Item, error)
	Update(ctx context.Context, id string, patch ItemPatch) (*Item, error)
	SoftDelete(ctx context.Context, id string) (*Item, error)
	HardDelete(ctx context.Context, id string) error
	Reopen(ctx context.Context, id string) (*Item, error)
	Restore(ctx context.Context, id string) (*Item, error)
	MarkReviewed(ctx context.Context, id string) (*Item, error)
	NextSortOrder(ctx context.Context) (int, error)
	RecomputeAllPriorities(ctx context.Context, settings Settings, opts BatchOptions) (BatchReport, error)
}

// StoreInitializer initializes the data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize(ctx context.Context) error
}

// SettingsStore persists user settings as string values.
type SettingsStore interface {
	// Get returns the value of key, or "" if unset.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
}

// ReferenceRepository manages the context and area lookup tables.
type ReferenceRepository interface {
	ListContexts(ctx context.Context) ([]Context, error)
	GetContext(ctx context.Context, id string) (*Context, error)
	SaveContext(ctx context.Context, c Context) error
	DeleteContext(ctx context.Context, id string) error

	ListAreas(ctx context.Context) ([]Area, error)
	GetArea(ctx context.Context, id string) (*Area, error)
	SaveArea(ctx context.Context, a Area) error
	DeleteArea(ctx context.Context, id string) error
}

// Locker provides advisory locks scoped to a key.
type Locker interface {
	// Lock acquires the lock for key, waiting until ctx is done or the
	// locker's timeout elapses. Returns ErrBusy on timeout. The returned
	// function releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Snapshotter stores a restorable copy of the table.
type Snapshotter interface {
	// Snapshot stores rows under name and returns a reference to it.
	Snapshot(ctx context.Context, name string, header []string, rows []Row) (string, error)
}

// SnapshotCatalog reads back stored snapshots.
type SnapshotCatalog interface {
	Snapshotter
	// List returns snapshot names, sorted.
	List() ([]string, error)
	// Load returns the header and rows of a snapshot. Returns ErrNotFound if missing.
	Load(name string) (header []string, rows [][]string, err error)
}

// Clock provides time operations for testability.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct {
	Location *time.Location // nil = Local
}

// Now returns the current time.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// IDGenerator assigns item, context and area ids.
type IDGenerator interface {
	NewID() string
}

// ConfigLoader loads configuration.
type ConfigLoader interface {
	// Load returns the merged configuration (data dir + global).
	Load() (*Config, error)
}

// Logger provides logging functionality.
// Item-specific logs use the item id as scope; the empty id means global.
type Logger interface {
	Info(id, category, msg string)
	Debug(id, category, msg string)
	Warn(id, category, msg string)
	Error(id, category, msg string)
	Close() error
}

// LogScope returns the scope tag written for id, e.g. "item-3f2a9c1b".
// Ids are shortened to their first eight characters.
func LogScope(id string) string {
	if id == "" {
		return "global"
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return "item-" + id
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}
func (NopLogger) Close() error                 { return nil }
