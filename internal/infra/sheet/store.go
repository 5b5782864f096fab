// Package sheet provides a CSV file-based implementation of domain.RowStore.
// The file is the backing table: row 1 is the header, data starts at row 2.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Store implements the table ports.
var (
	_ domain.RowStore         = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// table is the parsed file.
type table struct {
	header []string
	rows   [][]string
}

// Store implements domain.RowStore using a CSV file.
// Every primitive holds a table-level flock on a sidecar lock file.
type Store struct {
	loc      *time.Location
	path     string
	lockPath string
}

// New creates a new Store for the given file path. Native time values are
// written in loc (nil = UTC).
func New(path string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		loc:      loc,
		path:     path,
		lockPath: path + ".lock",
	}
}

// Path returns the table file path.
func (s *Store) Path() string {
	return s.path
}

// ReadHeader returns the header row.
func (s *Store) ReadHeader(ctx context.Context) ([]string, error) {
	var header []string
	err := s.withLock(ctx, func(t *table) error {
		header = t.header
		return nil
	})
	return header, err
}

// ReadAllRows returns every data row.
func (s *Store) ReadAllRows(ctx context.Context) ([]domain.Row, error) {
	var rows []domain.Row
	err := s.withLock(ctx, func(t *table) error {
		rows = make([]domain.Row, len(t.rows))
		for i, r := range t.rows {
			row := make(domain.Row, len(r))
			for j, cell := range r {
				row[j] = cell
			}
			rows[i] = row
		}
		return nil
	})
	return rows, err
}

// AppendRow adds a row at the end of the table.
func (s *Store) AppendRow(ctx context.Context, row domain.Row) error {
	return s.withLockWrite(ctx, func(t *table) error {
		t.rows = append(t.rows, s.format(row))
		return nil
	})
}

// WriteRow replaces the row at rowNum if it still passes check.
func (s *Store) WriteRow(ctx context.Context, rowNum int, check domain.RowCheck, row domain.Row) error {
	return s.withLockWrite(ctx, func(t *table) error {
		i, err := t.checked(rowNum, check)
		if err != nil {
			return err
		}
		t.rows[i] = s.format(row)
		return nil
	})
}

// DeleteRow removes the row at rowNum if it still passes check.
func (s *Store) DeleteRow(ctx context.Context, rowNum int, check domain.RowCheck) error {
	return s.withLockWrite(ctx, func(t *table) error {
		i, err := t.checked(rowNum, check)
		if err != nil {
			return err
		}
		t.rows = append(t.rows[:i], t.rows[i+1:]...)
		return nil
	})
}

// EnsureColumns pads the header to at least n columns.
func (s *Store) EnsureColumns(ctx context.Context, n int) error {
	var grew bool
	err := s.withLockWriteIf(ctx, func(t *table) (bool, error) {
		for len(t.header) < n {
			t.header = append(t.header, "")
			grew = true
		}
		return grew, nil
	})
	return err
}

// UpdateCells writes individual cells. Short rows are padded. Updates
// whose row no longer passes its check are returned untouched.
func (s *Store) UpdateCells(ctx context.Context, updates []domain.CellUpdate) ([]domain.CellUpdate, error) {
	if len(updates) == 0 {
		return nil, nil
	}
	var stale []domain.CellUpdate
	err := s.withLockWrite(ctx, func(t *table) error {
		stale = stale[:0]
		for _, u := range updates {
			i, err := t.checked(u.Row, u.Check)
			if errors.Is(err, domain.ErrRowShapeChanged) {
				stale = append(stale, u)
				continue
			}
			if err != nil {
				return err
			}
			if u.Col < 0 {
				return fmt.Errorf("column %d out of range", u.Col)
			}
			for len(t.rows[i]) <= u.Col {
				t.rows[i] = append(t.rows[i], "")
			}
			t.rows[i][u.Col] = s.formatCell(u.Value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}

// DeleteColumn removes a column from the header and every row.
func (s *Store) DeleteColumn(ctx context.Context, col int) error {
	return s.withLockWrite(ctx, func(t *table) error {
		if col < 0 || col >= len(t.header) {
			return fmt.Errorf("column %d out of range", col)
		}
		t.header = append(t.header[:col], t.header[col+1:]...)
		for i, r := range t.rows {
			if col < len(r) {
				t.rows[i] = append(r[:col], r[col+1:]...)
			}
		}
		return nil
	})
}

// IsInitialized checks if the table file exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Initialize creates the table with the current layout header.
// Returns ErrAlreadyInitialized if the file exists.
func (s *Store) Initialize(ctx context.Context) error {
	lock, err := s.acquireLock(ctx, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	if _, err := os.Stat(s.path); err == nil {
		return domain.ErrAlreadyInitialized
	}
	header := make([]string, 0, domain.CurrentLayout().Width())
	for _, f := range domain.CurrentLayout().Fields() {
		header = append(header, string(f))
	}
	return s.write(&table{header: header})
}

// checked returns the index of rowNum after verifying check. A checked
// row that is gone or holds another id is ErrRowShapeChanged.
func (t *table) checked(rowNum int, check domain.RowCheck) (int, error) {
	i, err := t.index(rowNum)
	if err != nil {
		if check.ID != "" {
			return 0, fmt.Errorf("%w: %s: %w", domain.ErrRowShapeChanged, check.ID, err)
		}
		return 0, err
	}
	if check.ID != "" && !holds(check, t.rows[i]) {
		return 0, fmt.Errorf("%w: %s is no longer at row %d", domain.ErrRowShapeChanged, check.ID, rowNum)
	}
	return i, nil
}

func holds(check domain.RowCheck, r []string) bool {
	return check.Col >= 0 && check.Col < len(r) && strings.TrimSpace(r[check.Col]) == check.ID
}

func (t *table) index(rowNum int) (int, error) {
	i := rowNum - domain.FirstDataRow
	if i < 0 || i >= len(t.rows) {
		return 0, fmt.Errorf("row %d out of range (table has %d data rows)", rowNum, len(t.rows))
	}
	return i, nil
}

// format converts a domain row to CSV cells.
func (s *Store) format(row domain.Row) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = s.formatCell(v)
	}
	return out
}

func (s *Store) formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case domain.Date:
		return x.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.In(s.loc).Format(domain.TimestampLayout)
	default:
		return fmt.Sprint(x)
	}
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(ctx context.Context, fn func(*table) error) error {
	lock, err := s.acquireLock(ctx, syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	t, err := s.read()
	if err != nil {
		return err
	}
	return fn(t)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(ctx context.Context, fn func(*table) error) error {
	return s.withLockWriteIf(ctx, func(t *table) (bool, error) {
		return true, fn(t)
	})
}

// withLockWriteIf writes the table only when fn reports a change.
func (s *Store) withLockWriteIf(ctx context.Context, fn func(*table) (bool, error)) error {
	lock, err := s.acquireLock(ctx, syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	t, err := s.read()
	if err != nil {
		return err
	}
	changed, err := fn(t)
	if err != nil || !changed {
		return err
	}
	return s.write(t)
}

func (s *Store) acquireLock(ctx context.Context, lockType int) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*table, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNotInitialized
		}
		return nil, fmt.Errorf("%w: read table: %w", domain.ErrStoreUnavailable, err)
	}

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse table: %w", domain.ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return &table{}, nil
	}
	return &table{header: records[0], rows: records[1:]}, nil
}

func (s *Store) write(t *table) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := w.WriteAll(t.rows); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
