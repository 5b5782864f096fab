// Package refstore provides a SQLite implementation of domain.ReferenceRepository
// holding the context and area lookup tables.
package refstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// Ensure Store implements the reference ports.
var (
	_ domain.ReferenceRepository = (*Store)(nil)
	_ domain.StoreInitializer    = (*Store)(nil)
)

// Store implements domain.ReferenceRepository using SQLite.
// The database is opened on first use.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// New creates a Store for the database at dbPath. Use ":memory:" in tests.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Close closes the database if it was opened.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Initialize creates the database and its tables.
// Returns ErrAlreadyInitialized if the database file exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.dbPath != ":memory:" {
		if _, err := os.Stat(s.dbPath); err == nil {
			return domain.ErrAlreadyInitialized
		}
	}
	_, err := s.conn(ctx)
	return err
}

func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	if s.dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite db: %w", domain.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS contexts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS areas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate reference db: %w", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

// ListContexts returns all contexts ordered by sort order, then name.
func (s *Store) ListContexts(ctx context.Context) ([]domain.Context, error) {
	rows, err := s.list(ctx, "contexts")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Context, len(rows))
	for i, r := range rows {
		out[i] = domain.Context(r)
	}
	return out, nil
}

// GetContext returns the context with id.
func (s *Store) GetContext(ctx context.Context, id string) (*domain.Context, error) {
	r, err := s.get(ctx, "contexts", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrContextNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	c := domain.Context(r)
	return &c, nil
}

// SaveContext inserts or replaces a context.
func (s *Store) SaveContext(ctx context.Context, c domain.Context) error {
	return s.save(ctx, "contexts", record(c))
}

// DeleteContext removes a context.
func (s *Store) DeleteContext(ctx context.Context, id string) error {
	err := s.delete(ctx, "contexts", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrContextNotFound, id)
	}
	return err
}

// ListAreas returns all areas ordered by sort order, then name.
func (s *Store) ListAreas(ctx context.Context) ([]domain.Area, error) {
	rows, err := s.list(ctx, "areas")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Area, len(rows))
	for i, r := range rows {
		out[i] = domain.Area(r)
	}
	return out, nil
}

// GetArea returns the area with id.
func (s *Store) GetArea(ctx context.Context, id string) (*domain.Area, error) {
	r, err := s.get(ctx, "areas", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAreaNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	a := domain.Area(r)
	return &a, nil
}

// SaveArea inserts or replaces an area.
func (s *Store) SaveArea(ctx context.Context, a domain.Area) error {
	return s.save(ctx, "areas", record(a))
}

// DeleteArea removes an area.
func (s *Store) DeleteArea(ctx context.Context, id string) error {
	err := s.delete(ctx, "areas", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", domain.ErrAreaNotFound, id)
	}
	return err
}

// record is the shared shape of contexts and areas.
type record struct {
	ID        string
	Name      string
	Icon      string
	SortOrder int
}

// table is always one of the two constant table names above.
func (s *Store) list(ctx context.Context, table string) ([]record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, name, icon, sort_order FROM `+table+` ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var out []record
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.ID, &r.Name, &r.Icon, &r.SortOrder); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, table, id string) (record, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return record{}, err
	}
	var r record
	err = db.QueryRowContext(ctx, `SELECT id, name, icon, sort_order FROM `+table+` WHERE id = ?`, id).
		Scan(&r.ID, &r.Name, &r.Icon, &r.SortOrder)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return record{}, fmt.Errorf("get %s: %w", table, err)
	}
	return r, err
}

func (s *Store) save(ctx context.Context, table string, r record) error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrValidation)
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name, icon, sort_order) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, icon = excluded.icon, sort_order = excluded.sort_order`,
		r.ID, r.Name, r.Icon, r.SortOrder)
	if err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table, id string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
