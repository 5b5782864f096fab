// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockRowStore is an in-memory domain.RowStore.
// Fields are ordered to minimize memory padding.
type MockRowStore struct {
	// OnReadAll runs after every ReadAllRows, before returning.
	// Tests use it to simulate a concurrent writer.
	OnReadAll      func(m *MockRowStore)
	// OnUpdateCells runs after every successful UpdateCells.
	OnUpdateCells  func(m *MockRowStore)
	ReadErr        error
	AppendErr      error
	WriteErr       error
	UpdateCellsErr error
	Header         []string
	Rows           []domain.Row
	CellUpdates    []domain.CellUpdate // every cell written through UpdateCells
	ReadAllCount   int
	WriteCount     int
	Missing        bool // table does not exist
}

// NewMockRowStore creates a table with the given layout's header.
func NewMockRowStore(layout domain.Layout) *MockRowStore {
	header := make([]string, 0, layout.Width())
	for _, f := range layout.Fields() {
		header = append(header, string(f))
	}
	return &MockRowStore{Header: header}
}

// AddItem appends an encoded item.
func (m *MockRowStore) AddItem(codec domain.Codec, item domain.Item) {
	m.Rows = append(m.Rows, codec.Encode(item, nil))
}

// ReadHeader returns the header row.
func (m *MockRowStore) ReadHeader(_ context.Context) ([]string, error) {
	if m.Missing {
		return nil, domain.ErrNotInitialized
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]string(nil), m.Header...), nil
}

// ReadAllRows returns copies of all data rows.
func (m *MockRowStore) ReadAllRows(_ context.Context) ([]domain.Row, error) {
	if m.Missing {
		return nil, domain.ErrNotInitialized
	}
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	m.ReadAllCount++
	rows := make([]domain.Row, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = append(domain.Row(nil), r...)
	}
	if m.OnReadAll != nil {
		m.OnReadAll(m)
	}
	return rows, nil
}

// AppendRow appends a row.
func (m *MockRowStore) AppendRow(_ context.Context, row domain.Row) error {
	if m.Missing {
		return domain.ErrNotInitialized
	}
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Rows = append(m.Rows, append(domain.Row(nil), row...))
	return nil
}

func (m *MockRowStore) index(rowNum int) (int, error) {
	i := rowNum - domain.FirstDataRow
	if i < 0 || i >= len(m.Rows) {
		return 0, fmt.Errorf("row %d out of range", rowNum)
	}
	return i, nil
}

func (m *MockRowStore) checked(rowNum int, check domain.RowCheck) (int, error) {
	i, err := m.index(rowNum)
	if err != nil {
		if check.ID != "" {
			return 0, fmt.Errorf("%w: %s: %w", domain.ErrRowShapeChanged, check.ID, err)
		}
		return 0, err
	}
	if !check.Matches(m.Rows[i]) {
		return 0, fmt.Errorf("%w: %s is no longer at row %d", domain.ErrRowShapeChanged, check.ID, rowNum)
	}
	return i, nil
}

// WriteRow replaces a row if it still passes check.
func (m *MockRowStore) WriteRow(_ context.Context, rowNum int, check domain.RowCheck, row domain.Row) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	i, err := m.checked(rowNum, check)
	if err != nil {
		return err
	}
	m.WriteCount++
	m.Rows[i] = append(domain.Row(nil), row...)
	return nil
}

// DeleteRow removes a row if it still passes check.
func (m *MockRowStore) DeleteRow(_ context.Context, rowNum int, check domain.RowCheck) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	i, err := m.checked(rowNum, check)
	if err != nil {
		return err
	}
	m.Rows = append(m.Rows[:i], m.Rows[i+1:]...)
	return nil
}

// EnsureColumns pads the header to n columns.
func (m *MockRowStore) EnsureColumns(_ context.Context, n int) error {
	for len(m.Header) < n {
		m.Header = append(m.Header, "")
	}
	return nil
}

// UpdateCells writes individual cells and returns those whose row no
// longer passes its check.
func (m *MockRowStore) UpdateCells(_ context.Context, updates []domain.CellUpdate) ([]domain.CellUpdate, error) {
	if m.UpdateCellsErr != nil {
		return nil, m.UpdateCellsErr
	}
	var stale []domain.CellUpdate
	for _, u := range updates {
		i, err := m.checked(u.Row, u.Check)
		if errors.Is(err, domain.ErrRowShapeChanged) {
			stale = append(stale, u)
			continue
		}
		if err != nil {
			return nil, err
		}
		for len(m.Rows[i]) <= u.Col {
			m.Rows[i] = append(m.Rows[i], "")
		}
		m.Rows[i][u.Col] = u.Value
		m.CellUpdates = append(m.CellUpdates, u)
	}
	if m.OnUpdateCells != nil {
		m.OnUpdateCells(m)
	}
	return stale, nil
}

// DeleteColumn removes a column from the header and every row.
func (m *MockRowStore) DeleteColumn(_ context.Context, col int) error {
	if col < 0 || col >= len(m.Header) {
		return fmt.Errorf("column %d out of range", col)
	}
	m.Header = append(m.Header[:col], m.Header[col+1:]...)
	for i, r := range m.Rows {
		if col < len(r) {
			m.Rows[i] = append(r[:col], r[col+1:]...)
		}
	}
	return nil
}

// Cell returns the cell of field f in data row i under layout.
func (m *MockRowStore) Cell(layout domain.Layout, i int, f domain.Field) any {
	col, ok := layout.Index(f)
	if !ok || col >= len(m.Rows[i]) {
		return nil
	}
	return m.Rows[i][col]
}

// MockStoreInitializer is a test double for domain.StoreInitializer.
// Initialize creates the table in Store with the current layout.
type MockStoreInitializer struct {
	Store *MockRowStore
	Err   error
	Calls int
}

// Initialize creates the table.
func (m *MockStoreInitializer) Initialize(_ context.Context) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	if m.Store != nil && m.Store.Missing {
		m.Store.Missing = false
		m.Store.Header = NewMockRowStore(domain.CurrentLayout()).Header
	}
	return nil
}

// MockSettingsStore is an in-memory domain.SettingsStore.
type MockSettingsStore struct {
	Values map[string]string
	GetErr error
	SetErr error
}

// NewMockSettingsStore creates an empty settings store.
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{Values: make(map[string]string)}
}

// Get returns the value of key.
func (m *MockSettingsStore) Get(_ context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	return m.Values[key], nil
}

// Set stores a value.
func (m *MockSettingsStore) Set(_ context.Context, key, value string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = value
	return nil
}

// MockReferenceRepository is an in-memory domain.ReferenceRepository.
type MockReferenceRepository struct {
	Contexts map[string]domain.Context
	Areas    map[string]domain.Area
	ListErr  error
}

// NewMockReferenceRepository creates an empty repository.
func NewMockReferenceRepository() *MockReferenceRepository {
	return &MockReferenceRepository{
		Contexts: make(map[string]domain.Context),
		Areas:    make(map[string]domain.Area),
	}
}

// ListContexts returns contexts ordered by sortOrder then name.
func (m *MockReferenceRepository) ListContexts(_ context.Context) ([]domain.Context, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Context, 0, len(m.Contexts))
	for _, c := range m.Contexts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetContext returns a context by id.
func (m *MockReferenceRepository) GetContext(_ context.Context, id string) (*domain.Context, error) {
	c, ok := m.Contexts[id]
	if !ok {
		return nil, domain.ErrContextNotFound
	}
	return &c, nil
}

// SaveContext stores a context.
func (m *MockReferenceRepository) SaveContext(_ context.Context, c domain.Context) error {
	m.Contexts[c.ID] = c
	return nil
}

// DeleteContext removes a context.
func (m *MockReferenceRepository) DeleteContext(_ context.Context, id string) error {
	if _, ok := m.Contexts[id]; !ok {
		return domain.ErrContextNotFound
	}
	delete(m.Contexts, id)
	return nil
}

// ListAreas returns areas ordered by sortOrder then name.
func (m *MockReferenceRepository) ListAreas(_ context.Context) ([]domain.Area, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.Area, 0, len(m.Areas))
	for _, a := range m.Areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetArea returns an area by id.
func (m *MockReferenceRepository) GetArea(_ context.Context, id string) (*domain.Area, error) {
	a, ok := m.Areas[id]
	if !ok {
		return nil, domain.ErrAreaNotFound
	}
	return &a, nil
}

// SaveArea stores an area.
func (m *MockReferenceRepository) SaveArea(_ context.Context, a domain.Area) error {
	m.Areas[a.ID] = a
	return nil
}

// DeleteArea removes an area.
func (m *MockReferenceRepository) DeleteArea(_ context.Context, id string) error {
	if _, ok := m.Areas[id]; !ok {
		return domain.ErrAreaNotFound
	}
	delete(m.Areas, id)
	return nil
}

// MockIDGenerator returns sequential ids: id-1, id-2, ...
type MockIDGenerator struct {
	Prefix string
	n      int
}

// NewID returns the next id.
func (m *MockIDGenerator) NewID() string {
	m.n++
	prefix := m.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, m.n)
}

// MockLocker is a test double for domain.Locker.
// Keys listed in Busy fail with ErrBusy.
type MockLocker struct {
	Busy     map[string]bool
	Acquired []string
	Released int
}

// Lock acquires key unless it is marked busy.
func (m *MockLocker) Lock(_ context.Context, key string) (func(), error) {
	if m.Busy[key] {
		return nil, fmt.Errorf("lock %s: %w", key, domain.ErrBusy)
	}
	m.Acquired = append(m.Acquired, key)
	var once sync.Once
	return func() { once.Do(func() { m.Released++ }) }, nil
}

// LogEntry is one recorded log call.
type LogEntry struct {
	Level    string
	ID       string
	Category string
	Msg      string
}

// MockLogger records log calls.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level, id, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, ID: id, Category: category, Msg: msg})
}

// Info records an info entry.
func (m *MockLogger) Info(id, category, msg string) { m.add("INFO", id, category, msg) }

// Debug records a debug entry.
func (m *MockLogger) Debug(id, category, msg string) { m.add("DEBUG", id, category, msg) }

// Warn records a warn entry.
func (m *MockLogger) Warn(id, category, msg string) { m.add("WARN", id, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(id, category, msg string) { m.add("ERROR", id, category, msg) }

// Close is a no-op.
func (m *MockLogger) Close() error { return nil }

// HasLevel returns true if any entry was logged at level.
func (m *MockLogger) HasLevel(level string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Level == level {
			return true
		}
	}
	return false
}

// Snapshot is one recorded snapshot.
type Snapshot struct {
	Name   string
	Header []string
	Rows   []domain.Row
}

// MockSnapshotter records snapshots.
type MockSnapshotter struct {
	Err       error
	Snapshots []Snapshot
}

// Ensure MockSnapshotter implements domain.SnapshotCatalog.
var _ domain.SnapshotCatalog = (*MockSnapshotter)(nil)

// List returns the recorded names in order.
func (m *MockSnapshotter) List() ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	names := make([]string, len(m.Snapshots))
	for i, s := range m.Snapshots {
		names[i] = s.Name
	}
	return names, nil
}

// Load returns a recorded snapshot with cells as text.
func (m *MockSnapshotter) Load(name string) ([]string, [][]string, error) {
	for _, s := range m.Snapshots {
		if s.Name != name {
			continue
		}
		rows := make([][]string, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = make([]string, len(r))
			for j, v := range r {
				rows[i][j] = domain.CellText(v)
			}
		}
		return s.Header, rows, nil
	}
	return nil, nil, fmt.Errorf("snapshot %q: %w", name, domain.ErrNotFound)
}

// Snapshot records the table.
func (m *MockSnapshotter) Snapshot(_ context.Context, name string, header []string, rows []domain.Row) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Snapshots = append(m.Snapshots, Snapshot{Name: name, Header: header, Rows: rows})
	return "refs/gtd/snapshots/" + name, nil
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config  *domain.Config
	LoadErr error
}

// NewMockConfigLoader creates a loader returning the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitDataErr      error
	InitGlobalErr    error
	DataConfigInfo   domain.ConfigInfo
	GlobalConfigInfo domain.ConfigInfo
	InitDataCalled   bool
	InitGlobalCalled bool
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// NewMockConfigManager creates a new MockConfigManager.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		DataConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.local/share/gtdsheet/config.toml",
		},
		GlobalConfigInfo: domain.ConfigInfo{
			Path: "/home/test/.config/gtdsheet/config.toml",
		},
	}
}

// GetDataConfigInfo returns the configured data config info.
func (m *MockConfigManager) GetDataConfigInfo() domain.ConfigInfo {
	return m.DataConfigInfo
}

// GetGlobalConfigInfo returns the configured global config info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalConfigInfo
}

// InitDataConfig records the call and returns the configured error.
func (m *MockConfigManager) InitDataConfig() error {
	m.InitDataCalled = true
	return m.InitDataErr
}

// InitGlobalConfig records the call and returns the configured error.
func (m *MockConfigManager) InitGlobalConfig() error {
	m.InitGlobalCalled = true
	return m.InitGlobalErr
}
