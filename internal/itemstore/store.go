// Package itemstore implements the unified item store over a row table.
package itemstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// SortOrderLockKey serializes sort order assignment across creators.
const SortOrderLockKey = "sortOrder"

// Deps holds the collaborators of a Store.
// Fields are ordered to minimize memory padding.
type Deps struct {
	Rows        domain.RowStore
	Initializer domain.StoreInitializer // nil = no lazy initialization
	Locker      domain.Locker
	Scorer      domain.Scorer
	Settings    domain.SettingsStore
	Clock       domain.Clock
	IDs         domain.IDGenerator
	Logger      domain.Logger
	Location    *time.Location // nil = UTC
	Layout      domain.Layout  // resolved once at startup
}

// Ensure Store implements domain.ItemRepository.
var _ domain.ItemRepository = (*Store)(nil)

// Store is the single persistence entry point for items.
// Every read and write goes through the layout-aware codec.
type Store struct {
	rows     domain.RowStore
	init     domain.StoreInitializer
	locker   domain.Locker
	scorer   domain.Scorer
	settings domain.SettingsStore
	clock    domain.Clock
	ids      domain.IDGenerator
	logger   domain.Logger
	codec    domain.Codec
	mu       sync.Mutex // guards codec and initDone
	initDone bool
}

// New creates a Store.
func New(d Deps) *Store {
	logger := d.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		rows:     d.Rows,
		init:     d.Initializer,
		locker:   d.Locker,
		scorer:   d.Scorer,
		settings: d.Settings,
		clock:    d.Clock,
		ids:      d.IDs,
		logger:   logger,
		codec:    domain.Codec{Layout: d.Layout, Location: loc},
	}
}

// Layout returns the layout the store reads and writes with.
func (s *Store) Layout() domain.Layout {
	return s.currentCodec().Layout
}

// Scorer returns the priority scorer.
func (s *Store) Scorer() domain.Scorer {
	return s.scorer
}

func (s *Store) currentCodec() domain.Codec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec
}

func (s *Store) now() time.Time {
	return s.clock.Now().In(s.currentCodec().Location).Truncate(time.Second)
}

// readRows reads all data rows. A missing table triggers one lazy
// initialization per Store, after which the read is retried once and the
// layout re-resolved against the fresh header.
func (s *Store) readRows(ctx context.Context) ([]domain.Row, error) {
	rows, err := s.rows.ReadAllRows(ctx)
	if err == nil || !errors.Is(err, domain.ErrStoreUnavailable) {
		return rows, err
	}

	s.mu.Lock()
	if s.init == nil || s.initDone {
		s.mu.Unlock()
		return nil, err
	}
	s.initDone = true
	s.mu.Unlock()

	s.logger.Warn("", "store", fmt.Sprintf("table unavailable, initializing: %v", err))
	if ierr := s.init.Initialize(ctx); ierr != nil {
		return nil, fmt.Errorf("initialize store: %w", errors.Join(err, ierr))
	}
	layout := ResolveLayout(ctx, s.rows, s.logger)
	s.mu.Lock()
	s.codec.Layout = layout
	s.mu.Unlock()

	return s.rows.ReadAllRows(ctx)
}

// snapshot is a decoded view of the table for one operation.
type snapshot struct {
	byID     map[string]*domain.Item
	children map[string]int // live (non-deleted) child count per parent id
	rows     []domain.Row
	items    []domain.Item
}

func (s *Store) load(ctx context.Context) (*snapshot, error) {
	rows, err := s.readRows(ctx)
	if err != nil {
		return nil, err
	}
	codec := s.currentCodec()
	snap := &snapshot{
		rows:     rows,
		items:    make([]domain.Item, len(rows)),
		byID:     make(map[string]*domain.Item, len(rows)),
		children: make(map[string]int),
	}
	for i, r := range rows {
		snap.items[i] = codec.Decode(r)
	}
	for i := range snap.items {
		item := &snap.items[i]
		if item.ID == "" {
			continue
		}
		if _, dup := snap.byID[item.ID]; !dup {
			snap.byID[item.ID] = item
		}
		if item.ParentID != "" && !item.IsDeleted() {
			snap.children[item.ParentID]++
		}
	}
	return snap, nil
}

// index returns the data row index of id, or -1.
func (snap *snapshot) index(id string) int {
	for i := range snap.items {
		if snap.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) scoreFor(snap *snapshot, item *domain.Item, settings domain.Settings, now time.Time) domain.Score {
	var parent *domain.Item
	if item.ParentID != "" {
		parent = snap.byID[item.ParentID]
	}
	return domain.ScoreItem(s.scorer, domain.ScoringInput{
		Item:       item,
		Parent:     parent,
		Settings:   settings,
		Now:        now,
		Dependents: snap.children[item.ID],
	})
}

// GetAll returns every item in table order. Soft-deleted items are
// excluded unless includeDeleted is set.
func (s *Store) GetAll(ctx context.Context, includeDeleted bool) ([]*domain.Item, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Item, 0, len(snap.items))
	for i := range snap.items {
		item := &snap.items[i]
		if item.ID == "" {
			continue
		}
		if item.IsDeleted() && !includeDeleted {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// GetByID returns the item with id, including soft-deleted items.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	item, ok := snap.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	return item, nil
}

// NextSortOrder returns a value strictly greater than the sort order of
// every non-deleted item.
func (s *Store) NextSortOrder(ctx context.Context) (int, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return nextSortOrder(snap.items), nil
}

func nextSortOrder(items []domain.Item) int {
	maxOrder := 0
	for i := range items {
		if items[i].ID != "" && !items[i].IsDeleted() && items[i].SortOrder > maxOrder {
			maxOrder = items[i].SortOrder
		}
	}
	return maxOrder + 1
}

// Create adds a new item. Unset fields take their defaults.
func (s *Store) Create(ctx context.Context, patch domain.ItemPatch) (*domain.Item, error) {
	if patch.Title == nil {
		return nil, domain.ErrEmptyTitle
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	settings, err := domain.LoadSettings(ctx, s.settings)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, SortOrderLockKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item := domain.Item{
		ID:          s.ids.NewID(),
		Status:      domain.StatusInbox,
		Type:        domain.TypeTask,
		Energy:      domain.EnergyMedium,
		Importance:  domain.DefaultImportance,
		Urgency:     domain.DefaultUrgency,
		CreatedDate: now,
		SortOrder:   nextSortOrder(snap.items),
	}
	patch.Apply(&item)
	item.ModifiedDate = now
	if item.ParentID != "" {
		if _, ok := snap.byID[item.ParentID]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrParentNotFound, item.ParentID)
		}
	}
	if item.Status == domain.StatusDone && item.CompletedDate.IsZero() {
		item.CompletedDate = now
	}
	item.Priority = s.scoreFor(snap, &item, settings, now).Value

	row := s.currentCodec().Encode(item, nil)
	if err := s.rows.EnsureColumns(ctx, len(row)); err != nil {
		return nil, fmt.Errorf("ensure columns: %w", err)
	}
	if err := s.rows.AppendRow(ctx, row); err != nil {
		return nil, fmt.Errorf("append row: %w", err)
	}
	s.logger.Info(item.ID, "create", fmt.Sprintf("created %s %q (status: %s, priority: %.2f)", item.Type, item.Title, item.Status, item.Priority))
	return &item, nil
}

// mutation edits a decoded item in place. It may reject the change.
type mutation func(snap *snapshot, item *domain.Item) error

// mutate runs a locked read-modify-write of one item's full row.
// The write carries the item's id so a concurrent insert or delete
// elsewhere cannot redirect it to another row.
func (s *Store) mutate(ctx context.Context, id, category string, fn mutation) (*domain.Item, error) {
	settings, err := domain.LoadSettings(ctx, s.settings)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := snap.index(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	before := snap.items[idx]
	item := before

	if err := fn(snap, &item); err != nil {
		return nil, err
	}

	now := s.now()
	item.ModifiedDate = now
	if item.Status == domain.StatusDone && before.Status != domain.StatusDone && item.CompletedDate.IsZero() {
		item.CompletedDate = now
	}
	// Scoring sees the updated item through the snapshot.
	snap.items[idx] = item
	item.Priority = s.scoreFor(snap, &item, settings, now).Value

	codec := s.currentCodec()
	row := codec.Encode(item, snap.rows[idx])
	if err := s.rows.EnsureColumns(ctx, len(row)); err != nil {
		return nil, fmt.Errorf("ensure columns: %w", err)
	}
	if err := s.rows.WriteRow(ctx, idx+domain.FirstDataRow, codec.Check(id), row); err != nil {
		return nil, fmt.Errorf("write row: %w", err)
	}

	if before.Status != item.Status {
		s.logger.Info(id, category, fmt.Sprintf("status %s -> %s", before.Status, item.Status))
	} else {
		s.logger.Debug(id, category, "updated")
	}
	return &item, nil
}

// Update merges the provided fields over the stored item and rewrites
// its row. Status changes must follow the state machine.
func (s *Store) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	if patch.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, "update", func(snap *snapshot, item *domain.Item) error {
		if patch.Status != nil && !item.Status.CanTransitionTo(*patch.Status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, item.Status, *patch.Status)
		}
		if patch.Type != nil && *patch.Type != item.Type && item.Status.IsTerminal() {
			return fmt.Errorf("%w: %s is %s", domain.ErrTerminalConversion, item.ID, item.Status)
		}
		if patch.ParentID != nil && *patch.ParentID != item.ParentID {
			// A blank parentId reads back through projectId, which is never written.
			if *patch.ParentID == "" && s.currentCodec().CellString(snap.rows[snap.index(item.ID)], domain.FieldProjectID) != "" {
				return fmt.Errorf("%w: %s", domain.ErrLegacyParent, item.ID)
			}
			if err := checkParent(snap, item.ID, *patch.ParentID); err != nil {
				return err
			}
		}
		patch.Apply(item)
		return nil
	})
}

// checkParent rejects a missing parent or one that descends from id.
func checkParent(snap *snapshot, id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if _, ok := snap.byID[parentID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrParentNotFound, parentID)
	}
	seen := make(map[string]bool)
	for cur := parentID; cur != ""; {
		if cur == id {
			return fmt.Errorf("%w: %s is a descendant of %s", domain.ErrCycle, parentID, id)
		}
		if seen[cur] {
			break // pre-existing cycle above; not ours to report
		}
		seen[cur] = true
		next, ok := snap.byID[cur]
		if !ok {
			break
		}
		cur = next.ParentID
	}
	return nil
}

// SoftDelete marks the item deleted.
func (s *Store) SoftDelete(ctx context.Context, id string) (*domain.Item, error) {
	return s.Update(ctx, id, domain.ItemPatch{Status: domain.Ptr(domain.StatusDeleted)})
}

// Reopen moves a done item back to next and clears its completion time.
func (s *Store) Reopen(ctx context.Context, id string) (*domain.Item, error) {
	return s.recover(ctx, id, domain.StatusDone, "reopen")
}

// Restore moves a deleted item back to the inbox.
func (s *Store) Restore(ctx context.Context, id string) (*domain.Item, error) {
	return s.recover(ctx, id, domain.StatusDeleted, "restore")
}

func (s *Store) recover(ctx context.Context, id string, from domain.Status, category string) (*domain.Item, error) {
	return s.mutate(ctx, id, category, func(_ *snapshot, item *domain.Item) error {
		if item.Status != from {
			return fmt.Errorf("%w: %s is %s, not %s", domain.ErrNotRecoverable, item.ID, item.Status, from)
		}
		target, _ := from.RecoveryTarget()
		item.Status = target
		if from == domain.StatusDone {
			item.CompletedDate = time.Time{}
		}
		return nil
	})
}

// MarkReviewed stamps lastReviewed with today.
func (s *Store) MarkReviewed(ctx context.Context, id string) (*domain.Item, error) {
	return s.mutate(ctx, id, "review", func(_ *snapshot, item *domain.Item) error {
		item.LastReviewed = domain.DateOf(s.now())
		return nil
	})
}

// HardDelete physically removes the item's row.
func (s *Store) HardDelete(ctx context.Context, id string) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := snap.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, id)
	}
	if err := s.rows.DeleteRow(ctx, idx+domain.FirstDataRow, s.currentCodec().Check(id)); err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	s.logger.Info(id, "delete", "hard deleted")
	return nil
}

// RecomputeAllPriorities rewrites the priority cell of every non-deleted
// task whose score changed under settings. Only the priority column is
// written, in chunks; the report carries the resume cursor. Each cell
// write is checked against the item id, and rows moved by a concurrent
// writer are reported as item errors.
func (s *Store) RecomputeAllPriorities(ctx context.Context, settings domain.Settings, opts domain.BatchOptions) (domain.BatchReport, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return domain.BatchReport{}, err
	}
	codec := s.currentCodec()
	col, ok := codec.Layout.Index(domain.FieldPriority)
	if !ok {
		return domain.BatchReport{}, fmt.Errorf("%w: %s", domain.ErrMissingColumn, domain.FieldPriority)
	}

	now := s.now()
	var (
		pending []domain.CellUpdate
		moved   []domain.ItemError
	)
	step := func(_ context.Context, i int) (bool, error) {
		item := &snap.items[i]
		if item.ID == "" || item.IsDeleted() || item.Type != domain.TypeTask {
			return false, nil
		}
		score := s.scoreFor(snap, item, settings, now)
		if score.Value == item.Priority {
			return false, nil
		}
		pending = append(pending, domain.CellUpdate{
			Row:   i + domain.FirstDataRow,
			Col:   col,
			Value: score.Value,
			Check: codec.Check(item.ID),
		})
		return true, nil
	}
	flush := func(ctx context.Context) error {
		if len(pending) == 0 {
			return nil
		}
		stale, err := s.rows.UpdateCells(ctx, pending)
		pending = pending[:0]
		for _, u := range stale {
			moved = append(moved, domain.ItemError{
				ID:  u.Check.ID,
				Row: u.Row,
				Err: fmt.Errorf("%w: %s is no longer at row %d", domain.ErrRowShapeChanged, u.Check.ID, u.Row),
			})
		}
		return err
	}

	report, err := domain.RunBatch(ctx, s.clock, len(snap.items), opts, step, flush)
	report.Errors = append(report.Errors, moved...)
	report.Changed -= len(moved)
	if err != nil {
		return report, fmt.Errorf("recompute priorities: %w", err)
	}
	for _, e := range moved {
		s.logger.Warn(e.ID, "recompute", e.Err.Error())
	}
	s.logger.Info("", "recompute", fmt.Sprintf("processed %d rows, %d changed, complete=%t", report.Processed, report.Changed, report.Complete))
	return report, nil
}
