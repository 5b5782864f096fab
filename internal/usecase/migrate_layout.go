package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// MigrateLayoutInput contains the phase to run.
type MigrateLayoutInput struct {
	Phase domain.MigrationPhase
	Batch domain.BatchOptions
}

// MigrateLayoutOutput contains the result of a phase.
// Fields are ordered to minimize memory padding.
type MigrateLayoutOutput struct {
	Phase           domain.MigrationPhase
	SnapshotRef     string // set when the table was snapshotted first
	Report          domain.BatchReport
	AlreadyComplete bool // the phase had nothing left to do
}

// MigrateLayout is the use case for moving a legacy table to the current
// layout. Phases are run one at a time and each is a no-op once done.
type MigrateLayout struct {
	rows      domain.RowStore
	snapshots domain.Snapshotter
	clock     domain.Clock
	logger    domain.Logger
	snapshot  bool
}

// NewMigrateLayout creates a new MigrateLayout use case.
// When snapshot is set the table is saved before clear and delete.
func NewMigrateLayout(rows domain.RowStore, snapshots domain.Snapshotter, clock domain.Clock, logger domain.Logger, snapshot bool) *MigrateLayout {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &MigrateLayout{
		rows:      rows,
		snapshots: snapshots,
		clock:     clock,
		logger:    logger,
		snapshot:  snapshot && snapshots != nil,
	}
}

// legacyTable is the part of the table a phase works on.
type legacyTable struct {
	header    []string
	rows      []domain.Row
	legacyCol int // projectId, -1 when the column is gone
	parentCol int
	idCol     int
}

func cellAt(row domain.Row, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return domain.CellText(row[col])
}

func (t *legacyTable) legacy(i int) string  { return cellAt(t.rows[i], t.legacyCol) }
func (t *legacyTable) current(i int) string { return cellAt(t.rows[i], t.parentCol) }

func (t *legacyTable) check(i int) domain.RowCheck {
	return domain.RowCheck{ID: cellAt(t.rows[i], t.idCol), Col: t.idCol}
}

// pendingCopies counts rows whose parentId still differs from projectId.
func (t *legacyTable) pendingCopies() int {
	n := 0
	for i := range t.rows {
		if _, ok := domain.CopyTarget(t.legacy(i), t.current(i)); ok {
			n++
		}
	}
	return n
}

// legacyValues counts rows with a non-blank projectId.
func (t *legacyTable) legacyValues() int {
	n := 0
	for i := range t.rows {
		if t.legacy(i) != "" {
			n++
		}
	}
	return n
}

func (uc *MigrateLayout) load(ctx context.Context) (*legacyTable, error) {
	header, err := uc.rows.ReadHeader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 {
		return nil, domain.ErrMissingHeader
	}
	t := &legacyTable{
		header:    header,
		legacyCol: domain.HeaderIndex(header, domain.FieldProjectID),
		parentCol: domain.HeaderIndex(header, domain.FieldParentID),
		idCol:     domain.HeaderIndex(header, domain.FieldID),
	}
	if t.legacyCol < 0 {
		return t, nil
	}
	if t.parentCol < 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, domain.FieldParentID)
	}
	if t.rows, err = uc.rows.ReadAllRows(ctx); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return t, nil
}

// Execute runs one phase.
func (uc *MigrateLayout) Execute(ctx context.Context, in MigrateLayoutInput) (*MigrateLayoutOutput, error) {
	if !in.Phase.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPhase, in.Phase)
	}
	t, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	out := &MigrateLayoutOutput{Phase: in.Phase}
	if t.legacyCol < 0 {
		uc.logger.Info("", "migrate", fmt.Sprintf("%s: no %s column, nothing to do", in.Phase, domain.FieldProjectID))
		return uc.complete(out), nil
	}

	switch in.Phase {
	case domain.PhaseCopy:
		err = uc.copyPhase(ctx, t, in.Batch, out)
	case domain.PhaseClear:
		err = uc.clearPhase(ctx, t, in.Batch, out)
	case domain.PhaseDelete:
		err = uc.deletePhase(ctx, t, out)
	}
	if err != nil {
		return nil, err
	}
	uc.logger.Info("", "migrate", fmt.Sprintf("%s: processed %d rows, %d changed, complete=%t",
		in.Phase, out.Report.Processed, out.Report.Changed, out.Report.Complete))
	return out, nil
}

func (uc *MigrateLayout) complete(out *MigrateLayoutOutput) *MigrateLayoutOutput {
	out.AlreadyComplete = true
	out.Report.Complete = true
	return out
}

// copyPhase writes projectId into parentId where they differ.
func (uc *MigrateLayout) copyPhase(ctx context.Context, t *legacyTable, opts domain.BatchOptions, out *MigrateLayoutOutput) error {
	if t.pendingCopies() == 0 {
		uc.complete(out)
		return nil
	}
	return uc.rewrite(ctx, t, opts, out, t.parentCol, func(i int) (any, bool) {
		target, ok := domain.CopyTarget(t.legacy(i), t.current(i))
		return target, ok
	})
}

// clearPhase blanks every projectId value. It refuses to run while a
// copy is still pending because the values would be lost.
func (uc *MigrateLayout) clearPhase(ctx context.Context, t *legacyTable, opts domain.BatchOptions, out *MigrateLayoutOutput) error {
	if n := t.pendingCopies(); n > 0 {
		return fmt.Errorf("%w: %d rows still need the copy phase", domain.ErrPhaseOrder, n)
	}
	if t.legacyValues() == 0 {
		uc.complete(out)
		return nil
	}
	if err := uc.takeSnapshot(ctx, t, out); err != nil {
		return err
	}
	return uc.rewrite(ctx, t, opts, out, t.legacyCol, func(i int) (any, bool) {
		return "", t.legacy(i) != ""
	})
}

// deletePhase removes the projectId column once it is empty.
func (uc *MigrateLayout) deletePhase(ctx context.Context, t *legacyTable, out *MigrateLayoutOutput) error {
	if n := t.legacyValues(); n > 0 {
		return fmt.Errorf("%w: %d rows still need the clear phase", domain.ErrPhaseOrder, n)
	}
	if err := uc.takeSnapshot(ctx, t, out); err != nil {
		return err
	}
	if err := uc.rows.DeleteColumn(ctx, t.legacyCol); err != nil {
		return fmt.Errorf("delete column %s: %w", domain.FieldProjectID, err)
	}
	out.Report = domain.BatchReport{
		Processed:  len(t.rows),
		Changed:    1,
		NextCursor: len(t.rows),
		Complete:   true,
	}
	return nil
}

// rewrite writes value(i) into col for every row where it reports a change,
// under the batch contract. Rows moved by a concurrent writer are skipped
// and reported.
func (uc *MigrateLayout) rewrite(ctx context.Context, t *legacyTable, opts domain.BatchOptions, out *MigrateLayoutOutput, col int, value func(i int) (any, bool)) error {
	var (
		pending []domain.CellUpdate
		moved   []domain.ItemError
	)
	step := func(_ context.Context, i int) (bool, error) {
		v, ok := value(i)
		if !ok {
			return false, nil
		}
		pending = append(pending, domain.CellUpdate{Row: i + domain.FirstDataRow, Col: col, Value: v, Check: t.check(i)})
		return true, nil
	}
	flush := func(ctx context.Context) error {
		if len(pending) == 0 {
			return nil
		}
		stale, err := uc.rows.UpdateCells(ctx, pending)
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
	report, err := domain.RunBatch(ctx, uc.clock, len(t.rows), opts, step, flush)
	report.Errors = append(report.Errors, moved...)
	report.Changed -= len(moved)
	out.Report = report
	if err != nil {
		return fmt.Errorf("%s phase: %w", out.Phase, err)
	}
	return nil
}

func (uc *MigrateLayout) takeSnapshot(ctx context.Context, t *legacyTable, out *MigrateLayoutOutput) error {
	if !uc.snapshot {
		return nil
	}
	name := fmt.Sprintf("%s-%d", out.Phase, uc.clock.Now().Unix())
	ref, err := uc.snapshots.Snapshot(ctx, name, t.header, t.rows)
	if err != nil {
		return fmt.Errorf("snapshot before %s: %w", out.Phase, err)
	}
	out.SnapshotRef = ref
	uc.logger.Info("", "migrate", fmt.Sprintf("snapshot saved to %s", ref))
	return nil
}
