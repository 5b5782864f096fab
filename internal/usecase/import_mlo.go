package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ImportMLOInput contains the parameters for importing a MyLifeOrganized export.
type ImportMLOInput struct {
	R        io.Reader
	ParentID string // Attach top-level nodes under this item (empty = root)
	Batch    domain.BatchOptions
}

// ImportMLOOutput contains the import report.
type ImportMLOOutput struct {
	Report  domain.BatchReport
	Dropped int // completed or dropped nodes skipped, subtrees included
	Total   int // task nodes left after compaction
}

// ImportMLO is the use case for importing open MLO tasks as items.
// Closed nodes are compacted away first; the rest keep their hierarchy.
type ImportMLO struct {
	items  domain.ItemRepository
	clock  domain.Clock
	logger domain.Logger
}

// NewImportMLO creates a new ImportMLO use case.
func NewImportMLO(items domain.ItemRepository, clock domain.Clock, logger domain.Logger) *ImportMLO {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &ImportMLO{
		items:  items,
		clock:  clock,
		logger: logger,
	}
}

// Execute imports nodes from the batch cursor on. When resuming, nodes
// before the cursor are matched to existing items by parent and title so
// their children attach to the items created by the earlier run.
func (uc *ImportMLO) Execute(ctx context.Context, in ImportMLOInput) (*ImportMLOOutput, error) {
	root, err := domain.ParseMLO(in.R)
	if err != nil {
		return nil, err
	}
	tree, err := root.TaskTree()
	if err != nil {
		return nil, err
	}
	dropped := tree.Compact()
	tasks := tree.Flatten()

	if in.ParentID != "" {
		if _, err := uc.items.GetByID(ctx, in.ParentID); err != nil {
			return nil, fmt.Errorf("import parent: %w", err)
		}
	}

	ids := make([]string, len(tasks))
	if in.Batch.Cursor > 0 {
		if err := uc.resolveImported(ctx, tasks, ids, in); err != nil {
			return nil, err
		}
	}

	step := func(ctx context.Context, i int) (bool, error) {
		task := tasks[i]
		parentID := in.ParentID
		if task.Parent >= 0 {
			parentID = ids[task.Parent]
			if parentID == "" {
				return false, domain.ItemError{Row: i, ID: *task.Patch.Title, Err: fmt.Errorf("%w: parent was not imported", domain.ErrParentNotFound)}
			}
		}
		patch := task.Patch
		if parentID != "" {
			patch.ParentID = domain.Ptr(parentID)
		}
		item, err := uc.items.Create(ctx, patch)
		if err != nil {
			return false, domain.ItemError{Row: i, ID: *task.Patch.Title, Err: err}
		}
		ids[i] = item.ID
		return true, nil
	}

	report, err := domain.RunBatch(ctx, uc.clock, len(tasks), in.Batch, step, nil)
	if err != nil {
		return nil, fmt.Errorf("import MLO: %w", err)
	}
	for _, e := range report.Errors {
		uc.logger.Warn("", "import", e.Error())
	}
	uc.logger.Info("", "import", fmt.Sprintf("imported %d of %d nodes (%d closed nodes dropped), complete=%t",
		report.Changed, len(tasks), dropped, report.Complete))
	return &ImportMLOOutput{Report: report, Dropped: dropped, Total: len(tasks)}, nil
}

func (uc *ImportMLO) resolveImported(ctx context.Context, tasks []domain.MLOTask, ids []string, in ImportMLOInput) error {
	all, err := uc.items.GetAll(ctx, false)
	if err != nil {
		return err
	}
	type key struct{ parent, title string }
	existing := make(map[key]string, len(all))
	for _, item := range all {
		k := key{item.ParentID, item.Title}
		if _, dup := existing[k]; !dup {
			existing[k] = item.ID
		}
	}
	for i := 0; i < in.Batch.Cursor && i < len(tasks); i++ {
		parent := in.ParentID
		if tasks[i].Parent >= 0 {
			parent = ids[tasks[i].Parent]
		}
		ids[i] = existing[key{parent, *tasks[i].Patch.Title}]
	}
	return nil
}
