package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ExportDoneHeader is the header row of the done export.
var ExportDoneHeader = []string{"title", "completedDate", "notes"}

// ExportDoneInput contains the parameters for exporting done items.
type ExportDoneInput struct {
	W     io.Writer
	Since domain.Date // Only items completed on or after this date (zero = all)
}

// ExportDoneOutput contains the number of exported items.
type ExportDoneOutput struct {
	Count int
}

// ExportDone is the use case for exporting completed items as CSV.
type ExportDone struct {
	items domain.ItemRepository
}

// NewExportDone creates a new ExportDone use case.
func NewExportDone(items domain.ItemRepository) *ExportDone {
	return &ExportDone{items: items}
}

// Execute writes title, completedDate and notes of every done item,
// oldest completion first.
func (uc *ExportDone) Execute(ctx context.Context, in ExportDoneInput) (*ExportDoneOutput, error) {
	all, err := uc.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}

	var done []*domain.Item
	for _, item := range all {
		if item.Status != domain.StatusDone {
			continue
		}
		if !in.Since.IsZero() && domain.DateOf(item.CompletedDate).Before(in.Since) {
			continue
		}
		done = append(done, item)
	}
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CompletedDate.Before(done[j].CompletedDate)
	})

	w := csv.NewWriter(in.W)
	if err := w.Write(ExportDoneHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, item := range done {
		completed := ""
		if !item.CompletedDate.IsZero() {
			completed = item.CompletedDate.Format(domain.TimestampLayout)
		}
		if err := w.Write([]string{item.Title, completed, item.Notes}); err != nil {
			return nil, fmt.Errorf("write %s: %w", item.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush export: %w", err)
	}
	return &ExportDoneOutput{Count: len(done)}, nil
}
