package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// RecomputePrioritiesInput contains the batch window to process.
type RecomputePrioritiesInput struct {
	Batch domain.BatchOptions
}

// RecomputePrioritiesOutput contains the batch report.
type RecomputePrioritiesOutput struct {
	Report   domain.BatchReport
	Settings domain.Settings // Settings the scores were computed under
}

// RecomputePriorities is the use case for refreshing every cached task score.
type RecomputePriorities struct {
	items    domain.ItemRepository
	settings domain.SettingsStore
}

// NewRecomputePriorities creates a new RecomputePriorities use case.
func NewRecomputePriorities(items domain.ItemRepository, settings domain.SettingsStore) *RecomputePriorities {
	return &RecomputePriorities{
		items:    items,
		settings: settings,
	}
}

// Execute recomputes priorities under the stored settings.
func (uc *RecomputePriorities) Execute(ctx context.Context, in RecomputePrioritiesInput) (*RecomputePrioritiesOutput, error) {
	settings, err := domain.LoadSettings(ctx, uc.settings)
	if err != nil {
		return nil, err
	}
	report, err := uc.items.RecomputeAllPriorities(ctx, settings, in.Batch)
	if err != nil {
		return nil, fmt.Errorf("recompute priorities: %w", err)
	}
	return &RecomputePrioritiesOutput{Report: report, Settings: settings}, nil
}
