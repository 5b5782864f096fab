package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ReviewInterval is how long a project may go without review.
const ReviewInterval = 7 // days

// WeeklyReviewInput contains the parameters for the weekly review.
type WeeklyReviewInput struct{}

// WeeklyReviewOutput aggregates every review view.
// Fields are ordered to minimize memory padding.
type WeeklyReviewOutput struct {
	Today       domain.Date
	Inbox       []*domain.Item
	Overdue     []*domain.Item
	DueToday    []*domain.Item
	Stalled     []*domain.Item
	NeedsReview []*domain.Item // open projects not reviewed within ReviewInterval
	Waiting     []*domain.Item
	NextActions []ContextBucket
}

// WeeklyReview is the use case for the weekly review checklist.
type WeeklyReview struct {
	items domain.ItemRepository
	refs  domain.ReferenceRepository
	clock domain.Clock
}

// NewWeeklyReview creates a new WeeklyReview use case.
func NewWeeklyReview(items domain.ItemRepository, refs domain.ReferenceRepository, clock domain.Clock) *WeeklyReview {
	return &WeeklyReview{
		items: items,
		refs:  refs,
		clock: clock,
	}
}

// Execute builds the review from a single read of the table.
func (uc *WeeklyReview) Execute(ctx context.Context, _ WeeklyReviewInput) (*WeeklyReviewOutput, error) {
	all, err := uc.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	var contexts []domain.Context
	if uc.refs != nil {
		if contexts, err = uc.refs.ListContexts(ctx); err != nil {
			return nil, fmt.Errorf("list contexts: %w", err)
		}
	}

	today := domain.DateOf(uc.clock.Now())
	out := &WeeklyReviewOutput{
		Today:       today,
		Overdue:     overdue(all, today),
		DueToday:    dueToday(all, today),
		Stalled:     stalledProjects(all),
		NextActions: groupByContext(all, contexts),
	}
	for _, item := range all {
		switch item.Status {
		case domain.StatusInbox:
			out.Inbox = append(out.Inbox, item)
		case domain.StatusWaiting:
			out.Waiting = append(out.Waiting, item)
		}
		if item.Type == domain.TypeProject && !item.Status.IsTerminal() && needsReview(item, today) {
			out.NeedsReview = append(out.NeedsReview, item)
		}
	}
	return out, nil
}

func needsReview(item *domain.Item, today domain.Date) bool {
	if item.LastReviewed.IsZero() {
		return true
	}
	return today.DaysSince(item.LastReviewed) >= ReviewInterval
}

// MarkReviewedInput contains the item to stamp.
type MarkReviewedInput struct {
	ID string
}

// MarkReviewedOutput contains the stamped item.
type MarkReviewedOutput struct {
	Item *domain.Item
}

// MarkReviewed is the use case for recording that an item was reviewed.
type MarkReviewed struct {
	items domain.ItemRepository
}

// NewMarkReviewed creates a new MarkReviewed use case.
func NewMarkReviewed(items domain.ItemRepository) *MarkReviewed {
	return &MarkReviewed{items: items}
}

// Execute stamps lastReviewed with today.
func (uc *MarkReviewed) Execute(ctx context.Context, in MarkReviewedInput) (*MarkReviewedOutput, error) {
	item, err := uc.items.MarkReviewed(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("mark reviewed: %w", err)
	}
	return &MarkReviewedOutput{Item: item}, nil
}
