package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase/shared"
)

// NoContextLabel names the bucket of next actions without a known context.
const NoContextLabel = "No Context"

// ContextBucket groups next actions sharing a context.
// Fields are ordered to minimize memory padding.
type ContextBucket struct {
	Context *domain.Context // nil for the No Context bucket
	Label   string
	Items   []*domain.Item // highest priority first
}

// ReviewAnalyzer derives review views from the item hierarchy.
// All views exclude soft-deleted items.
type ReviewAnalyzer struct {
	items domain.ItemRepository
	refs  domain.ReferenceRepository
	clock domain.Clock
}

// NewReviewAnalyzer creates a new ReviewAnalyzer.
func NewReviewAnalyzer(items domain.ItemRepository, refs domain.ReferenceRepository, clock domain.Clock) *ReviewAnalyzer {
	return &ReviewAnalyzer{
		items: items,
		refs:  refs,
		clock: clock,
	}
}

func (a *ReviewAnalyzer) today() domain.Date {
	return domain.DateOf(a.clock.Now())
}

// Subtasks returns the non-deleted children of parentID in table order.
func (a *ReviewAnalyzer) Subtasks(ctx context.Context, parentID string) ([]*domain.Item, error) {
	all, err := a.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return subtasks(all, parentID), nil
}

func subtasks(all []*domain.Item, parentID string) []*domain.Item {
	var out []*domain.Item
	for _, item := range all {
		if item.ParentID == parentID {
			out = append(out, item)
		}
	}
	return out
}

// NextActionsByContext buckets items in the next status by context.
// Buckets follow the context sortOrder then name; the No Context bucket,
// which also takes ids with no matching context, comes last.
func (a *ReviewAnalyzer) NextActionsByContext(ctx context.Context) ([]ContextBucket, error) {
	all, err := a.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	var contexts []domain.Context
	if a.refs != nil {
		contexts, err = a.refs.ListContexts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list contexts: %w", err)
		}
	}
	return groupByContext(all, contexts), nil
}

func groupByContext(all []*domain.Item, contexts []domain.Context) []ContextBucket {
	known := make(map[string]*domain.Context, len(contexts))
	for i := range contexts {
		known[contexts[i].ID] = &contexts[i]
	}

	byContext := make(map[string][]*domain.Item)
	var none []*domain.Item
	for _, item := range all {
		if item.Status != domain.StatusNext {
			continue
		}
		if _, ok := known[item.ContextID]; ok {
			byContext[item.ContextID] = append(byContext[item.ContextID], item)
		} else {
			none = append(none, item)
		}
	}

	ordered := append([]domain.Context(nil), contexts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].Name < ordered[j].Name
	})

	var buckets []ContextBucket
	for i := range ordered {
		items := byContext[ordered[i].ID]
		if len(items) == 0 {
			continue
		}
		shared.SortByPriority(items)
		buckets = append(buckets, ContextBucket{Context: known[ordered[i].ID], Label: ordered[i].Name, Items: items})
	}
	if len(none) > 0 {
		shared.SortByPriority(none)
		buckets = append(buckets, ContextBucket{Label: NoContextLabel, Items: none})
	}
	return buckets
}

// StalledProjects returns open projects that have children but no child
// in the next status. Projects without children are not stalled.
func (a *ReviewAnalyzer) StalledProjects(ctx context.Context) ([]*domain.Item, error) {
	all, err := a.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return stalledProjects(all), nil
}

func stalledProjects(all []*domain.Item) []*domain.Item {
	children, next := shared.ChildCounts(all)
	var out []*domain.Item
	for _, item := range all {
		if item.Type != domain.TypeProject || !shared.IsOpen(item) {
			continue
		}
		if children[item.ID] > 0 && next[item.ID] == 0 {
			out = append(out, item)
		}
	}
	return out
}

// Overdue returns open items due before today, oldest due date first.
func (a *ReviewAnalyzer) Overdue(ctx context.Context) ([]*domain.Item, error) {
	all, err := a.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return overdue(all, a.today()), nil
}

func overdue(all []*domain.Item, today domain.Date) []*domain.Item {
	var out []*domain.Item
	for _, item := range all {
		if shared.IsOpen(item) && !item.DueDate.IsZero() && item.DueDate.Before(today) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

// DueToday returns open items due today, highest priority first.
func (a *ReviewAnalyzer) DueToday(ctx context.Context) ([]*domain.Item, error) {
	all, err := a.items.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	return dueToday(all, a.today()), nil
}

func dueToday(all []*domain.Item, today domain.Date) []*domain.Item {
	var out []*domain.Item
	for _, item := range all {
		if shared.IsOpen(item) && item.DueDate == today {
			out = append(out, item)
		}
	}
	shared.SortByPriority(out)
	return out
}
