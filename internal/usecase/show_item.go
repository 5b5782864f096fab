package usecase

import (
	"context"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase/shared"
)

// ShowItemInput contains the parameters for showing an item.
type ShowItemInput struct {
	ID string
}

// ShowItemOutput contains an item with its surroundings.
// Fields are ordered to minimize memory padding.
type ShowItemOutput struct {
	Item     *domain.Item
	Parent   *domain.Item   // nil for root items or a missing parent
	Context  *domain.Context // nil when unset or unknown
	Area     *domain.Area    // nil when unset or unknown
	Children []*domain.Item  // non-deleted children, highest priority first
	Score    domain.Score    // label for the current settings
}

// ShowItem is the use case for displaying one item.
type ShowItem struct {
	items    domain.ItemRepository
	refs     domain.ReferenceRepository
	settings domain.SettingsStore
	scorer   domain.Scorer
	clock    domain.Clock
}

// NewShowItem creates a new ShowItem use case.
func NewShowItem(items domain.ItemRepository, refs domain.ReferenceRepository, settings domain.SettingsStore, scorer domain.Scorer, clock domain.Clock) *ShowItem {
	return &ShowItem{
		items:    items,
		refs:     refs,
		settings: settings,
		scorer:   scorer,
		clock:    clock,
	}
}

// Execute loads the item and resolves its references.
func (uc *ShowItem) Execute(ctx context.Context, in ShowItemInput) (*ShowItemOutput, error) {
	all, err := uc.items.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Item, len(all))
	for _, item := range all {
		byID[item.ID] = item
	}
	item, ok := byID[in.ID]
	if !ok {
		return nil, notFound(in.ID)
	}

	out := &ShowItemOutput{Item: item}
	if item.ParentID != "" {
		out.Parent = byID[item.ParentID]
	}
	for _, other := range all {
		if other.ParentID == item.ID && !other.IsDeleted() {
			out.Children = append(out.Children, other)
		}
	}
	shared.SortByPriority(out.Children)

	if uc.refs != nil {
		if item.ContextID != "" {
			out.Context, _ = uc.refs.GetContext(ctx, item.ContextID)
		}
		if item.AreaID != "" {
			out.Area, _ = uc.refs.GetArea(ctx, item.AreaID)
		}
	}

	settings, err := domain.LoadSettings(ctx, uc.settings)
	if err != nil {
		return nil, err
	}
	out.Score = domain.ScoreItem(uc.scorer, domain.ScoringInput{
		Item:       item,
		Parent:     out.Parent,
		Settings:   settings,
		Now:        uc.clock.Now(),
		Dependents: len(out.Children),
	})
	return out, nil
}
