package usecase

import (
	"context"
	"strings"

	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase/shared"
)

// ListItemsInput contains the filters for listing items.
// Empty filters match everything.
type ListItemsInput struct {
	ParentID       *string         // Filter by parent (pointer to "" = root items only)
	Status         domain.Status   // Filter by status
	Type           domain.ItemType // Filter by type
	ContextID      string          // Filter by context
	AreaID         string          // Filter by area
	Query          string          // Case-insensitive substring of title or notes
	IncludeDeleted bool            // Include soft-deleted items
	IncludeDone    bool            // Include done items
	ByPriority     bool            // Sort highest priority first instead of sortOrder
}

// ListItemsOutput contains the matching items.
type ListItemsOutput struct {
	Items []*domain.Item
}

// ListItems is the use case for listing items.
type ListItems struct {
	items domain.ItemRepository
}

// NewListItems creates a new ListItems use case.
func NewListItems(items domain.ItemRepository) *ListItems {
	return &ListItems{items: items}
}

// Execute lists items matching the input.
func (uc *ListItems) Execute(ctx context.Context, in ListItemsInput) (*ListItemsOutput, error) {
	includeDeleted := in.IncludeDeleted || in.Status == domain.StatusDeleted
	all, err := uc.items.GetAll(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(in.Query))
	out := make([]*domain.Item, 0, len(all))
	for _, item := range all {
		if !in.matches(item, query) {
			continue
		}
		out = append(out, item)
	}
	if in.ByPriority {
		shared.SortByPriority(out)
	}
	return &ListItemsOutput{Items: out}, nil
}

func (in ListItemsInput) matches(item *domain.Item, query string) bool {
	if in.Status != "" {
		if item.Status != in.Status {
			return false
		}
	} else if item.Status == domain.StatusDone && !in.IncludeDone {
		return false
	}
	if in.ParentID != nil && item.ParentID != *in.ParentID {
		return false
	}
	if in.Type != "" && item.Type != in.Type {
		return false
	}
	if in.ContextID != "" && item.ContextID != in.ContextID {
		return false
	}
	if in.AreaID != "" && item.AreaID != in.AreaID {
		return false
	}
	if query != "" &&
		!strings.Contains(strings.ToLower(item.Title), query) &&
		!strings.Contains(strings.ToLower(item.Notes), query) {
		return false
	}
	return true
}
