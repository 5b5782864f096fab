package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// UpdateItemInput contains the parameters for editing an item.
type UpdateItemInput struct {
	ID    string
	Patch domain.ItemPatch // Only non-nil fields are applied
}

// UpdateItemOutput contains the result of editing an item.
type UpdateItemOutput struct {
	Item *domain.Item
}

// UpdateItem is the use case for editing an item.
type UpdateItem struct {
	items domain.ItemRepository
	refs  domain.ReferenceRepository
}

// NewUpdateItem creates a new UpdateItem use case.
func NewUpdateItem(items domain.ItemRepository, refs domain.ReferenceRepository) *UpdateItem {
	return &UpdateItem{
		items: items,
		refs:  refs,
	}
}

// Execute merges the patch over the stored item.
func (uc *UpdateItem) Execute(ctx context.Context, in UpdateItemInput) (*UpdateItemOutput, error) {
	if err := checkReferences(ctx, uc.refs, in.Patch); err != nil {
		return nil, err
	}
	item, err := uc.items.Update(ctx, in.ID, in.Patch)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &UpdateItemOutput{Item: item}, nil
}
