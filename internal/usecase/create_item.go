// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// CreateItemInput contains the parameters for creating an item.
type CreateItemInput struct {
	Patch domain.ItemPatch // Title is required; every other field has a default
}

// CreateItemOutput contains the result of creating an item.
type CreateItemOutput struct {
	Item *domain.Item
}

// CreateItem is the use case for capturing a new item.
type CreateItem struct {
	items domain.ItemRepository
	refs  domain.ReferenceRepository
}

// NewCreateItem creates a new CreateItem use case.
// refs may be nil, in which case context and area ids are not checked.
func NewCreateItem(items domain.ItemRepository, refs domain.ReferenceRepository) *CreateItem {
	return &CreateItem{
		items: items,
		refs:  refs,
	}
}

// Execute creates the item.
func (uc *CreateItem) Execute(ctx context.Context, in CreateItemInput) (*CreateItemOutput, error) {
	if err := checkReferences(ctx, uc.refs, in.Patch); err != nil {
		return nil, err
	}
	item, err := uc.items.Create(ctx, in.Patch)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &CreateItemOutput{Item: item}, nil
}

// checkReferences rejects context and area ids that are set but unknown.
func checkReferences(ctx context.Context, refs domain.ReferenceRepository, patch domain.ItemPatch) error {
	if refs == nil {
		return nil
	}
	if patch.ContextID != nil && *patch.ContextID != "" {
		if _, err := refs.GetContext(ctx, *patch.ContextID); err != nil {
			return fmt.Errorf("%w: context %s: %w", domain.ErrValidation, *patch.ContextID, err)
		}
	}
	if patch.AreaID != nil && *patch.AreaID != "" {
		if _, err := refs.GetArea(ctx, *patch.AreaID); err != nil {
			return fmt.Errorf("%w: area %s: %w", domain.ErrValidation, *patch.AreaID, err)
		}
	}
	return nil
}
