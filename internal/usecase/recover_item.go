package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// RecoverItemInput contains the parameters for leaving a terminal status.
type RecoverItemInput struct {
	ID string
}

// RecoverItemOutput contains the recovered item.
type RecoverItemOutput struct {
	Item *domain.Item
}

// ReopenItem is the use case for moving a done item back to next.
type ReopenItem struct {
	items domain.ItemRepository
}

// NewReopenItem creates a new ReopenItem use case.
func NewReopenItem(items domain.ItemRepository) *ReopenItem {
	return &ReopenItem{items: items}
}

// Execute reopens the item.
func (uc *ReopenItem) Execute(ctx context.Context, in RecoverItemInput) (*RecoverItemOutput, error) {
	item, err := uc.items.Reopen(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("reopen item: %w", err)
	}
	return &RecoverItemOutput{Item: item}, nil
}

// RestoreItem is the use case for moving a deleted item back to the inbox.
type RestoreItem struct {
	items domain.ItemRepository
}

// NewRestoreItem creates a new RestoreItem use case.
func NewRestoreItem(items domain.ItemRepository) *RestoreItem {
	return &RestoreItem{items: items}
}

// Execute restores the item.
func (uc *RestoreItem) Execute(ctx context.Context, in RecoverItemInput) (*RecoverItemOutput, error) {
	item, err := uc.items.Restore(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("restore item: %w", err)
	}
	return &RecoverItemOutput{Item: item}, nil
}
