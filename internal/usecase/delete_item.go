package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// DeleteItemInput contains the parameters for deleting an item.
type DeleteItemInput struct {
	ID   string
	Hard bool // Physically remove the row instead of marking it deleted
}

// DeleteItemOutput contains the result of deleting an item.
type DeleteItemOutput struct {
	Item *domain.Item // The soft-deleted item (nil after a hard delete)
}

// DeleteItem is the use case for deleting an item.
type DeleteItem struct {
	items  domain.ItemRepository
	logger domain.Logger
}

// NewDeleteItem creates a new DeleteItem use case.
func NewDeleteItem(items domain.ItemRepository, logger domain.Logger) *DeleteItem {
	return &DeleteItem{
		items:  items,
		logger: logger,
	}
}

// Execute deletes the item. A hard delete leaves children pointing at a
// missing parent; they are reported but not touched.
func (uc *DeleteItem) Execute(ctx context.Context, in DeleteItemInput) (*DeleteItemOutput, error) {
	if !in.Hard {
		item, err := uc.items.SoftDelete(ctx, in.ID)
		if err != nil {
			return nil, fmt.Errorf("delete item: %w", err)
		}
		return &DeleteItemOutput{Item: item}, nil
	}

	all, err := uc.items.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}
	orphans := 0
	for _, item := range all {
		if item.ParentID == in.ID {
			orphans++
		}
	}
	if err := uc.items.HardDelete(ctx, in.ID); err != nil {
		return nil, fmt.Errorf("hard delete item: %w", err)
	}
	if orphans > 0 && uc.logger != nil {
		uc.logger.Warn(in.ID, "delete", fmt.Sprintf("%d children now reference a missing parent", orphans))
	}
	return &DeleteItemOutput{}, nil
}
