package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// CompleteItemInput contains the parameters for completing an item.
type CompleteItemInput struct {
	ID string
}

// CompleteItemOutput contains the result of completing an item.
type CompleteItemOutput struct {
	Item *domain.Item
}

// CompleteItem is the use case for marking an item done.
type CompleteItem struct {
	items domain.ItemRepository
}

// NewCompleteItem creates a new CompleteItem use case.
func NewCompleteItem(items domain.ItemRepository) *CompleteItem {
	return &CompleteItem{items: items}
}

// Execute transitions the item to done. The store stamps completedDate.
func (uc *CompleteItem) Execute(ctx context.Context, in CompleteItemInput) (*CompleteItemOutput, error) {
	item, err := uc.items.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.StatusDone {
		return nil, fmt.Errorf("item %s is already done: %w", in.ID, domain.ErrInvalidTransition)
	}
	item, err = uc.items.Update(ctx, in.ID, domain.ItemPatch{Status: domain.Ptr(domain.StatusDone)})
	if err != nil {
		return nil, fmt.Errorf("complete item: %w", err)
	}
	return &CompleteItemOutput{Item: item}, nil
}
