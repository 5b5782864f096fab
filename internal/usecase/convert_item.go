package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ConvertItemInput contains the parameters for changing an item's type.
type ConvertItemInput struct {
	ID   string
	Type domain.ItemType
}

// ConvertItemOutput contains the result of a conversion.
type ConvertItemOutput struct {
	Item *domain.Item
}

// ConvertItem is the use case for converting between task, project and
// folder in place. The id and the children are kept.
type ConvertItem struct {
	items domain.ItemRepository
}

// NewConvertItem creates a new ConvertItem use case.
func NewConvertItem(items domain.ItemRepository) *ConvertItem {
	return &ConvertItem{items: items}
}

// Execute converts the item. Done and deleted items cannot be converted.
func (uc *ConvertItem) Execute(ctx context.Context, in ConvertItemInput) (*ConvertItemOutput, error) {
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidType, in.Type)
	}
	item, err := uc.items.Update(ctx, in.ID, domain.ItemPatch{Type: domain.Ptr(in.Type)})
	if err != nil {
		return nil, fmt.Errorf("convert item: %w", err)
	}
	return &ConvertItemOutput{Item: item}, nil
}
