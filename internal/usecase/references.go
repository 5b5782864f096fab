package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// AddReferenceInput contains the parameters for adding a context or area.
type AddReferenceInput struct {
	Name      string
	Icon      string
	SortOrder *int // nil = after the last entry
}

// RemoveReferenceInput contains the parameters for removing a context or area.
type RemoveReferenceInput struct {
	ID    string
	Force bool // Remove even while items still reference it
}

// ManageContexts is the use case for the context lookup table.
type ManageContexts struct {
	refs  domain.ReferenceRepository
	items domain.ItemRepository
	ids   domain.IDGenerator
}

// NewManageContexts creates a new ManageContexts use case.
func NewManageContexts(refs domain.ReferenceRepository, items domain.ItemRepository, ids domain.IDGenerator) *ManageContexts {
	return &ManageContexts{
		refs:  refs,
		items: items,
		ids:   ids,
	}
}

// List returns contexts ordered by sortOrder then name.
func (uc *ManageContexts) List(ctx context.Context) ([]domain.Context, error) {
	return uc.refs.ListContexts(ctx)
}

// Add creates a context.
func (uc *ManageContexts) Add(ctx context.Context, in AddReferenceInput) (*domain.Context, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: context name cannot be empty", domain.ErrValidation)
	}
	existing, err := uc.refs.ListContexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contexts: %w", err)
	}
	order := 0
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return nil, fmt.Errorf("%w: context %q already exists", domain.ErrValidation, name)
		}
		order = max(order, c.SortOrder+1)
	}
	if in.SortOrder != nil {
		order = *in.SortOrder
	}
	c := domain.Context{ID: uc.ids.NewID(), Name: name, Icon: in.Icon, SortOrder: order}
	if err := uc.refs.SaveContext(ctx, c); err != nil {
		return nil, fmt.Errorf("save context: %w", err)
	}
	return &c, nil
}

// Remove deletes a context.
func (uc *ManageContexts) Remove(ctx context.Context, in RemoveReferenceInput) error {
	if _, err := uc.refs.GetContext(ctx, in.ID); err != nil {
		return err
	}
	if !in.Force {
		n, err := countReferencing(ctx, uc.items, func(item *domain.Item) bool { return item.ContextID == in.ID })
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: context %s is used by %d items", domain.ErrValidation, in.ID, n)
		}
	}
	return uc.refs.DeleteContext(ctx, in.ID)
}

// ManageAreas is the use case for the area lookup table.
type ManageAreas struct {
	refs  domain.ReferenceRepository
	items domain.ItemRepository
	ids   domain.IDGenerator
}

// NewManageAreas creates a new ManageAreas use case.
func NewManageAreas(refs domain.ReferenceRepository, items domain.ItemRepository, ids domain.IDGenerator) *ManageAreas {
	return &ManageAreas{
		refs:  refs,
		items: items,
		ids:   ids,
	}
}

// List returns areas ordered by sortOrder then name.
func (uc *ManageAreas) List(ctx context.Context) ([]domain.Area, error) {
	return uc.refs.ListAreas(ctx)
}

// Add creates an area.
func (uc *ManageAreas) Add(ctx context.Context, in AddReferenceInput) (*domain.Area, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: area name cannot be empty", domain.ErrValidation)
	}
	existing, err := uc.refs.ListAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	order := 0
	for _, a := range existing {
		if strings.EqualFold(a.Name, name) {
			return nil, fmt.Errorf("%w: area %q already exists", domain.ErrValidation, name)
		}
		order = max(order, a.SortOrder+1)
	}
	if in.SortOrder != nil {
		order = *in.SortOrder
	}
	a := domain.Area{ID: uc.ids.NewID(), Name: name, Icon: in.Icon, SortOrder: order}
	if err := uc.refs.SaveArea(ctx, a); err != nil {
		return nil, fmt.Errorf("save area: %w", err)
	}
	return &a, nil
}

// Remove deletes an area.
func (uc *ManageAreas) Remove(ctx context.Context, in RemoveReferenceInput) error {
	if _, err := uc.refs.GetArea(ctx, in.ID); err != nil {
		return err
	}
	if !in.Force {
		n, err := countReferencing(ctx, uc.items, func(item *domain.Item) bool { return item.AreaID == in.ID })
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: area %s is used by %d items", domain.ErrValidation, in.ID, n)
		}
	}
	return uc.refs.DeleteArea(ctx, in.ID)
}

func countReferencing(ctx context.Context, items domain.ItemRepository, match func(*domain.Item) bool) (int, error) {
	all, err := items.GetAll(ctx, false)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range all {
		if match(item) {
			n++
		}
	}
	return n, nil
}
