package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// InitStoreInput contains the parameters for initializing the data store.
type InitStoreInput struct{}

// InitStoreOutput reports how many parts were created.
type InitStoreOutput struct {
	Initialized int // parts created by this run
	Existing    int // parts that already existed
}

// InitStore is the use case for creating the item table, the settings
// file and the reference database.
type InitStore struct {
	logger domain.Logger
	parts  []domain.StoreInitializer
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(logger domain.Logger, parts ...domain.StoreInitializer) *InitStore {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &InitStore{
		logger: logger,
		parts:  parts,
	}
}

// Execute initializes every part. Existing parts are left alone, so the
// command can be re-run to create parts that are missing.
func (uc *InitStore) Execute(ctx context.Context, _ InitStoreInput) (*InitStoreOutput, error) {
	out := &InitStoreOutput{}
	for _, p := range uc.parts {
		err := p.Initialize(ctx)
		switch {
		case err == nil:
			out.Initialized++
		case errors.Is(err, domain.ErrAlreadyInitialized):
			out.Existing++
		default:
			return nil, fmt.Errorf("initialize: %w", err)
		}
	}
	if out.Initialized == 0 {
		return out, domain.ErrAlreadyInitialized
	}
	uc.logger.Info("", "init", fmt.Sprintf("initialized %d parts (%d already existed)", out.Initialized, out.Existing))
	return out, nil
}
