package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// CompactMLOInput contains the export to compact and where to write it.
type CompactMLOInput struct {
	R io.Reader
	W io.Writer
}

// CompactMLOOutput contains the number of removed nodes.
type CompactMLOOutput struct {
	Dropped int
}

// CompactMLO is the use case for stripping completed and dropped nodes from
// a MyLifeOrganized export without importing it.
type CompactMLO struct{}

// NewCompactMLO creates a new CompactMLO use case.
func NewCompactMLO() *CompactMLO {
	return &CompactMLO{}
}

// Execute writes the compacted export.
func (uc *CompactMLO) Execute(_ context.Context, in CompactMLOInput) (*CompactMLOOutput, error) {
	root, err := domain.ParseMLO(in.R)
	if err != nil {
		return nil, err
	}
	tree, err := root.TaskTree()
	if err != nil {
		return nil, err
	}
	dropped := tree.Compact()
	if err := domain.WriteMLO(in.W, root); err != nil {
		return nil, fmt.Errorf("write compacted export: %w", err)
	}
	return &CompactMLOOutput{Dropped: dropped}, nil
}
