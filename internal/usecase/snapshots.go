package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ListSnapshotsOutput contains the stored snapshot names.
type ListSnapshotsOutput struct {
	Names []string
}

// ShowSnapshotInput names the snapshot to read.
type ShowSnapshotInput struct {
	Name string
}

// ShowSnapshotOutput contains a stored copy of the table.
type ShowSnapshotOutput struct {
	Header []string
	Rows   [][]string
}

// Snapshots is the use case for inspecting tables saved before destructive
// migration phases.
type Snapshots struct {
	catalog domain.SnapshotCatalog
}

// NewSnapshots creates a new Snapshots use case.
func NewSnapshots(catalog domain.SnapshotCatalog) *Snapshots {
	return &Snapshots{catalog: catalog}
}

// List returns the snapshot names.
func (uc *Snapshots) List(_ context.Context) (*ListSnapshotsOutput, error) {
	names, err := uc.catalog.List()
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return &ListSnapshotsOutput{Names: names}, nil
}

// Show returns one snapshot.
func (uc *Snapshots) Show(_ context.Context, in ShowSnapshotInput) (*ShowSnapshotOutput, error) {
	header, rows, err := uc.catalog.Load(in.Name)
	if err != nil {
		return nil, err
	}
	return &ShowSnapshotOutput{Header: header, Rows: rows}, nil
}
