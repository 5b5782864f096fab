package itemstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/gtdsheet/internal/domain"
)

// ResolveLayout inspects the table header and returns the matching layout.
// A header naming projectId selects the legacy layout; any other readable
// header selects the current one. An unreadable or empty header falls back
// to the legacy layout, which is a superset of the current one.
func ResolveLayout(ctx context.Context, rows domain.RowStore, logger domain.Logger) domain.Layout {
	header, err := rows.ReadHeader(ctx)
	if err != nil {
		logger.Warn("", "schema", fmt.Sprintf("header unreadable, assuming legacy layout: %v", err))
		return domain.LegacyLayout()
	}
	if len(header) == 0 {
		logger.Warn("", "schema", "header empty, assuming legacy layout")
		return domain.LegacyLayout()
	}
	if domain.HasLegacyColumn(header) {
		logger.Debug("", "schema", "resolved legacy layout")
		return domain.LegacyLayout()
	}
	logger.Debug("", "schema", "resolved current layout")
	return domain.CurrentLayout()
}

// CheckHeader verifies that every column of layout is named as expected.
func CheckHeader(header []string, layout domain.Layout) error {
	for _, f := range layout.Fields() {
		col, _ := layout.Index(f)
		if col >= len(header) || strings.TrimSpace(header[col]) != string(f) {
			return fmt.Errorf("%w: %s at column %d", domain.ErrMissingColumn, f, col+1)
		}
	}
	return nil
}
