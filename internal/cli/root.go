// Package cli provides the command-line interface for gtd.
package cli

import (
	"fmt"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupItem     = "item"
	groupReview   = "review"
	groupFocus    = "focus"
	groupTransfer = "transfer"
)

// NewRootCommand creates the root command for gtd.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "gtd",
		Short: "GTD item store with priority scoring",
		Long: `gtd keeps tasks, projects and folders in a single item table and
ranks next actions by a priority score computed from importance, urgency,
due dates and your current focus.

Run 'gtd init' once to create the table, settings and reference data.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return nil
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupItem, Title: "Item Commands:"},
		&cobra.Group{ID: groupReview, Title: "Review Commands:"},
		&cobra.Group{ID: groupFocus, Title: "Focus Commands:"},
		&cobra.Group{ID: groupTransfer, Title: "Import/Export Commands:"},
	)

	// Setup commands
	for _, cmd := range []*cobra.Command{
		newInitCommand(c),
		newConfigCommand(c),
		newLogsCommand(c),
		newMigrateCommand(c),
		newSnapshotCommand(c),
	} {
		cmd.GroupID = groupSetup
		root.AddCommand(cmd)
	}

	// Item commands
	for _, cmd := range []*cobra.Command{
		newAddCommand(c),
		newEditCommand(c),
		newShowCommand(c),
		newListCommand(c),
		newDoneCommand(c),
		newRemoveCommand(c),
		newReopenCommand(c),
		newRestoreCommand(c),
		newConvertCommand(c),
		newReferenceCommand(c, contextKind),
		newReferenceCommand(c, areaKind),
	} {
		cmd.GroupID = groupItem
		root.AddCommand(cmd)
	}

	// Review commands
	for _, cmd := range []*cobra.Command{
		newNextCommand(c),
		newSubtasksCommand(c),
		newStalledCommand(c),
		newOverdueCommand(c),
		newTodayCommand(c),
		newReviewCommand(c),
		newReviewedCommand(c),
	} {
		cmd.GroupID = groupReview
		root.AddCommand(cmd)
	}

	// Focus commands
	for _, cmd := range []*cobra.Command{
		newFocusCommand(c),
		newRecomputeCommand(c),
	} {
		cmd.GroupID = groupFocus
		root.AddCommand(cmd)
	}

	// Import/export commands
	for _, cmd := range []*cobra.Command{
		newExportCommand(c),
		newImportCommand(c),
		newCompactCommand(c),
	} {
		cmd.GroupID = groupTransfer
		root.AddCommand(cmd)
	}

	return root
}
