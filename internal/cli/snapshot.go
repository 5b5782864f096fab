package cli

import (
	"fmt"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// newSnapshotCommand creates the snapshot command.
func newSnapshotCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect table snapshots taken before migrations",
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newSnapshotListCommand(c))
	cmd.AddCommand(newSnapshotShowCommand(c))
	return cmd
}

func newSnapshotListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := c.SnapshotsUseCase()
			if err != nil {
				return err
			}
			out, err := uc.List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(out.Names) == 0 {
				_, _ = fmt.Fprintln(w, defaultStyles().Muted.Render("No snapshots."))
				return nil
			}
			for _, name := range out.Names {
				_, _ = fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}

func newSnapshotShowCommand(c *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the table stored in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.SnapshotsUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Show(cmd.Context(), usecase.ShowSnapshotInput{Name: args[0]})
			if err != nil {
				return err
			}
			rows := out.Rows
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			w := cmd.OutOrStdout()
			renderTable(w, out.Header, rows)
			if len(rows) < len(out.Rows) {
				_, _ = fmt.Fprintln(w, defaultStyles().Muted.Render(fmt.Sprintf("... %d more rows", len(out.Rows)-len(rows))))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many rows (0 = all)")
	return cmd
}
