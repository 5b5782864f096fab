package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// openInput opens path for reading; "-" is stdin.
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// openOutput creates path for writing; empty or "-" is stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// newExportCommand creates the export command.
func newExportCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export items",
		// No RunE: shows subcommand list when called without arguments
	}
	cmd.AddCommand(newExportDoneCommand(c))
	return cmd
}

func newExportDoneCommand(c *app.Container) *cobra.Command {
	var since, output string

	cmd := &cobra.Command{
		Use:   "done",
		Short: "Export completed items as CSV",
		Long: `Write completed items as CSV in completion order.

Examples:
  gtd export done --since 2025-01-01 -o done.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			in := usecase.ExportDoneInput{}
			if since != "" {
				if in.Since, err = domain.ParseDate(since); err != nil {
					return err
				}
			}
			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeFn(); err == nil {
					err = cerr
				}
			}()
			in.W = w

			out, err := c.ExportDoneUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d item(s) to %s\n", out.Count, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only items completed on or after this date")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// newImportCommand creates the import command.
func newImportCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import items",
		// No RunE: shows subcommand list when called without arguments
	}
	cmd.AddCommand(newImportMLOCommand(c))
	return cmd
}

func newImportMLOCommand(c *app.Container) *cobra.Command {
	var (
		parent string
		cursor int
	)

	cmd := &cobra.Command{
		Use:   "mlo <file|->",
		Short: "Import a MyLifeOrganized XML export",
		Long: `Import the task tree of a MyLifeOrganized XML export.

Completed nodes and their subtrees are skipped. The hierarchy is kept:
nodes with children become projects, leaves become next actions.
Large files are imported in chunks; when a run stops early, re-run with
the printed --cursor to continue. Items already imported are matched by
parent and title and not created twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := c.ImportMLOUseCase().Execute(cmd.Context(), usecase.ImportMLOInput{
				R:        r,
				ParentID: parent,
				Batch:    c.BatchOptions(cursor),
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "%d task node(s), %d completed node(s) skipped\n", out.Total, out.Dropped)
			printReport(w, "Imported", out.Report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Attach top-level nodes under this item")
	cmd.Flags().IntVar(&cursor, "cursor", 0, "Resume from this position")
	return cmd
}

// newCompactCommand creates the compact command.
func newCompactCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Shrink export files before import",
		// No RunE: shows subcommand list when called without arguments
	}
	cmd.AddCommand(newCompactMLOCommand(c))
	return cmd
}

func newCompactMLOCommand(c *app.Container) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "mlo <file|->",
		Short: "Drop completed nodes from a MyLifeOrganized export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			r, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()
			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOut(); err == nil {
					err = cerr
				}
			}()

			out, err := c.CompactMLOUseCase().Execute(cmd.Context(), usecase.CompactMLOInput{R: r, W: w})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Removed %d completed node(s)\n", out.Dropped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
