package cli

import (
	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// newFocusCommand creates the focus command.
func newFocusCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Context       string
		Energy        string
		Minutes       string
		Cursor        int
		SkipRecompute bool
		JSON          bool
	}

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show or set the current focus",
		Long: `Show or set the current context, energy level and available time.

Changing the focus recomputes every task priority. Large tables are
processed in chunks within a time budget; when a run stops early, resume
it with 'gtd recompute --cursor N'. Pass an empty value to clear a setting.

Examples:
  gtd focus                         # show the current focus
  gtd focus -c @office -e high -m 90
  gtd focus -c ""                   # any context`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.SetFocusInput{
				Batch:         c.BatchOptions(opts.Cursor),
				SkipRecompute: opts.SkipRecompute,
			}
			if cmd.Flags().Changed("context") {
				in.Context = &opts.Context
			}
			if cmd.Flags().Changed("energy") {
				in.Energy = &opts.Energy
			}
			if cmd.Flags().Changed("minutes") {
				in.Minutes = &opts.Minutes
			}

			out, err := c.SetFocusUseCase().Execute(cmd.Context(), in)
			w := cmd.OutOrStdout()
			if opts.JSON {
				if encErr := writeJSON(w, focusResult(out, err)); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			printSettings(w, out.Settings)
			if out.Report != nil {
				printReport(w, "Recomputed priorities", *out.Report)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Context, "context", "c", "", "Current context (ID or name)")
	f.StringVarP(&opts.Energy, "energy", "e", "", "Current energy (low, medium, high)")
	f.StringVarP(&opts.Minutes, "minutes", "m", "", "Available minutes")
	f.IntVar(&opts.Cursor, "cursor", 0, "Resume the recompute from this position")
	f.BoolVar(&opts.SkipRecompute, "no-recompute", false, "Only store the settings")
	f.BoolVar(&opts.JSON, "json", false, "Output as JSON")
	return cmd
}

// newRecomputeCommand creates the recompute command.
func newRecomputeCommand(c *app.Container) *cobra.Command {
	var (
		cursor  int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute all task priorities",
		Long: `Recompute the stored priority of every open task under the current focus.

Runs in chunks within the configured time budget. When it stops early the
output names the cursor to resume from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.RecomputePrioritiesUseCase().Execute(cmd.Context(), usecase.RecomputePrioritiesInput{
				Batch: c.BatchOptions(cursor),
			})
			w := cmd.OutOrStdout()
			if jsonOut {
				res := batchResult{Result: domain.ResultOf(err)}
				if out != nil {
					res = newBatchResult(out.Report, err)
				}
				if encErr := writeJSON(w, res); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			printReport(w, "Recomputed priorities", out.Report)
			return nil
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "Resume from this position")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// focusResult renders a focus change for --json.
func focusResult(out *usecase.SetFocusOutput, err error) any {
	res := struct {
		Settings map[string]any `json:"settings,omitempty"`
		Batch    *batchResult   `json:"recompute,omitempty"`
		domain.Result
	}{Result: domain.ResultOf(err)}
	if out == nil {
		return res
	}
	res.Settings = map[string]any{
		"context": out.Settings.CurrentContext,
		"energy":  string(out.Settings.CurrentEnergy),
		"minutes": out.Settings.AvailableMinutes,
	}
	if out.Report != nil {
		b := newBatchResult(*out.Report, nil)
		res.Batch = &b
	}
	return res
}

// batchResult is the --json rendering of a batch run.
type batchResult struct {
	Errors     []string `json:"errors,omitempty"`
	NextCursor int      `json:"nextCursor"`
	Processed  int      `json:"processed"`
	Changed    int      `json:"changed"`
	Complete   bool     `json:"complete"`
	domain.Result
}

func newBatchResult(report domain.BatchReport, err error) batchResult {
	res := batchResult{
		NextCursor: report.NextCursor,
		Processed:  report.Processed,
		Changed:    report.Changed,
		Complete:   report.Complete,
		Result:     domain.ResultOf(err),
	}
	for _, e := range report.Errors {
		res.Errors = append(res.Errors, e.Error())
	}
	return res
}
