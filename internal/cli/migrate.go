package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// newMigrateCommand creates the migrate command.
func newMigrateCommand(c *app.Container) *cobra.Command {
	var (
		cursor  int
		jsonOut bool
	)

	phases := make([]string, 0, len(domain.AllPhases()))
	for _, p := range domain.AllPhases() {
		phases = append(phases, string(p))
	}

	cmd := &cobra.Command{
		Use:   "migrate <" + strings.Join(phases, "|") + ">",
		Short: "Move the table off the legacy projectId column",
		Long: `Migrate a legacy table, where the parent link lives in projectId, to
the current layout. Run the phases in order:

  copy    copy projectId into parentId where they differ
  clear   blank every projectId value
  delete  remove the projectId column

Each phase is idempotent and reports where to resume with --cursor when it
runs out of time. clear and delete snapshot the table first when snapshots
are enabled; see 'gtd snapshot list'.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: phases,
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, err := domain.ParseMigrationPhase(args[0])
			if err != nil {
				return err
			}
			uc, err := c.MigrateLayoutUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.MigrateLayoutInput{
				Phase: phase,
				Batch: c.BatchOptions(cursor),
			})
			w := cmd.OutOrStdout()
			if jsonOut {
				res := struct {
					Phase       string `json:"phase"`
					SnapshotRef string `json:"snapshot,omitempty"`
					batchResult
				}{Phase: string(phase), batchResult: batchResult{Result: domain.ResultOf(err)}}
				if out != nil {
					res.SnapshotRef = out.SnapshotRef
					res.batchResult = newBatchResult(out.Report, err)
				}
				if encErr := writeJSON(w, res); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			if out.AlreadyComplete {
				_, _ = fmt.Fprintf(w, "Phase %s: nothing to do\n", phase)
				return nil
			}
			if out.SnapshotRef != "" {
				_, _ = fmt.Fprintf(w, "Snapshot saved to %s\n", out.SnapshotRef)
			}
			printReport(w, "Phase "+string(phase), out.Report)
			return nil
		},
	}

	cmd.Flags().IntVar(&cursor, "cursor", 0, "Resume from this position")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
