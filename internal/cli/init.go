package cli

import (
	"fmt"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the item table, settings and reference data",
		Long: `Create the data directory contents:
- the item table with the current column layout
- the settings file holding the current focus
- the reference database of contexts and areas

Parts that already exist are left untouched, so init can be re-run to
recreate a missing part.

Error conditions:
- Everything already exists: "already initialized"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitStoreUseCase().Execute(cmd.Context(), usecase.InitStoreInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Initialized gtd in %s\n", c.Config.DataDir)
			if out.Existing > 0 {
				_, _ = fmt.Fprintf(w, "Created %d part(s), %d already existed\n", out.Initialized, out.Existing)
			}
			return nil
		},
	}
}
