package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// referenceKind names a reference table.
type referenceKind string

const (
	contextKind referenceKind = "context"
	areaKind    referenceKind = "area"
)

// refEntry is a context or area as shown by the CLI.
type refEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

// refManager hides the concrete context and area use cases.
type refManager interface {
	List(ctx context.Context) ([]refEntry, error)
	Add(ctx context.Context, in usecase.AddReferenceInput) (refEntry, error)
	Remove(ctx context.Context, in usecase.RemoveReferenceInput) error
}

type contextManager struct{ uc *usecase.ManageContexts }

func (m contextManager) List(ctx context.Context) ([]refEntry, error) {
	list, err := m.uc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]refEntry, 0, len(list))
	for _, e := range list {
		out = append(out, refEntry{ID: e.ID, Name: e.Name, Icon: e.Icon, SortOrder: e.SortOrder})
	}
	return out, nil
}

func (m contextManager) Add(ctx context.Context, in usecase.AddReferenceInput) (refEntry, error) {
	e, err := m.uc.Add(ctx, in)
	if err != nil {
		return refEntry{}, err
	}
	return refEntry{ID: e.ID, Name: e.Name, Icon: e.Icon, SortOrder: e.SortOrder}, nil
}

func (m contextManager) Remove(ctx context.Context, in usecase.RemoveReferenceInput) error {
	return m.uc.Remove(ctx, in)
}

type areaManager struct{ uc *usecase.ManageAreas }

func (m areaManager) List(ctx context.Context) ([]refEntry, error) {
	list, err := m.uc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]refEntry, 0, len(list))
	for _, e := range list {
		out = append(out, refEntry{ID: e.ID, Name: e.Name, Icon: e.Icon, SortOrder: e.SortOrder})
	}
	return out, nil
}

func (m areaManager) Add(ctx context.Context, in usecase.AddReferenceInput) (refEntry, error) {
	e, err := m.uc.Add(ctx, in)
	if err != nil {
		return refEntry{}, err
	}
	return refEntry{ID: e.ID, Name: e.Name, Icon: e.Icon, SortOrder: e.SortOrder}, nil
}

func (m areaManager) Remove(ctx context.Context, in usecase.RemoveReferenceInput) error {
	return m.uc.Remove(ctx, in)
}

func managerFor(c *app.Container, kind referenceKind) refManager {
	if kind == areaKind {
		return areaManager{uc: c.ManageAreasUseCase()}
	}
	return contextManager{uc: c.ManageContextsUseCase()}
}

// newReferenceCommand creates the context or area command.
func newReferenceCommand(c *app.Container, kind referenceKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Manage %ss", kind),
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newReferenceListCommand(c, kind))
	cmd.AddCommand(newReferenceAddCommand(c, kind))
	cmd.AddCommand(newReferenceRemoveCommand(c, kind))
	return cmd
}

func newReferenceListCommand(c *app.Container, kind referenceKind) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %ss in sort order", kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := managerFor(c, kind).List(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, entries)
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(w, defaultStyles().Muted.Render(fmt.Sprintf("No %ss.", kind)))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID, e.Icon, e.Name, strconv.Itoa(e.SortOrder)})
			}
			renderTable(w, []string{"ID", "ICON", "NAME", "ORDER"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newReferenceAddCommand(c *app.Container, kind referenceKind) *cobra.Command {
	var (
		icon  string
		order int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.AddReferenceInput{Name: args[0], Icon: icon}
			if cmd.Flags().Changed("order") {
				in.SortOrder = &order
			}
			e, err := managerFor(c, kind).Add(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s: %s\n", kind, e.ID, e.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&icon, "icon", "", "Display icon")
	cmd.Flags().IntVar(&order, "order", 0, "Sort order (default: after the last entry)")
	return cmd
}

func newReferenceRemoveCommand(c *app.Container, kind referenceKind) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: fmt.Sprintf("Remove a %s", kind),
		Long: fmt.Sprintf(`Remove a %s. Removal is refused while open items still use it,
unless --force is given; those items then keep a dangling reference.`, kind),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := managerFor(c, kind).Remove(cmd.Context(), usecase.RemoveReferenceInput{ID: args[0], Force: force})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", kind, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even if items reference it")
	return cmd
}
