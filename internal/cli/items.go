package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/infra/payload"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// itemFlags holds the field flags shared by add and edit.
type itemFlags struct {
	Title       string
	Notes       string
	Status      string
	Type        string
	Parent      string
	Context     string
	Area        string
	Energy      string
	EmailID     string
	EmailThread string
	WaitingFor  string
	Due         string
	Scheduled   string
	JSONFile    string
	Estimate    int
	Importance  int
	Urgency     int
	Starred     bool
}

func (f *itemFlags) bind(cmd *cobra.Command, withTitle bool) {
	fl := cmd.Flags()
	if withTitle {
		fl.StringVarP(&f.Title, "title", "t", "", "Item title")
	}
	fl.StringVarP(&f.Notes, "notes", "n", "", "Free-form notes")
	fl.StringVarP(&f.Status, "status", "s", "", "Status (inbox, next, waiting, scheduled, someday, reference)")
	fl.StringVar(&f.Type, "type", "", "Item type (task, project, folder)")
	fl.StringVarP(&f.Parent, "parent", "p", "", "Parent item ID (empty = root)")
	fl.StringVarP(&f.Context, "context", "c", "", "Context ID")
	fl.StringVarP(&f.Area, "area", "a", "", "Area ID")
	fl.StringVarP(&f.Energy, "energy", "e", "", "Energy required (low, medium, high)")
	fl.StringVar(&f.EmailID, "email-id", "", "Source email ID")
	fl.StringVar(&f.EmailThread, "email-thread", "", "Source email thread ID")
	fl.StringVarP(&f.WaitingFor, "waiting-for", "w", "", "Who or what the item waits on")
	fl.StringVarP(&f.Due, "due", "d", "", "Due date (YYYY-MM-DD, empty clears)")
	fl.StringVar(&f.Scheduled, "scheduled", "", "Scheduled date (YYYY-MM-DD, empty clears)")
	fl.IntVar(&f.Estimate, "estimate", 0, "Time estimate in minutes")
	fl.IntVarP(&f.Importance, "importance", "i", 0, "Importance (1-5)")
	fl.IntVarP(&f.Urgency, "urgency", "u", 0, "Urgency (1-5)")
	fl.BoolVar(&f.Starred, "star", false, "Star the item (--star=false to unstar)")
	fl.StringVar(&f.JSONFile, "from-json", "", "Read fields from a JSON payload file ('-' for stdin)")
}

// patch builds the patch from the JSON payload, then the changed flags.
// Flags win over the payload.
func (f *itemFlags) patch(cmd *cobra.Command) (domain.ItemPatch, error) {
	var p domain.ItemPatch
	if f.JSONFile != "" {
		decoded, err := f.decodePayload(cmd)
		if err != nil {
			return p, err
		}
		p = decoded
	}

	changed := cmd.Flags().Changed
	str := func(name, v string) *string {
		if changed(name) {
			return domain.Ptr(v)
		}
		return nil
	}
	if v := str("title", f.Title); v != nil {
		p.Title = v
	}
	if v := str("notes", f.Notes); v != nil {
		p.Notes = v
	}
	if v := str("parent", f.Parent); v != nil {
		p.ParentID = v
	}
	if v := str("context", f.Context); v != nil {
		p.ContextID = v
	}
	if v := str("area", f.Area); v != nil {
		p.AreaID = v
	}
	if v := str("email-id", f.EmailID); v != nil {
		p.EmailID = v
	}
	if v := str("email-thread", f.EmailThread); v != nil {
		p.EmailThreadID = v
	}
	if v := str("waiting-for", f.WaitingFor); v != nil {
		p.WaitingFor = v
	}
	if changed("status") {
		s, err := domain.ParseStatus(f.Status)
		if err != nil {
			return p, err
		}
		p.Status = &s
	}
	if changed("type") {
		t, err := domain.ParseItemType(f.Type)
		if err != nil {
			return p, err
		}
		p.Type = &t
	}
	if changed("energy") {
		e, err := domain.ParseEnergy(f.Energy)
		if err != nil {
			return p, err
		}
		p.Energy = &e
	}
	if changed("due") {
		d, err := domain.ParseDate(f.Due)
		if err != nil {
			return p, err
		}
		p.DueDate = &d
	}
	if changed("scheduled") {
		d, err := domain.ParseDate(f.Scheduled)
		if err != nil {
			return p, err
		}
		p.ScheduledDate = &d
	}
	if changed("estimate") {
		p.TimeEstimate = domain.Ptr(f.Estimate)
	}
	if changed("importance") {
		p.Importance = domain.Ptr(f.Importance)
	}
	if changed("urgency") {
		p.Urgency = domain.Ptr(f.Urgency)
	}
	if changed("star") {
		p.IsStarred = domain.Ptr(f.Starred)
	}
	return p, nil
}

func (f *itemFlags) decodePayload(cmd *cobra.Command) (domain.ItemPatch, error) {
	var r io.Reader
	if f.JSONFile == "-" {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(f.JSONFile)
		if err != nil {
			return domain.ItemPatch{}, fmt.Errorf("open payload: %w", err)
		}
		defer func() { _ = file.Close() }()
		r = file
	}
	return payload.Decode(r)
}

// newAddCommand creates the add command.
func newAddCommand(c *app.Container) *cobra.Command {
	var (
		flags      itemFlags
		jsonOut    bool
		showSchema bool
	)

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create an item",
		Long: `Create a task, project or folder.

The title is taken from the arguments. Fields can also come from a JSON
payload (see 'gtd add --schema'); explicit flags override the payload.

Examples:
  # Capture into the inbox
  gtd add Call the dentist

  # A next action with a due date
  gtd add Send invoice -s next -d 2025-06-30 -i 4

  # Capture an email from a JSON payload
  gtd add --from-json email.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), payload.Schema())
				return nil
			}
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if title := strings.TrimSpace(strings.Join(args, " ")); title != "" {
				patch.Title = &title
			}
			out, err := c.CreateItemUseCase().Execute(cmd.Context(), usecase.CreateItemInput{Patch: patch})
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s: %s\n", out.Item.Type, out.Item.ID, out.Item.Title)
			return nil
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&showSchema, "schema", false, "Print the JSON payload schema and exit")
	return cmd
}

// newEditCommand creates the edit command.
func newEditCommand(c *app.Container) *cobra.Command {
	var (
		flags   itemFlags
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update item fields",
		Long: `Update the fields of an item. Only the flags you pass are changed.

Status changes follow the GTD flow. Use 'done', 'rm', 'reopen' and
'restore' to enter or leave the done and deleted states.

Examples:
  gtd edit 6f1c... --title "Call Bob" -c @phone
  gtd edit 6f1c... --due ""          # clear the due date
  gtd edit 6f1c... --parent ""       # move to the root`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := flags.patch(cmd)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return domain.ErrNoFieldsToUpdate
			}
			out, err := c.UpdateItemUseCase().Execute(cmd.Context(), usecase.UpdateItemInput{ID: args[0], Patch: patch})
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", out.Item.ID, out.Item.Title)
			return nil
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowItemUseCase().Execute(cmd.Context(), usecase.ShowItemInput{ID: args[0]})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(w, struct {
					Item     *jsonItem   `json:"item"`
					Parent   *jsonItem   `json:"parent,omitempty"`
					Label    string      `json:"label,omitempty"`
					Children []*jsonItem `json:"children"`
					Score    float64     `json:"score"`
				}{
					Item:     toJSONItem(out.Item),
					Parent:   toJSONItem(out.Parent),
					Label:    string(out.Score.Label),
					Children: toJSONItems(out.Children),
					Score:    out.Score.Value,
				})
			}
			printItemDetail(w, out, c.AppConfig.Scoring.EffectiveLabels(), domain.DateOf(c.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printItemDetail(w io.Writer, out *usecase.ShowItemOutput, labels domain.LabelThresholds, today domain.Date) {
	st := defaultStyles()
	item := out.Item
	field := func(name, value string) {
		if value != "" {
			_, _ = fmt.Fprintln(w, st.Label.Render(name+":")+value)
		}
	}

	_, _ = fmt.Fprintln(w, st.Header.Render(item.Title))
	field("ID", item.ID)
	field("Type", string(item.Type))
	field("Status", statusStyle(item.Status).Render(item.Status.Display()))
	if item.Type == domain.TypeTask && !item.Status.IsTerminal() {
		field("Priority", labelStyle(out.Score.Label).Render(fmt.Sprintf("%.1f %s", out.Score.Value, out.Score.Label)))
	}
	if out.Parent != nil {
		field("Parent", out.Parent.Title+st.Muted.Render(" ("+out.Parent.ID+")"))
	} else if item.ParentID != "" {
		field("Parent", item.ParentID+st.Muted.Render(" (missing)"))
	}
	if out.Context != nil {
		field("Context", out.Context.Name)
	} else {
		field("Context", item.ContextID)
	}
	if out.Area != nil {
		field("Area", out.Area.Name)
	} else {
		field("Area", item.AreaID)
	}
	field("Energy", string(item.Energy))
	if item.Type == domain.TypeTask {
		field("Importance", fmt.Sprintf("%d", item.Importance))
		field("Urgency", fmt.Sprintf("%d", item.Urgency))
	}
	if item.IsStarred {
		field("Starred", "★")
	}
	if item.TimeEstimate > 0 {
		field("Estimate", fmt.Sprintf("%d min", item.TimeEstimate))
	}
	field("Due", item.DueDate.String())
	field("Scheduled", item.ScheduledDate.String())
	field("Waiting for", item.WaitingFor)
	field("Reviewed", item.LastReviewed.String())
	field("Email", item.EmailID)
	field("Created", formatTime(item.CreatedDate))
	field("Modified", formatTime(item.ModifiedDate))
	field("Completed", formatTime(item.CompletedDate))

	if item.Notes != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, item.Notes)
	}
	if len(out.Children) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, st.Section.Render(fmt.Sprintf("Children (%d)", len(out.Children))))
		renderTable(w, itemHeader, itemRows(out.Children, labels, today))
	}
}

// newListCommand creates the list command.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Status   string
		Type     string
		Parent   string
		Context  string
		Area     string
		Query    string
		Root     bool
		All      bool
		Deleted  bool
		Priority bool
		JSON     bool
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items",
		Long: `List items in table order.

Done and deleted items are hidden unless --all, --deleted or a matching
--status is given. Use --priority to sort highest priority first.

Examples:
  gtd list -s next --priority
  gtd list --parent 6f1c...
  gtd list --root --type project
  gtd list -q invoice`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.ListItemsInput{
				ContextID:      opts.Context,
				AreaID:         opts.Area,
				Query:          opts.Query,
				IncludeDone:    opts.All,
				IncludeDeleted: opts.Deleted || opts.All,
				ByPriority:     opts.Priority,
			}
			if opts.Status != "" {
				s, err := domain.ParseStatus(opts.Status)
				if err != nil {
					return err
				}
				in.Status = s
			}
			if opts.Type != "" {
				t, err := domain.ParseItemType(opts.Type)
				if err != nil {
					return err
				}
				in.Type = t
			}
			switch {
			case opts.Root && opts.Parent != "":
				return errors.New("--root and --parent cannot be used together")
			case opts.Root:
				in.ParentID = domain.Ptr("")
			case opts.Parent != "":
				in.ParentID = domain.Ptr(opts.Parent)
			}

			out, err := c.ListItemsUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			if opts.JSON {
				return writeJSON(cmd.OutOrStdout(), toJSONItems(out.Items))
			}
			printItems(cmd.OutOrStdout(), out.Items, c.AppConfig.Scoring.EffectiveLabels(), domain.DateOf(c.Clock.Now()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Status, "status", "s", "", "Filter by status")
	f.StringVar(&opts.Type, "type", "", "Filter by type")
	f.StringVarP(&opts.Parent, "parent", "p", "", "Only children of this item")
	f.BoolVar(&opts.Root, "root", false, "Only root items")
	f.StringVarP(&opts.Context, "context", "c", "", "Filter by context ID")
	f.StringVarP(&opts.Area, "area", "a", "", "Filter by area ID")
	f.StringVarP(&opts.Query, "query", "q", "", "Search title and notes")
	f.BoolVar(&opts.All, "all", false, "Include done and deleted items")
	f.BoolVar(&opts.Deleted, "deleted", false, "Include deleted items")
	f.BoolVar(&opts.Priority, "priority", false, "Sort by priority")
	f.BoolVar(&opts.JSON, "json", false, "Output as JSON")
	return cmd
}

// newDoneCommand creates the done command.
func newDoneCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark an item done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CompleteItemUseCase().Execute(cmd.Context(), usecase.CompleteItemInput{ID: args[0]})
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Completed %s: %s\n", out.Item.ID, out.Item.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}

// newRemoveCommand creates the rm command.
func newRemoveCommand(c *app.Container) *cobra.Command {
	var hard, jsonOut bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item",
		Long: `Delete an item. By default the item is soft-deleted and can be
brought back with 'gtd restore'. --hard removes the row from the table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.DeleteItemUseCase().Execute(cmd.Context(), usecase.DeleteItemInput{ID: args[0], Hard: hard})
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			if hard {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", out.Item.ID, out.Item.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Remove the row permanently")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}

// newReopenCommand creates the reopen command.
func newReopenCommand(c *app.Container) *cobra.Command {
	return newRecoverCommand("reopen", "Reopen a done item as a next action", "Reopened",
		func(cmd *cobra.Command, id string) (*usecase.RecoverItemOutput, error) {
			return c.ReopenItemUseCase().Execute(cmd.Context(), usecase.RecoverItemInput{ID: id})
		})
}

// newRestoreCommand creates the restore command.
func newRestoreCommand(c *app.Container) *cobra.Command {
	return newRecoverCommand("restore", "Restore a deleted item to the inbox", "Restored",
		func(cmd *cobra.Command, id string) (*usecase.RecoverItemOutput, error) {
			return c.RestoreItemUseCase().Execute(cmd.Context(), usecase.RecoverItemInput{ID: id})
		})
}

func newRecoverCommand(use, short, verb string, run func(*cobra.Command, string) (*usecase.RecoverItemOutput, error)) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := run(cmd, args[0])
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (%s)\n", verb, out.Item.ID, out.Item.Title, out.Item.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}

// newConvertCommand creates the convert command.
func newConvertCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "convert <id> <task|project|folder>",
		Short: "Change the type of an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := domain.ParseItemType(args[1])
			if err != nil {
				return err
			}
			out, err := c.ConvertItemUseCase().Execute(cmd.Context(), usecase.ConvertItemInput{ID: args[0], Type: t})
			if jsonOut {
				var item *domain.Item
				if out != nil {
					item = out.Item
				}
				return writeItemResult(cmd.OutOrStdout(), item, err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Converted %s to %s\n", out.Item.ID, out.Item.Type)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the result as JSON")
	return cmd
}
