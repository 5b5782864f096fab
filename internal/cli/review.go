package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/runoshun/gtdsheet/internal/app"
	"github.com/runoshun/gtdsheet/internal/domain"
	"github.com/runoshun/gtdsheet/internal/usecase"
	"github.com/spf13/cobra"
)

// newNextCommand creates the next command.
func newNextCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Next actions grouped by context",
		Long: `Show open next actions grouped by context, highest priority first.
Actions without a known context are listed under "No Context".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buckets, err := c.ReviewAnalyzer().NextActionsByContext(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				type jsonBucket struct {
					Context string      `json:"context"`
					Items   []*jsonItem `json:"items"`
				}
				out := make([]jsonBucket, 0, len(buckets))
				for _, b := range buckets {
					out = append(out, jsonBucket{Context: b.Label, Items: toJSONItems(b.Items)})
				}
				return writeJSON(w, out)
			}
			printBuckets(w, buckets, c)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printBuckets(w io.Writer, buckets []usecase.ContextBucket, c *app.Container) {
	st := defaultStyles()
	if len(buckets) == 0 {
		_, _ = fmt.Fprintln(w, st.Muted.Render("No next actions."))
		return
	}
	labels := c.AppConfig.Scoring.EffectiveLabels()
	today := domain.DateOf(c.Clock.Now())
	for i, b := range buckets {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, st.Section.Render(fmt.Sprintf("%s (%d)", b.Label, len(b.Items))))
		printItems(w, b.Items, labels, today)
	}
}

// newItemViewCommand builds a read-only command listing one review view.
func newItemViewCommand(c *app.Container, use, short string, view func(*usecase.ReviewAnalyzer, context.Context) ([]*domain.Item, error)) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := view(c.ReviewAnalyzer(), cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), toJSONItems(items))
			}
			printItems(cmd.OutOrStdout(), items, c.AppConfig.Scoring.EffectiveLabels(), domain.DateOf(c.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// newSubtasksCommand creates the subtasks command.
func newSubtasksCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "subtasks <id>",
		Short: "Children of an item in table order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.ReviewAnalyzer().Subtasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), toJSONItems(items))
			}
			printItems(cmd.OutOrStdout(), items, c.AppConfig.Scoring.EffectiveLabels(), domain.DateOf(c.Clock.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// newStalledCommand creates the stalled command.
func newStalledCommand(c *app.Container) *cobra.Command {
	return newItemViewCommand(c, "stalled", "Open projects with no open next action",
		(*usecase.ReviewAnalyzer).StalledProjects)
}

// newOverdueCommand creates the overdue command.
func newOverdueCommand(c *app.Container) *cobra.Command {
	return newItemViewCommand(c, "overdue", "Open items due before today",
		(*usecase.ReviewAnalyzer).Overdue)
}

// newTodayCommand creates the today command.
func newTodayCommand(c *app.Container) *cobra.Command {
	return newItemViewCommand(c, "today", "Open items due today",
		(*usecase.ReviewAnalyzer).DueToday)
}

// newReviewCommand creates the weekly review command.
func newReviewCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Weekly review checklist",
		Long: fmt.Sprintf(`Walk through the weekly review: the inbox to process, overdue and
due-today items, stalled projects, projects not reviewed in the last %d
days, what you are waiting for, and next actions by context.

Mark a project reviewed with 'gtd reviewed <id>'.`, usecase.ReviewInterval),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.WeeklyReviewUseCase().Execute(cmd.Context(), usecase.WeeklyReviewInput{})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if jsonOut {
				next := make(map[string][]*jsonItem, len(out.NextActions))
				for _, b := range out.NextActions {
					next[b.Label] = toJSONItems(b.Items)
				}
				return writeJSON(w, map[string]any{
					"today":       out.Today.String(),
					"inbox":       toJSONItems(out.Inbox),
					"overdue":     toJSONItems(out.Overdue),
					"dueToday":    toJSONItems(out.DueToday),
					"stalled":     toJSONItems(out.Stalled),
					"needsReview": toJSONItems(out.NeedsReview),
					"waiting":     toJSONItems(out.Waiting),
					"nextActions": next,
				})
			}

			st := defaultStyles()
			labels := c.AppConfig.Scoring.EffectiveLabels()
			_, _ = fmt.Fprintln(w, st.Header.Render("Weekly review "+out.Today.String()))
			for _, section := range []struct {
				title string
				items []*domain.Item
			}{
				{"Inbox", out.Inbox},
				{"Overdue", out.Overdue},
				{"Due today", out.DueToday},
				{"Stalled projects", out.Stalled},
				{"Projects to review", out.NeedsReview},
				{"Waiting for", out.Waiting},
			} {
				_, _ = fmt.Fprintln(w)
				_, _ = fmt.Fprintln(w, st.Section.Render(fmt.Sprintf("%s (%d)", section.title, len(section.items))))
				printItems(w, section.items, labels, out.Today)
			}
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, st.Section.Render("Next actions"))
			printBuckets(w, out.NextActions, c)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// newReviewedCommand creates the reviewed command.
func newReviewedCommand(c *app.Container) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "reviewed <id>",
		Short: "Mark an item reviewed today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.MarkReviewedUseCase().Execute(cmd.Context(), usecase.MarkReviewedInput{ID: args[0]})
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
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %s on %s\n", out.Item.Title, out.Item.LastReviewed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
