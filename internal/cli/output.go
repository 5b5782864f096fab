package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/gtdsheet/internal/domain"
)

// jsonItem is the JSON rendering of an item. Keys match the table header.
type jsonItem struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Notes         string  `json:"notes,omitempty"`
	Status        string  `json:"status"`
	Type          string  `json:"type"`
	ParentID      string  `json:"parentId,omitempty"`
	ContextID     string  `json:"contextId,omitempty"`
	AreaID        string  `json:"areaId,omitempty"`
	Energy        string  `json:"energy,omitempty"`
	EmailID       string  `json:"emailId,omitempty"`
	EmailThreadID string  `json:"emailThreadId,omitempty"`
	WaitingFor    string  `json:"waitingFor,omitempty"`
	DueDate       string  `json:"dueDate,omitempty"`
	ScheduledDate string  `json:"scheduledDate,omitempty"`
	LastReviewed  string  `json:"lastReviewed,omitempty"`
	CompletedDate string  `json:"completedDate,omitempty"`
	CreatedDate   string  `json:"createdDate,omitempty"`
	ModifiedDate  string  `json:"modifiedDate,omitempty"`
	Priority      float64 `json:"priority"`
	TimeEstimate  int     `json:"timeEstimate,omitempty"`
	Importance    int     `json:"importance"`
	Urgency       int     `json:"urgency"`
	SortOrder     int     `json:"sortOrder"`
	IsStarred     bool    `json:"isStarred"`
}

func toJSONItem(item *domain.Item) *jsonItem {
	if item == nil {
		return nil
	}
	return &jsonItem{
		ID:            item.ID,
		Title:         item.Title,
		Notes:         item.Notes,
		Status:        string(item.Status),
		Type:          string(item.Type),
		ParentID:      item.ParentID,
		ContextID:     item.ContextID,
		AreaID:        item.AreaID,
		Energy:        string(item.Energy),
		EmailID:       item.EmailID,
		EmailThreadID: item.EmailThreadID,
		WaitingFor:    item.WaitingFor,
		DueDate:       item.DueDate.String(),
		ScheduledDate: item.ScheduledDate.String(),
		LastReviewed:  item.LastReviewed.String(),
		CompletedDate: formatTime(item.CompletedDate),
		CreatedDate:   formatTime(item.CreatedDate),
		ModifiedDate:  formatTime(item.ModifiedDate),
		Priority:      item.Priority,
		TimeEstimate:  item.TimeEstimate,
		Importance:    item.Importance,
		Urgency:       item.Urgency,
		SortOrder:     item.SortOrder,
		IsStarred:     item.IsStarred,
	}
}

func toJSONItems(items []*domain.Item) []*jsonItem {
	out := make([]*jsonItem, 0, len(items))
	for _, item := range items {
		out = append(out, toJSONItem(item))
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.TimestampLayout)
}

// itemResult is the --json output of a mutating item command.
type itemResult struct {
	Item *jsonItem `json:"item,omitempty"`
	domain.Result
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeItemResult renders the outcome of a mutation as a Result.
// The error is returned unchanged so the exit status still reflects it.
func writeItemResult(w io.Writer, item *domain.Item, err error) error {
	res := itemResult{Result: domain.ResultOf(err)}
	if err == nil {
		res.Item = toJSONItem(item)
	}
	if encErr := writeJSON(w, res); encErr != nil {
		return encErr
	}
	return err
}

// renderTable pads columns to their widest cell. Widths are measured
// with lipgloss so styled cells line up.
func renderTable(w io.Writer, header []string, rows [][]string) {
	st := defaultStyles()
	all := append([][]string{header}, rows...)
	widths := make([]int, len(header))
	for _, row := range all {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	for r, row := range all {
		var b strings.Builder
		for i, cell := range row {
			if r == 0 {
				cell = st.Header.Render(cell)
			}
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
}

// itemRows formats items for renderTable. Labels use the configured thresholds.
func itemRows(items []*domain.Item, labels domain.LabelThresholds, today domain.Date) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		label := itemLabel(item, labels, today)
		priority := ""
		if label != "" {
			priority = labelStyle(label).Render(fmt.Sprintf("%.1f %s", item.Priority, label))
		}
		title := item.Title
		if item.IsStarred {
			title = "★ " + title
		}
		rows = append(rows, []string{
			item.ID,
			statusStyle(item.Status).Render(statusIcon(item.Status) + " " + string(item.Status)),
			string(item.Type),
			priority,
			item.DueDate.String(),
			title,
		})
	}
	return rows
}

var itemHeader = []string{"ID", "STATUS", "TYPE", "PRIORITY", "DUE", "TITLE"}

// printItems renders items as a table, or a placeholder when there are none.
func printItems(w io.Writer, items []*domain.Item, labels domain.LabelThresholds, today domain.Date) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, defaultStyles().Muted.Render("No items."))
		return
	}
	renderTable(w, itemHeader, itemRows(items, labels, today))
}

// itemLabel labels a stored priority. Only open tasks carry a label.
func itemLabel(item *domain.Item, labels domain.LabelThresholds, today domain.Date) domain.PriorityLabel {
	if item.Type != domain.TypeTask || item.Status.IsTerminal() {
		return ""
	}
	if item.ScheduledDate.After(today) {
		return domain.LabelFuture
	}
	return labels.Label(item.Priority)
}

// printReport summarizes a batch run and how to resume it.
func printReport(w io.Writer, verb string, report domain.BatchReport) {
	st := defaultStyles()
	_, _ = fmt.Fprintf(w, "%s: processed %d, changed %d\n", verb, report.Processed, report.Changed)
	for _, e := range report.Errors {
		prefix := ""
		if e.Row > 0 {
			prefix = fmt.Sprintf("row %d: ", e.Row)
		}
		_, _ = fmt.Fprintln(w, st.Error.Render("  error: ")+prefix+e.Error())
	}
	if !report.Complete {
		_, _ = fmt.Fprintln(w, st.Warning.Render(fmt.Sprintf("Stopped early. Resume with --cursor %d", report.NextCursor)))
	}
}

// printSettings shows the current focus.
func printSettings(w io.Writer, s domain.Settings) {
	st := defaultStyles()
	orAny := func(v string) string {
		if v == "" {
			return st.Muted.Render("(any)")
		}
		return v
	}
	minutes := ""
	if s.AvailableMinutes > 0 {
		minutes = fmt.Sprintf("%d", s.AvailableMinutes)
	}
	_, _ = fmt.Fprintln(w, st.Label.Render("Context:")+orAny(s.CurrentContext))
	_, _ = fmt.Fprintln(w, st.Label.Render("Energy:")+orAny(string(s.CurrentEnergy)))
	_, _ = fmt.Fprintln(w, st.Label.Render("Minutes:")+orAny(minutes))
}
