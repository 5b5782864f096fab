package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/gtdsheet/internal/domain"
)

// colors is the palette shared by every command.
var colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color

	// Status colors
	Inbox     lipgloss.Color
	Next      lipgloss.Color
	Waiting   lipgloss.Color
	Scheduled lipgloss.Color
	Someday   lipgloss.Color
	Done      lipgloss.Color
	Deleted   lipgloss.Color

	// Label colors
	Critical lipgloss.Color
	High     lipgloss.Color
	Medium   lipgloss.Color
	Low      lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow

	Inbox:     lipgloss.Color("#A29BFE"), // Lavender
	Next:      lipgloss.Color("#74B9FF"), // Light blue
	Waiting:   lipgloss.Color("#FDCB6E"), // Yellow
	Scheduled: lipgloss.Color("#81ECEC"), // Teal
	Someday:   lipgloss.Color("#B2BEC3"), // Light gray
	Done:      lipgloss.Color("#00B894"), // Green
	Deleted:   lipgloss.Color("#636E72"), // Gray

	Critical: lipgloss.Color("#D63031"), // Red
	High:     lipgloss.Color("#E17055"), // Orange
	Medium:   lipgloss.Color("#FDCB6E"), // Yellow
	Low:      lipgloss.Color("#B2BEC3"), // Light gray
}

// styles contains the lipgloss styles used by command output.
type styles struct {
	Header  lipgloss.Style
	Section lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// defaultStyles returns the default output styles.
func defaultStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Primary),
		Section: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		Label: lipgloss.NewStyle().
			Foreground(colors.Muted).
			Width(12),
		Muted: lipgloss.NewStyle().
			Foreground(colors.Muted),
		Success: lipgloss.NewStyle().
			Foreground(colors.Success),
		Warning: lipgloss.NewStyle().
			Foreground(colors.Warning),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Error),
	}
}

// statusStyle returns the badge style for a status.
func statusStyle(status domain.Status) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch status {
	case domain.StatusInbox:
		return style.Foreground(colors.Inbox)
	case domain.StatusNext:
		return style.Foreground(colors.Next).Bold(true)
	case domain.StatusWaiting:
		return style.Foreground(colors.Waiting)
	case domain.StatusScheduled:
		return style.Foreground(colors.Scheduled)
	case domain.StatusSomeday, domain.StatusReference:
		return style.Foreground(colors.Someday)
	case domain.StatusDone:
		return style.Foreground(colors.Done)
	case domain.StatusDeleted:
		return style.Foreground(colors.Deleted).Strikethrough(true)
	default:
		return style
	}
}

// labelStyle returns the style for a priority label.
func labelStyle(label domain.PriorityLabel) lipgloss.Style {
	style := lipgloss.NewStyle()
	switch label {
	case domain.LabelCritical:
		return style.Foreground(colors.Critical).Bold(true)
	case domain.LabelHigh:
		return style.Foreground(colors.High)
	case domain.LabelMedium:
		return style.Foreground(colors.Medium)
	case domain.LabelLow:
		return style.Foreground(colors.Low)
	default:
		return style.Foreground(colors.Muted)
	}
}

// statusIcon returns a one-character marker for a status.
func statusIcon(status domain.Status) string {
	switch status {
	case domain.StatusInbox:
		return "○"
	case domain.StatusNext:
		return "●"
	case domain.StatusWaiting:
		return "◐"
	case domain.StatusScheduled:
		return "◷"
	case domain.StatusSomeday:
		return "◌"
	case domain.StatusReference:
		return "□"
	case domain.StatusDone:
		return "✔"
	case domain.StatusDeleted:
		return "✗"
	default:
		return " "
	}
}
