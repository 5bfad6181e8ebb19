package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/runoshun/kanban/internal/domain"
)

// Status colors.
var statusColors = map[domain.Status]lipgloss.Color{
	domain.StatusNew:        lipgloss.Color("#74B9FF"), // Light blue
	domain.StatusInProgress: lipgloss.Color("#FDCB6E"), // Yellow
	domain.StatusDone:       lipgloss.Color("#00B894"), // Green
}

var (
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#636E72"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// statusStyle returns the style for a given status.
func statusStyle(status domain.Status) lipgloss.Style {
	color, ok := statusColors[status]
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(color)
}

// statusIcon returns an icon for a given status.
func statusIcon(status domain.Status) string {
	switch status {
	case domain.StatusNew:
		return "○"
	case domain.StatusInProgress:
		return "●"
	case domain.StatusDone:
		return "✓"
	default:
		return "?"
	}
}

func renderStatus(status domain.Status) string {
	return statusStyle(status).Render(statusIcon(status) + " " + status.Display())
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return domain.FormatLocalTime(*t)
}

func formatDuration(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// printItemList prints items as a table.
// The styled status is the last column so color codes do not skew alignment.
func printItemList(w io.Writer, items []domain.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	// Header
	_, _ = fmt.Fprintln(tw, "ID\tTYPE\tEPIC\tSTART\tEND\tDURATION\tNAME\tSTATUS")

	// Rows
	for _, t := range items {
		epicStr := "-"
		if t.IsSubtask() {
			epicStr = fmt.Sprintf("%d", t.EpicID)
		} else if t.IsEpic() {
			epicStr = fmt.Sprintf("(%d)", len(t.SubtaskIDs))
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			strings.ToLower(string(t.Kind)),
			epicStr,
			formatTime(t.StartTime),
			formatTime(t.EndTime()),
			formatDuration(t.Duration),
			t.Name,
			renderStatus(t.Status),
		)
	}
}

// printItemDetail prints a single item.
func printItemDetail(w io.Writer, t domain.Task) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s #%d: %s", kindTitle(t.Kind), t.ID, t.Name)))
	_, _ = fmt.Fprintf(w, "Status:   %s\n", renderStatus(t.Status))
	if t.IsSubtask() {
		_, _ = fmt.Fprintf(w, "Epic:     #%d\n", t.EpicID)
	}
	if t.IsEpic() {
		ids := make([]string, len(t.SubtaskIDs))
		for i, id := range t.SubtaskIDs {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		subtasks := "none"
		if len(ids) > 0 {
			subtasks = strings.Join(ids, ", ")
		}
		_, _ = fmt.Fprintf(w, "Subtasks: %s\n", subtasks)
	}
	_, _ = fmt.Fprintf(w, "Start:    %s\n", formatTime(t.StartTime))
	_, _ = fmt.Fprintf(w, "End:      %s\n", formatTime(t.EndTime()))
	_, _ = fmt.Fprintf(w, "Duration: %s\n", formatDuration(t.Duration))
	if t.Description != "" {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, t.Description)
	} else {
		_, _ = fmt.Fprintln(w, mutedStyle.Render("(no description)"))
	}
}

func kindTitle(k domain.Kind) string {
	switch k {
	case domain.KindEpic:
		return "Epic"
	case domain.KindSubtask:
		return "Subtask"
	default:
		return "Task"
	}
}
