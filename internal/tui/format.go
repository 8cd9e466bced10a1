package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/models"
)

// FormatSpan renders a task's quarter range, collapsing single-quarter
// tasks to one label.
func FormatSpan(start, end calendar.Quarter) string {
	if calendar.Compare(start, end) == 0 {
		return calendar.FormatLabel(start)
	}
	return fmt.Sprintf("%s – %s", calendar.FormatLabel(start), calendar.FormatLabel(end))
}

// FormatTaskLabel is the text drawn above a task's bar.
func FormatTaskLabel(t models.Task) string {
	return fmt.Sprintf("%s %d%%", t.Name, t.Progress)
}

// FormatTaskCount formats task counts for the footer.
func FormatTaskCount(n int) string {
	switch n {
	case 0:
		return "No tasks"
	case 1:
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

// truncate shortens text to max cells, ANSI-aware.
func truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.StringWidth(text) <= max {
		return text
	}
	return ansi.Truncate(text, max, config.TruncationSuffix)
}

// pad right-pads text with spaces to exactly width cells.
func pad(text string, width int) string {
	text = truncate(text, width)
	gap := width - ansi.StringWidth(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}
