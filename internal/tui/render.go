package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/lanes"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/util"
)

func (m BoardModel) render() string {
	snap := m.store.Snapshot()
	sections := []string{m.renderTabs(snap)}

	board, ok := lanes.Layout(snap)
	switch {
	case !ok:
		sections = append(sections, m.theme.Dim.Render("No timelines yet. Press n to create one."))
	case board.Empty():
		sections = append(sections, m.renderEmptyRows(board))
	default:
		sections = append(sections, m.renderBoard(board))
	}

	if m.mode == ModeNewTimeline {
		sections = append(sections, m.theme.Input.Render(m.input.View()))
	}
	sections = append(sections, m.renderFooter(board))
	return m.theme.Base.Render(strings.Join(sections, "\n\n"))
}

func (m BoardModel) renderTabs(snap store.Snapshot) string {
	title := m.theme.Header.Render(fmt.Sprintf("%s v%s", config.AppName, versionLabel()))
	timelines := snap.Timelines()
	if len(timelines) > config.MaxTimelineTabs {
		timelines = timelines[:config.MaxTimelineTabs]
	}
	tabs := make([]string, 0, len(timelines))
	for _, tl := range timelines {
		name := truncate(tl.Name, config.TeamColumnWidth)
		if tl.ID == snap.ActiveTimelineID() {
			tabs = append(tabs, m.theme.ActiveTab.Render(name))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title, "  "}, tabs...)...)
}

// cellWidth picks the quarter column width for the current terminal.
func (m BoardModel) cellWidth(quarters int) int {
	if m.width <= 0 || quarters == 0 {
		return config.QuarterColumnWidth
	}
	frame := lipgloss.Width(m.theme.Base.Render(""))
	available := (m.width - frame - config.TeamColumnWidth) / quarters
	return util.Clamp(available, config.MinQuarterColumnWidth, config.QuarterColumnWidth)
}

func (m BoardModel) renderBoard(board lanes.Board) string {
	quarters := board.Quarters()
	cell := m.cellWidth(len(quarters))
	origin := calendar.ToIndex(board.Start)

	var lines []string
	axis := strings.Repeat(" ", config.TeamColumnWidth)
	for _, q := range quarters {
		axis += m.theme.Axis.Render(pad(calendar.FormatLabel(q), cell))
	}
	lines = append(lines, axis, m.theme.Dim.Render(strings.Repeat("─", config.TeamColumnWidth+cell*len(quarters))))

	for _, row := range board.Rows {
		gutter := m.theme.Team.Render(pad(row.Team.Name, config.TeamColumnWidth-1)) + " "
		if row.Lanes == 0 {
			lines = append(lines, gutter+m.theme.Dim.Render("no tasks"))
			continue
		}
		byLane := make([][]lanes.Placement, row.Lanes)
		for _, p := range row.Placements {
			byLane[p.Lane] = append(byLane[p.Lane], p)
		}
		blank := strings.Repeat(" ", config.TeamColumnWidth)
		for lane, placements := range byLane {
			lead := blank
			if lane == 0 {
				lead = gutter
			}
			lines = append(lines,
				lead+m.renderLaneLabels(placements, origin, cell),
				blank+m.renderLaneBars(placements, origin, cell),
			)
		}
	}
	return strings.Join(lines, "\n")
}

// barExtent is the column offset and width of a task's bar. One cell is
// left free at the end so adjacent bars stay apart.
func barExtent(p lanes.Placement, origin, cell int) (offset, width int) {
	offset = (p.Task.StartIndex() - origin) * cell
	width = (p.Task.EndIndex()-p.Task.StartIndex()+1)*cell - 1
	if width < 1 {
		width = 1
	}
	return offset, width
}

func (m BoardModel) renderLaneLabels(placements []lanes.Placement, origin, cell int) string {
	var b strings.Builder
	col := 0
	for _, p := range placements {
		offset, width := barExtent(p, origin, cell)
		b.WriteString(strings.Repeat(" ", offset-col))
		b.WriteString(m.theme.Label.Render(pad(FormatTaskLabel(p.Task), width)))
		col = offset + width
	}
	return b.String()
}

func (m BoardModel) renderLaneBars(placements []lanes.Placement, origin, cell int) string {
	var b strings.Builder
	col := 0
	for _, p := range placements {
		offset, width := barExtent(p, origin, cell)
		b.WriteString(strings.Repeat(" ", offset-col))
		bar := m.bar
		bar.Width = width
		bar.FullColor = m.theme.barColor(p.Task.Color)
		bar.EmptyColor = m.theme.BarEmpty
		b.WriteString(bar.ViewAs(float64(p.Task.Progress) / 100))
		col = offset + width
	}
	return b.String()
}

func (m BoardModel) renderEmptyRows(board lanes.Board) string {
	var lines []string
	for _, row := range board.Rows {
		lines = append(lines, m.theme.Team.Render(pad(row.Team.Name, config.TeamColumnWidth)))
	}
	lines = append(lines, m.theme.Dim.Render(fmt.Sprintf("%q has no tasks yet.", board.Timeline.Name)))
	return strings.Join(lines, "\n")
}

func (m BoardModel) renderFooter(board lanes.Board) string {
	var parts []string
	if m.err != nil {
		parts = append(parts, m.theme.Error.Render(m.err.Error()))
	} else if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, FormatTaskCount(board.TaskCount()))
	parts = append(parts, m.theme.Dim.Render(m.registry.HelpFor(m.mode)))
	return strings.Join(parts, "  ·  ")
}
