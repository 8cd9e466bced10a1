// Package lanes assigns overlapping tasks to stacked visual lanes and lays
// out a timeline as one row per team.
package lanes

import (
	"sort"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// Placement pairs a task with its lane. Lane 0 is the top lane.
type Placement struct {
	Task models.Task
	Lane int
}

// Pack places each task in the lowest lane whose last task ends strictly
// before the task starts, opening a new lane when none qualifies. Tasks are
// visited by (start, end, input position), and placements are returned in
// that order. The result is deterministic and uses the minimum number of
// lanes.
func Pack(tasks []models.Task) []Placement {
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := tasks[order[a]], tasks[order[b]]
		if ta.StartIndex() != tb.StartIndex() {
			return ta.StartIndex() < tb.StartIndex()
		}
		return ta.EndIndex() < tb.EndIndex()
	})

	var laneEnds []int
	out := make([]Placement, 0, len(tasks))
	for _, i := range order {
		task := tasks[i]
		lane := -1
		for l, end := range laneEnds {
			if end < task.StartIndex() {
				lane = l
				break
			}
		}
		if lane < 0 {
			lane = len(laneEnds)
			laneEnds = append(laneEnds, task.EndIndex())
		} else {
			laneEnds[lane] = task.EndIndex()
		}
		out = append(out, Placement{Task: task, Lane: lane})
	}
	return out
}

// LaneCount returns the number of lanes used by placements.
func LaneCount(placements []Placement) int {
	n := 0
	for _, p := range placements {
		if p.Lane+1 > n {
			n = p.Lane + 1
		}
	}
	return n
}

// LaneOf returns the lane for each task id.
func LaneOf(placements []Placement) map[string]int {
	out := make(map[string]int, len(placements))
	for _, p := range placements {
		out[p.Task.ID] = p.Lane
	}
	return out
}

// Row is one team's band of the board.
type Row struct {
	Team       models.Team
	Placements []Placement
	Lanes      int
}

// Board is the packed layout of one timeline.
type Board struct {
	Timeline models.Timeline
	Rows     []Row
	// Start and End bound every placed task. Both are zero when the timeline
	// has no tasks.
	Start calendar.Quarter
	End   calendar.Quarter
}

// Empty reports whether no task was placed.
func (b Board) Empty() bool {
	for _, row := range b.Rows {
		if len(row.Placements) > 0 {
			return false
		}
	}
	return true
}

// Quarters lists the axis quarters from Start to End.
func (b Board) Quarters() []calendar.Quarter {
	if b.Empty() {
		return nil
	}
	qs, _ := calendar.Range(b.Start, b.End)
	return qs
}

// TaskCount counts the placed tasks.
func (b Board) TaskCount() int {
	n := 0
	for _, row := range b.Rows {
		n += len(row.Placements)
	}
	return n
}

// Layout packs the active timeline of snap. ok is false when there is no
// active timeline.
func Layout(snap store.Snapshot) (Board, bool) {
	return LayoutTimeline(snap, snap.ActiveTimelineID())
}

// LayoutTimeline packs the given timeline, one row per team in display order,
// including teams with no tasks.
func LayoutTimeline(snap store.Snapshot, timelineID string) (Board, bool) {
	tl, ok := snap.Timeline(timelineID)
	if !ok {
		return Board{}, false
	}
	board := Board{Timeline: tl}
	var bounds []calendar.Quarter
	for _, team := range snap.Teams() {
		placements := Pack(snap.TeamTasks(timelineID, team.ID))
		for _, p := range placements {
			bounds = append(bounds, p.Task.Start, p.Task.End)
		}
		board.Rows = append(board.Rows, Row{
			Team:       team,
			Placements: placements,
			Lanes:      LaneCount(placements),
		})
	}
	if lo, hi, ok := calendar.Window(bounds...); ok {
		board.Start, board.End = lo, hi
	}
	return board, true
}
