package models

import (
	"strings"

	"github.com/akyairhashvil/roadmap/internal/calendar"
)

// Color enumerates the bar colors a task can carry.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorIndigo Color = "indigo"
)

// DefaultColor is used when a task is created without one.
const DefaultColor = ColorBlue

// Colors lists the accepted colors in display order.
var Colors = []Color{ColorBlue, ColorIndigo}

func (c Color) IsValid() bool {
	return c == ColorBlue || c == ColorIndigo
}

// ParseColor matches text against the known colors, ignoring case.
func ParseColor(text string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(text)))
	return c, c.IsValid()
}

// Timeline is a scenario: an ordered set of tasks rendered together.
type Timeline struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TaskIDs []string `json:"taskIds"`
}

// Team is a swimlane that owns tasks across timelines.
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TaskIDs []string `json:"taskIds"`
}

// Task is a bar on the roadmap. It belongs to exactly one timeline (through
// Timeline.TaskIDs) and one team.
type Task struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	TeamID   string           `json:"teamId"`
	Start    calendar.Quarter `json:"startQuarter"`
	End      calendar.Quarter `json:"endQuarter"`
	Progress int              `json:"progress"`
	Color    Color            `json:"color"`
}

// StartIndex is the linear index of the first quarter.
func (t Task) StartIndex() int { return calendar.ToIndex(t.Start) }

// EndIndex is the linear index of the last quarter.
func (t Task) EndIndex() int { return calendar.ToIndex(t.End) }

// Overlaps reports whether the inclusive quarter ranges intersect.
func (t Task) Overlaps(other Task) bool {
	return t.StartIndex() <= other.EndIndex() && other.StartIndex() <= t.EndIndex()
}

// Clone returns a copy that shares no slices with t.
func (t Timeline) Clone() Timeline {
	t.TaskIDs = append(make([]string, 0, len(t.TaskIDs)), t.TaskIDs...)
	return t
}

// Clone returns a copy that shares no slices with t.
func (t Team) Clone() Team {
	t.TaskIDs = append(make([]string, 0, len(t.TaskIDs)), t.TaskIDs...)
	return t
}
