// Package exchange converts between store snapshots and the portable
// roadmap document, validating everything that comes from outside.
package exchange

import (
	"time"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// ExportDateLayout is RFC 3339 in UTC with millisecond precision.
const ExportDateLayout = "2006-01-02T15:04:05.000Z07:00"

// Document is the portable form of a roadmap. Timelines, teams and tasks
// are referenced by name.
type Document struct {
	Scenarios      []Scenario `json:"scenarios" yaml:"scenarios"`
	ActiveScenario string     `json:"activeScenario" yaml:"activeScenario"`
	Swimlanes      []string   `json:"swimlanes" yaml:"swimlanes"`
	ExportDate     string     `json:"exportDate" yaml:"exportDate"`
}

// Scenario is one timeline with its tasks in display order.
type Scenario struct {
	Name  string      `json:"name" yaml:"name"`
	Tasks []TaskEntry `json:"tasks" yaml:"tasks"`
}

// TaskEntry is a task whose team is named by Swimlane.
type TaskEntry struct {
	Name         string           `json:"name" yaml:"name"`
	Swimlane     string           `json:"swimlane" yaml:"swimlane"`
	StartQuarter calendar.Quarter `json:"startQuarter" yaml:"startQuarter"`
	EndQuarter   calendar.Quarter `json:"endQuarter" yaml:"endQuarter"`
	Progress     int              `json:"progress" yaml:"progress"`
	Color        models.Color     `json:"color" yaml:"color"`
}

// TaskCount returns the number of tasks across all scenarios.
func (d Document) TaskCount() int {
	n := 0
	for _, sc := range d.Scenarios {
		n += len(sc.Tasks)
	}
	return n
}

// Export renders snap as a document stamped with now. A snapshot without
// timelines exports with no scenarios, which ParseDocument rejects.
func Export(snap store.Snapshot, now time.Time) Document {
	teams := snap.Teams()
	teamNames := make(map[string]string, len(teams))
	swimlanes := make([]string, 0, len(teams))
	for _, team := range teams {
		teamNames[team.ID] = team.Name
		swimlanes = append(swimlanes, team.Name)
	}

	timelines := snap.Timelines()
	scenarios := make([]Scenario, 0, len(timelines))
	for _, tl := range timelines {
		tasks := snap.TimelineTasks(tl.ID)
		entries := make([]TaskEntry, 0, len(tasks))
		for _, task := range tasks {
			entries = append(entries, TaskEntry{
				Name:         task.Name,
				Swimlane:     teamNames[task.TeamID],
				StartQuarter: task.Start,
				EndQuarter:   task.End,
				Progress:     task.Progress,
				Color:        task.Color,
			})
		}
		scenarios = append(scenarios, Scenario{Name: tl.Name, Tasks: entries})
	}

	doc := Document{
		Scenarios:  scenarios,
		Swimlanes:  swimlanes,
		ExportDate: now.UTC().Format(ExportDateLayout),
	}
	if active, ok := snap.ActiveTimeline(); ok {
		doc.ActiveScenario = active.Name
	}
	return doc
}
