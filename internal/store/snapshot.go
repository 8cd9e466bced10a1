// Package store holds the normalized timeline/team/task dataset as immutable
// snapshots and the closed set of commands that derive new snapshots from
// old ones.
package store

import (
	"fmt"

	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/validation"
)

// Snapshot is one immutable state of the dataset. Accessors return copies;
// commands return new snapshots. The zero value is an empty dataset.
type Snapshot struct {
	timelines     map[string]models.Timeline
	teams         map[string]models.Team
	tasks         map[string]models.Task
	taskTimeline  map[string]string
	timelineOrder []string
	teamOrder     []string
	active        string
}

// Empty returns a snapshot with no timelines, teams or tasks.
func Empty() Snapshot {
	return Snapshot{
		timelines:    map[string]models.Timeline{},
		teams:        map[string]models.Team{},
		tasks:        map[string]models.Task{},
		taskTimeline: map[string]string{},
	}
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		timelines:     make(map[string]models.Timeline, len(s.timelines)),
		teams:         make(map[string]models.Team, len(s.teams)),
		tasks:         make(map[string]models.Task, len(s.tasks)),
		taskTimeline:  make(map[string]string, len(s.taskTimeline)),
		timelineOrder: append([]string(nil), s.timelineOrder...),
		teamOrder:     append([]string(nil), s.teamOrder...),
		active:        s.active,
	}
	for id, tl := range s.timelines {
		out.timelines[id] = tl.Clone()
	}
	for id, team := range s.teams {
		out.teams[id] = team.Clone()
	}
	for id, task := range s.tasks {
		out.tasks[id] = task
	}
	for taskID, timelineID := range s.taskTimeline {
		out.taskTimeline[taskID] = timelineID
	}
	return out
}

// ActiveTimelineID returns the id of the rendered timeline, or "" when there
// are no timelines.
func (s Snapshot) ActiveTimelineID() string { return s.active }

// ActiveTimeline returns the rendered timeline.
func (s Snapshot) ActiveTimeline() (models.Timeline, bool) {
	return s.Timeline(s.active)
}

// Timelines returns all timelines in display order.
func (s Snapshot) Timelines() []models.Timeline {
	out := make([]models.Timeline, 0, len(s.timelineOrder))
	for _, id := range s.timelineOrder {
		out = append(out, s.timelines[id].Clone())
	}
	return out
}

// Teams returns all teams in display order.
func (s Snapshot) Teams() []models.Team {
	out := make([]models.Team, 0, len(s.teamOrder))
	for _, id := range s.teamOrder {
		out = append(out, s.teams[id].Clone())
	}
	return out
}

func (s Snapshot) Timeline(id string) (models.Timeline, bool) {
	tl, ok := s.timelines[id]
	if !ok {
		return models.Timeline{}, false
	}
	return tl.Clone(), true
}

func (s Snapshot) Team(id string) (models.Team, bool) {
	team, ok := s.teams[id]
	if !ok {
		return models.Team{}, false
	}
	return team.Clone(), true
}

func (s Snapshot) Task(id string) (models.Task, bool) {
	task, ok := s.tasks[id]
	return task, ok
}

// TimelineByName finds a timeline by normalized, case-insensitive name.
func (s Snapshot) TimelineByName(name string) (models.Timeline, bool) {
	key := validation.NameKey(name)
	for _, id := range s.timelineOrder {
		if validation.NameKey(s.timelines[id].Name) == key {
			return s.timelines[id].Clone(), true
		}
	}
	return models.Timeline{}, false
}

// TeamByName finds a team by normalized, case-insensitive name.
func (s Snapshot) TeamByName(name string) (models.Team, bool) {
	key := validation.NameKey(name)
	for _, id := range s.teamOrder {
		if validation.NameKey(s.teams[id].Name) == key {
			return s.teams[id].Clone(), true
		}
	}
	return models.Team{}, false
}

// TimelineOf returns the id of the timeline that lists taskID.
func (s Snapshot) TimelineOf(taskID string) (string, bool) {
	id, ok := s.taskTimeline[taskID]
	return id, ok
}

// TimelineTasks returns the tasks of a timeline in insertion order.
func (s Snapshot) TimelineTasks(timelineID string) []models.Task {
	tl, ok := s.timelines[timelineID]
	if !ok {
		return nil
	}
	out := make([]models.Task, 0, len(tl.TaskIDs))
	for _, id := range tl.TaskIDs {
		out = append(out, s.tasks[id])
	}
	return out
}

// TeamTasks returns the tasks a team owns within one timeline, in the
// timeline's insertion order.
func (s Snapshot) TeamTasks(timelineID, teamID string) []models.Task {
	var out []models.Task
	for _, task := range s.TimelineTasks(timelineID) {
		if task.TeamID == teamID {
			out = append(out, task)
		}
	}
	return out
}

// Tasks returns every task, grouped by timeline in display order.
func (s Snapshot) Tasks() []models.Task {
	out := make([]models.Task, 0, len(s.tasks))
	for _, id := range s.timelineOrder {
		out = append(out, s.TimelineTasks(id)...)
	}
	return out
}

// Counts returns the number of timelines, teams and tasks.
func (s Snapshot) Counts() (timelines, teams, tasks int) {
	return len(s.timelines), len(s.teams), len(s.tasks)
}

func (s Snapshot) timelineTaskNames(timelineID, excludeTaskID string) []string {
	tl := s.timelines[timelineID]
	names := make([]string, 0, len(tl.TaskIDs))
	for _, id := range tl.TaskIDs {
		if id == excludeTaskID {
			continue
		}
		names = append(names, s.tasks[id].Name)
	}
	return names
}

func (s Snapshot) timelineNames(excludeID string) []string {
	names := make([]string, 0, len(s.timelineOrder))
	for _, id := range s.timelineOrder {
		if id != excludeID {
			names = append(names, s.timelines[id].Name)
		}
	}
	return names
}

func (s Snapshot) teamNames(excludeID string) []string {
	names := make([]string, 0, len(s.teamOrder))
	for _, id := range s.teamOrder {
		if id != excludeID {
			names = append(names, s.teams[id].Name)
		}
	}
	return names
}

// Check verifies every structural invariant and returns the first
// violation found.
func (s Snapshot) Check() error {
	if len(s.timelineOrder) != len(s.timelines) {
		return fmt.Errorf("timeline order lists %d ids for %d timelines", len(s.timelineOrder), len(s.timelines))
	}
	if len(s.teamOrder) != len(s.teams) {
		return fmt.Errorf("team order lists %d ids for %d teams", len(s.teamOrder), len(s.teams))
	}
	seenNames := map[string]bool{}
	for _, id := range s.timelineOrder {
		tl, ok := s.timelines[id]
		if !ok {
			return fmt.Errorf("timeline order references missing timeline %q", id)
		}
		key := validation.NameKey(tl.Name)
		if key == "" || seenNames[key] {
			return fmt.Errorf("timeline %q has an empty or duplicate name", id)
		}
		seenNames[key] = true
	}
	seenNames = map[string]bool{}
	for _, id := range s.teamOrder {
		team, ok := s.teams[id]
		if !ok {
			return fmt.Errorf("team order references missing team %q", id)
		}
		key := validation.NameKey(team.Name)
		if key == "" || seenNames[key] {
			return fmt.Errorf("team %q has an empty or duplicate name", id)
		}
		seenNames[key] = true
	}
	if len(s.timelines) == 0 && s.active != "" {
		return fmt.Errorf("active timeline %q set without timelines", s.active)
	}
	if len(s.timelines) > 0 {
		if _, ok := s.timelines[s.active]; !ok {
			return fmt.Errorf("active timeline %q does not exist", s.active)
		}
	}

	listed := map[string]string{}
	for _, id := range s.timelineOrder {
		names := map[string]bool{}
		for _, taskID := range s.timelines[id].TaskIDs {
			task, ok := s.tasks[taskID]
			if !ok {
				return fmt.Errorf("timeline %q lists missing task %q", id, taskID)
			}
			if prev, dup := listed[taskID]; dup {
				return fmt.Errorf("task %q listed by timelines %q and %q", taskID, prev, id)
			}
			listed[taskID] = id
			key := validation.NameKey(task.Name)
			if names[key] {
				return fmt.Errorf("timeline %q has duplicate task name %q", id, task.Name)
			}
			names[key] = true
		}
	}
	owned := map[string]bool{}
	for _, id := range s.teamOrder {
		for _, taskID := range s.teams[id].TaskIDs {
			task, ok := s.tasks[taskID]
			if !ok {
				return fmt.Errorf("team %q lists missing task %q", id, taskID)
			}
			if task.TeamID != id {
				return fmt.Errorf("team %q lists task %q owned by %q", id, taskID, task.TeamID)
			}
			if owned[taskID] {
				return fmt.Errorf("task %q listed twice by team %q", taskID, id)
			}
			owned[taskID] = true
		}
	}
	for id, task := range s.tasks {
		if listed[id] == "" {
			return fmt.Errorf("task %q belongs to no timeline", id)
		}
		if s.taskTimeline[id] != listed[id] {
			return fmt.Errorf("task %q timeline index is %q, want %q", id, s.taskTimeline[id], listed[id])
		}
		if !owned[id] {
			return fmt.Errorf("task %q is missing from team %q", id, task.TeamID)
		}
		if err := validation.EnsureProgressInRange(task.Progress); err != nil {
			return fmt.Errorf("task %q: %w", id, err)
		}
		if err := validation.EnsureQuarterOrder(task.Start, task.End); err != nil {
			return fmt.Errorf("task %q: %w", id, err)
		}
		if !task.Color.IsValid() {
			return fmt.Errorf("task %q has invalid color %q", id, task.Color)
		}
	}
	if len(s.taskTimeline) != len(s.tasks) {
		return fmt.Errorf("timeline index has %d entries for %d tasks", len(s.taskTimeline), len(s.tasks))
	}
	return nil
}
