package testutil

import (
	"fmt"
	"testing"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/store"
	"github.com/akyairhashvil/roadmap/internal/util"
)

// TaskBuilder provides fluent API for creating test tasks.
type TaskBuilder struct {
	task models.Task
}

func NewTask() *TaskBuilder {
	return &TaskBuilder{
		task: models.Task{
			ID:       "task",
			Name:     "Test Task",
			TeamID:   "team",
			Start:    calendar.New(2025, 1),
			End:      calendar.New(2025, 1),
			Progress: 0,
			Color:    models.DefaultColor,
		},
	}
}

func (b *TaskBuilder) WithID(id string) *TaskBuilder {
	b.task.ID = id
	return b
}

func (b *TaskBuilder) WithName(name string) *TaskBuilder {
	b.task.Name = name
	return b
}

func (b *TaskBuilder) WithTeam(teamID string) *TaskBuilder {
	b.task.TeamID = teamID
	return b
}

// Spanning sets the quarter range from two labels such as "Q1 2025".
func (b *TaskBuilder) Spanning(start, end string) *TaskBuilder {
	b.task.Start = MustQuarter(start)
	b.task.End = MustQuarter(end)
	return b
}

func (b *TaskBuilder) WithProgress(p int) *TaskBuilder {
	b.task.Progress = p
	return b
}

func (b *TaskBuilder) WithColor(c models.Color) *TaskBuilder {
	b.task.Color = c
	return b
}

func (b *TaskBuilder) Build() models.Task {
	return b.task
}

// MustQuarter parses a label and panics on malformed test input.
func MustQuarter(label string) calendar.Quarter {
	q, err := calendar.ParseLabel(label)
	if err != nil {
		panic(fmt.Sprintf("bad quarter label %q: %v", label, err))
	}
	return q
}

// RoadmapBuilder populates a store through its public commands, failing the
// test on the first error. Timelines and teams are remembered by name.
type RoadmapBuilder struct {
	t         *testing.T
	store     *store.Store
	timelines map[string]string
	teams     map[string]string
	current   string
}

func NewRoadmap(t *testing.T) *RoadmapBuilder {
	t.Helper()
	return &RoadmapBuilder{
		t:         t,
		store:     store.New(),
		timelines: map[string]string{},
		teams:     map[string]string{},
	}
}

// WithTimeline creates a timeline; later WithTask calls add to it.
func (b *RoadmapBuilder) WithTimeline(name string) *RoadmapBuilder {
	b.t.Helper()
	tl, err := b.store.CreateTimeline(name)
	if err != nil {
		b.t.Fatalf("CreateTimeline failed: %v", err)
	}
	b.timelines[name] = tl.ID
	b.current = tl.ID
	return b
}

func (b *RoadmapBuilder) WithTeams(names ...string) *RoadmapBuilder {
	b.t.Helper()
	for _, name := range names {
		team, err := b.store.CreateTeam(name)
		if err != nil {
			b.t.Fatalf("CreateTeam failed: %v", err)
		}
		b.teams[name] = team.ID
	}
	return b
}

// WithTask adds a task to the most recent timeline, creating the team when
// it is not known yet.
func (b *RoadmapBuilder) WithTask(team, name, start, end string, progress int) *RoadmapBuilder {
	b.t.Helper()
	if b.current == "" {
		b.WithTimeline("Roadmap")
	}
	if _, ok := b.teams[team]; !ok {
		b.WithTeams(team)
	}
	if _, err := b.store.CreateTask(b.current, b.teams[team], name, progress, MustQuarter(start), MustQuarter(end), ""); err != nil {
		b.t.Fatalf("CreateTask failed: %v", err)
	}
	return b
}

// Activate makes the named timeline active.
func (b *RoadmapBuilder) Activate(name string) *RoadmapBuilder {
	b.t.Helper()
	if err := b.store.SetActiveTimeline(b.TimelineID(name)); err != nil {
		b.t.Fatalf("SetActiveTimeline failed: %v", err)
	}
	return b
}

func (b *RoadmapBuilder) TimelineID(name string) string { return b.timelines[name] }

func (b *RoadmapBuilder) TeamID(name string) string { return b.teams[name] }

func (b *RoadmapBuilder) Store() *store.Store { return b.store }

func (b *RoadmapBuilder) Snapshot() store.Snapshot { return b.store.Snapshot() }

// PatchBuilder assembles a store.TaskPatch one field at a time.
type PatchBuilder struct {
	patch store.TaskPatch
}

func NewPatch() *PatchBuilder {
	return &PatchBuilder{}
}

func (b *PatchBuilder) Name(name string) *PatchBuilder {
	b.patch.Name = util.Ptr(name)
	return b
}

func (b *PatchBuilder) Progress(p int) *PatchBuilder {
	b.patch.Progress = util.Ptr(p)
	return b
}

// Spanning sets both quarters from labels such as "Q1 2025".
func (b *PatchBuilder) Spanning(start, end string) *PatchBuilder {
	b.patch.Start = util.Ptr(MustQuarter(start))
	b.patch.End = util.Ptr(MustQuarter(end))
	return b
}

func (b *PatchBuilder) Color(c models.Color) *PatchBuilder {
	b.patch.Color = util.Ptr(c)
	return b
}

func (b *PatchBuilder) Team(teamID string) *PatchBuilder {
	b.patch.TeamID = util.Ptr(teamID)
	return b
}

func (b *PatchBuilder) Timeline(timelineID string) *PatchBuilder {
	b.patch.TimelineID = util.Ptr(timelineID)
	return b
}

func (b *PatchBuilder) Build() store.TaskPatch {
	return b.patch
}
