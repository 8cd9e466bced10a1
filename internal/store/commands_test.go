package store

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/util"
)

func mustApply(t *testing.T, s Snapshot, cmd Command) Snapshot {
	t.Helper()
	next, err := s.Apply(cmd)
	if err != nil {
		t.Fatalf("Apply(%T) failed: %v", cmd, err)
	}
	if err := next.Check(); err != nil {
		t.Fatalf("Check after %T failed: %v", cmd, err)
	}
	return next
}

func q(year, number int) calendar.Quarter { return calendar.New(year, number) }

// seedSnapshot builds two timelines (tl-a active first, then tl-b) and two
// teams with three tasks.
func seedSnapshot(t *testing.T) Snapshot {
	t.Helper()
	s := Empty()
	s = mustApply(t, s, CreateTimeline{ID: "tl-a", Name: "Roadmap"})
	s = mustApply(t, s, CreateTimeline{ID: "tl-b", Name: "Stretch"})
	s = mustApply(t, s, SetActiveTimeline{ID: "tl-a"})
	s = mustApply(t, s, CreateTeam{ID: "team-x", Name: "Platform"})
	s = mustApply(t, s, CreateTeam{ID: "team-y", Name: "Mobile"})
	s = mustApply(t, s, CreateTask{ID: "task-1", TimelineID: "tl-a", TeamID: "team-x", Name: "Define Goals", Start: q(2025, 1), End: q(2025, 2)})
	s = mustApply(t, s, CreateTask{ID: "task-2", TimelineID: "tl-a", TeamID: "team-y", Name: "Ship App", Progress: 40, Start: q(2025, 2), End: q(2025, 4), Color: models.ColorIndigo})
	s = mustApply(t, s, CreateTask{ID: "task-3", TimelineID: "tl-b", TeamID: "team-x", Name: "Define Goals", Start: q(2026, 1), End: q(2026, 1)})
	return s
}

func TestCreateTimelineBecomesActive(t *testing.T) {
	s := mustApply(t, Empty(), CreateTimeline{ID: "one", Name: "  Main   Plan "})
	tl, ok := s.ActiveTimeline()
	if !ok || tl.ID != "one" {
		t.Fatalf("expected active timeline one, got %+v", tl)
	}
	if tl.Name != "Main Plan" {
		t.Fatalf("expected normalized name, got %q", tl.Name)
	}
	s = mustApply(t, s, CreateTimeline{ID: "two", Name: "Other"})
	if s.ActiveTimelineID() != "two" {
		t.Fatalf("expected newest timeline active, got %q", s.ActiveTimelineID())
	}
}

func TestCreateTimelineGeneratesID(t *testing.T) {
	s := mustApply(t, Empty(), CreateTimeline{Name: "Main"})
	if s.ActiveTimelineID() == "" {
		t.Fatalf("expected generated id")
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	s := seedSnapshot(t)
	cases := []struct {
		name  string
		cmd   Command
		field string
	}{
		{"timeline", CreateTimeline{Name: "roadmap"}, "timeline name"},
		{"timeline rename", RenameTimeline{ID: "tl-b", Name: " ROADMAP "}, "timeline name"},
		{"team", CreateTeam{Name: "platform"}, "team name"},
		{"team rename", RenameTeam{ID: "team-y", Name: "Platform"}, "team name"},
		{"task", CreateTask{TimelineID: "tl-a", TeamID: "team-y", Name: "define  goals", Start: q(2025, 1), End: q(2025, 1)}, "task name"},
		{"task rename", UpdateTask{ID: "task-2", Patch: TaskPatch{Name: util.Ptr("Define Goals")}}, "task name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := s.Apply(tc.cmd)
			if !errors.Is(err, apperr.ErrDuplicateName) {
				t.Fatalf("expected ErrDuplicateName, got %v", err)
			}
			if apperr.Field(err) != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, apperr.Field(err))
			}
			if !reflect.DeepEqual(next, s) {
				t.Fatalf("snapshot changed on failure")
			}
		})
	}
}

func TestTaskNamesScopedToTimeline(t *testing.T) {
	s := seedSnapshot(t)
	if len(s.TimelineTasks("tl-b")) != 1 || s.TimelineTasks("tl-b")[0].Name != "Define Goals" {
		t.Fatalf("expected same task name allowed across timelines")
	}
	// Moving task-3 into tl-a collides with task-1.
	_, err := s.Apply(UpdateTask{ID: "task-3", Patch: TaskPatch{TimelineID: util.Ptr("tl-a")}})
	if !errors.Is(err, apperr.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on move, got %v", err)
	}
}

func TestRenameKeepsOwnName(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, RenameTimeline{ID: "tl-a", Name: "roadmap"})
	if tl, _ := s.Timeline("tl-a"); tl.Name != "roadmap" {
		t.Fatalf("expected case-only rename, got %q", tl.Name)
	}
	s = mustApply(t, s, UpdateTask{ID: "task-1", Patch: TaskPatch{Name: util.Ptr("DEFINE GOALS")}})
	if task, _ := s.Task("task-1"); task.Name != "DEFINE GOALS" {
		t.Fatalf("expected task rename, got %q", task.Name)
	}
}

func TestRequiredNames(t *testing.T) {
	s := seedSnapshot(t)
	for _, cmd := range []Command{
		CreateTimeline{Name: "   "},
		CreateTeam{Name: ""},
		CreateTask{TimelineID: "tl-a", TeamID: "team-x", Name: "\t", Start: q(2025, 1), End: q(2025, 1)},
		UpdateTask{ID: "task-1", Patch: TaskPatch{Name: util.Ptr(" ")}},
	} {
		if _, err := s.Apply(cmd); !errors.Is(err, apperr.ErrRequiredField) {
			t.Fatalf("%T: expected ErrRequiredField, got %v", cmd, err)
		}
	}
}

func TestTaskValidationFailures(t *testing.T) {
	s := seedSnapshot(t)
	cases := []struct {
		name string
		cmd  Command
		kind error
	}{
		{"progress high", CreateTask{TimelineID: "tl-a", TeamID: "team-x", Name: "A", Progress: 150, Start: q(2025, 1), End: q(2025, 1)}, apperr.ErrRange},
		{"progress low", UpdateTask{ID: "task-1", Patch: TaskPatch{Progress: util.Ptr(-1)}}, apperr.ErrRange},
		{"order", CreateTask{TimelineID: "tl-a", TeamID: "team-x", Name: "A", Start: q(2025, 3), End: q(2025, 2)}, apperr.ErrRange},
		{"order patch", UpdateTask{ID: "task-1", Patch: TaskPatch{End: util.Ptr(q(2024, 4))}}, apperr.ErrRange},
		{"color", CreateTask{TimelineID: "tl-a", TeamID: "team-x", Name: "A", Start: q(2025, 1), End: q(2025, 1), Color: "red"}, apperr.ErrFormat},
		{"zero quarter", CreateTask{TimelineID: "tl-a", TeamID: "team-x", Name: "A"}, apperr.ErrFormat},
		{"missing timeline", CreateTask{TimelineID: "nope", TeamID: "team-x", Name: "A", Start: q(2025, 1), End: q(2025, 1)}, apperr.ErrNotFound},
		{"missing team", UpdateTask{ID: "task-1", Patch: TaskPatch{TeamID: util.Ptr("nope")}}, apperr.ErrNotFound},
		{"missing task", UpdateTask{ID: "nope"}, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := s.Apply(tc.cmd)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if !reflect.DeepEqual(next, s) {
				t.Fatalf("snapshot changed on failure")
			}
		})
	}
}

func TestCreateTaskDefaultsColor(t *testing.T) {
	s := seedSnapshot(t)
	task, _ := s.Task("task-1")
	if task.Color != models.DefaultColor {
		t.Fatalf("expected default color, got %q", task.Color)
	}
	team, _ := s.Team("team-x")
	if !reflect.DeepEqual(team.TaskIDs, []string{"task-1", "task-3"}) {
		t.Fatalf("unexpected team task ids %v", team.TaskIDs)
	}
}

func TestUpdateTaskMovesBetweenTimelineAndTeam(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, UpdateTask{ID: "task-2", Patch: TaskPatch{
		TimelineID: util.Ptr("tl-b"),
		TeamID:     util.Ptr("team-x"),
		Progress:   util.Ptr(100),
	}})
	if tl, _ := s.TimelineOf("task-2"); tl != "tl-b" {
		t.Fatalf("expected task-2 in tl-b, got %q", tl)
	}
	if got := s.TeamTasks("tl-b", "team-x"); len(got) != 2 {
		t.Fatalf("expected two platform tasks in tl-b, got %d", len(got))
	}
	mobile, _ := s.Team("team-y")
	if len(mobile.TaskIDs) != 0 {
		t.Fatalf("expected mobile team emptied, got %v", mobile.TaskIDs)
	}
	task, _ := s.Task("task-2")
	if task.Progress != 100 || task.Color != models.ColorIndigo {
		t.Fatalf("unexpected task after update: %+v", task)
	}
}

func TestDeleteTimelineCascades(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, DeleteTimeline{ID: "tl-a"})
	if _, ok := s.Task("task-1"); ok {
		t.Fatalf("expected task-1 deleted")
	}
	if _, ok := s.Task("task-2"); ok {
		t.Fatalf("expected task-2 deleted")
	}
	if s.ActiveTimelineID() != "tl-b" {
		t.Fatalf("expected tl-b active, got %q", s.ActiveTimelineID())
	}
	team, _ := s.Team("team-x")
	if !reflect.DeepEqual(team.TaskIDs, []string{"task-3"}) {
		t.Fatalf("expected only task-3 left, got %v", team.TaskIDs)
	}
	s = mustApply(t, s, DeleteTimeline{ID: "tl-b"})
	if s.ActiveTimelineID() != "" {
		t.Fatalf("expected no active timeline, got %q", s.ActiveTimelineID())
	}
	if tl, teams, tasks := s.Counts(); tl != 0 || teams != 2 || tasks != 0 {
		t.Fatalf("unexpected counts %d/%d/%d", tl, teams, tasks)
	}
}

func TestDeleteInactiveTimelineKeepsActive(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, DeleteTimeline{ID: "tl-b"})
	if s.ActiveTimelineID() != "tl-a" {
		t.Fatalf("expected tl-a still active, got %q", s.ActiveTimelineID())
	}
}

func TestDeleteTeamCascades(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, DeleteTeam{ID: "team-x"})
	if got := s.TimelineTasks("tl-a"); len(got) != 1 || got[0].ID != "task-2" {
		t.Fatalf("expected only task-2 in tl-a, got %+v", got)
	}
	if got := s.TimelineTasks("tl-b"); len(got) != 0 {
		t.Fatalf("expected tl-b empty, got %+v", got)
	}
	if _, _, tasks := s.Counts(); tasks != 1 {
		t.Fatalf("expected one task left, got %d", tasks)
	}
}

func TestDeleteTaskUnknownIsNoop(t *testing.T) {
	s := seedSnapshot(t)
	next := mustApply(t, s, DeleteTask{ID: "ghost"})
	if !reflect.DeepEqual(next, s) {
		t.Fatalf("expected unchanged snapshot")
	}
	next = mustApply(t, s, DeleteTask{ID: "task-1"})
	if _, ok := next.Task("task-1"); ok {
		t.Fatalf("expected task-1 removed")
	}
	if _, ok := s.Task("task-1"); !ok {
		t.Fatalf("source snapshot must keep task-1")
	}
}

func TestMissingReferences(t *testing.T) {
	s := seedSnapshot(t)
	for _, cmd := range []Command{
		RenameTimeline{ID: "x", Name: "A"},
		DeleteTimeline{ID: "x"},
		SetActiveTimeline{ID: "x"},
		MoveTimeline{ID: "x"},
		RenameTeam{ID: "x", Name: "A"},
		DeleteTeam{ID: "x"},
		MoveTeam{ID: "x"},
	} {
		if _, err := s.Apply(cmd); !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("%T: expected ErrNotFound, got %v", cmd, err)
		}
	}
}

func TestMoveTeamAndTimeline(t *testing.T) {
	s := seedSnapshot(t)
	s = mustApply(t, s, MoveTeam{ID: "team-y", Position: 0})
	if teams := s.Teams(); teams[0].ID != "team-y" || teams[1].ID != "team-x" {
		t.Fatalf("unexpected team order %v", teams)
	}
	s = mustApply(t, s, MoveTimeline{ID: "tl-a", Position: 1})
	if tls := s.Timelines(); tls[0].ID != "tl-b" || tls[1].ID != "tl-a" {
		t.Fatalf("unexpected timeline order %v", tls)
	}
	if _, err := s.Apply(MoveTeam{ID: "team-y", Position: 2}); !errors.Is(err, apperr.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestReplaceStateDetachesSource(t *testing.T) {
	source := seedSnapshot(t)
	s := mustApply(t, Empty(), ReplaceState{Snapshot: source})
	s = mustApply(t, s, DeleteTask{ID: "task-1"})
	if _, ok := source.Task("task-1"); !ok {
		t.Fatalf("replace must not alias the source snapshot")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := seedSnapshot(t)
	tl, _ := s.Timeline("tl-a")
	tl.TaskIDs[0] = "mutated"
	again, _ := s.Timeline("tl-a")
	if again.TaskIDs[0] != "task-1" {
		t.Fatalf("accessor leaked internal slice")
	}
	if _, ok := s.TimelineByName("STRETCH"); !ok {
		t.Fatalf("expected case-insensitive timeline lookup")
	}
	if team, ok := s.TeamByName(" mobile "); !ok || team.ID != "team-y" {
		t.Fatalf("expected team lookup by name, got %+v", team)
	}
}

func TestCheckDetectsCorruption(t *testing.T) {
	s := seedSnapshot(t).clone()
	delete(s.taskTimeline, "task-1")
	if err := s.Check(); err == nil {
		t.Fatalf("expected Check to fail")
	}
}

func TestManyTasksStayConsistent(t *testing.T) {
	s := seedSnapshot(t)
	for i := 0; i < 20; i++ {
		s = mustApply(t, s, CreateTask{
			TimelineID: "tl-a",
			TeamID:     "team-y",
			Name:       fmt.Sprintf("Task %d", i),
			Progress:   i * 5,
			Start:      q(2025, 1).Add(i),
			End:        q(2025, 1).Add(i + 2),
		})
	}
	s = mustApply(t, s, DeleteTeam{ID: "team-y"})
	if got := len(s.TimelineTasks("tl-a")); got != 1 {
		t.Fatalf("expected one task left in tl-a, got %d", got)
	}
}

