package store

import (
	"github.com/google/uuid"

	"github.com/akyairhashvil/roadmap/internal/apperr"
	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
	"github.com/akyairhashvil/roadmap/internal/validation"
)

// Command is one of the mutations defined in this package. Each command
// validates fully before touching any index, and runs against a private
// copy, so a failure leaves the source snapshot untouched.
type Command interface {
	apply(s *Snapshot) error
}

// Apply derives the snapshot that results from cmd. On error the receiver
// is returned unchanged. Create commands with an empty ID get a fresh uuid.
func (s Snapshot) Apply(cmd Command) (Snapshot, error) {
	next := s.clone()
	if err := cmd.apply(&next); err != nil {
		return s, err
	}
	return next, nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// CreateTimeline adds an empty timeline and makes it active.
type CreateTimeline struct {
	ID   string
	Name string
}

func (c CreateTimeline) apply(s *Snapshot) error {
	name, err := validation.EnsureNamePresent(c.Name, "timeline name")
	if err != nil {
		return err
	}
	if err := validation.EnsureUniqueName(name, s.timelineNames(""), "timeline name"); err != nil {
		return err
	}
	id := newID(c.ID)
	if _, exists := s.timelines[id]; exists {
		return apperr.Duplicate("timeline id")
	}
	s.timelines[id] = models.Timeline{ID: id, Name: name, TaskIDs: []string{}}
	s.timelineOrder = append(s.timelineOrder, id)
	s.active = id
	return nil
}

type RenameTimeline struct {
	ID   string
	Name string
}

func (c RenameTimeline) apply(s *Snapshot) error {
	tl, ok := s.timelines[c.ID]
	if !ok {
		return apperr.NotFound("timeline", c.ID)
	}
	name, err := validation.EnsureNamePresent(c.Name, "timeline name")
	if err != nil {
		return err
	}
	if err := validation.EnsureUniqueName(name, s.timelineNames(c.ID), "timeline name"); err != nil {
		return err
	}
	tl.Name = name
	s.timelines[c.ID] = tl
	return nil
}

// DeleteTimeline removes a timeline and every task it lists. The tasks are
// pruned from their teams as well. If the timeline was active, the first
// remaining timeline becomes active.
type DeleteTimeline struct {
	ID string
}

func (c DeleteTimeline) apply(s *Snapshot) error {
	tl, ok := s.timelines[c.ID]
	if !ok {
		return apperr.NotFound("timeline", c.ID)
	}
	for _, taskID := range tl.TaskIDs {
		task := s.tasks[taskID]
		s.unlistFromTeam(task.TeamID, taskID)
		delete(s.tasks, taskID)
		delete(s.taskTimeline, taskID)
	}
	delete(s.timelines, c.ID)
	s.timelineOrder = without(s.timelineOrder, c.ID)
	if s.active == c.ID {
		s.active = ""
		if len(s.timelineOrder) > 0 {
			s.active = s.timelineOrder[0]
		}
	}
	return nil
}

type SetActiveTimeline struct {
	ID string
}

func (c SetActiveTimeline) apply(s *Snapshot) error {
	if _, ok := s.timelines[c.ID]; !ok {
		return apperr.NotFound("timeline", c.ID)
	}
	s.active = c.ID
	return nil
}

// MoveTimeline changes a timeline's display position (0-based).
type MoveTimeline struct {
	ID       string
	Position int
}

func (c MoveTimeline) apply(s *Snapshot) error {
	if _, ok := s.timelines[c.ID]; !ok {
		return apperr.NotFound("timeline", c.ID)
	}
	order, err := moveTo(s.timelineOrder, c.ID, c.Position)
	if err != nil {
		return err
	}
	s.timelineOrder = order
	return nil
}

type CreateTeam struct {
	ID   string
	Name string
}

func (c CreateTeam) apply(s *Snapshot) error {
	name, err := validation.EnsureNamePresent(c.Name, "team name")
	if err != nil {
		return err
	}
	if err := validation.EnsureUniqueName(name, s.teamNames(""), "team name"); err != nil {
		return err
	}
	id := newID(c.ID)
	if _, exists := s.teams[id]; exists {
		return apperr.Duplicate("team id")
	}
	s.teams[id] = models.Team{ID: id, Name: name, TaskIDs: []string{}}
	s.teamOrder = append(s.teamOrder, id)
	return nil
}

type RenameTeam struct {
	ID   string
	Name string
}

func (c RenameTeam) apply(s *Snapshot) error {
	team, ok := s.teams[c.ID]
	if !ok {
		return apperr.NotFound("team", c.ID)
	}
	name, err := validation.EnsureNamePresent(c.Name, "team name")
	if err != nil {
		return err
	}
	if err := validation.EnsureUniqueName(name, s.teamNames(c.ID), "team name"); err != nil {
		return err
	}
	team.Name = name
	s.teams[c.ID] = team
	return nil
}

// DeleteTeam removes a team and every task it owns, pruning those tasks
// from their timelines.
type DeleteTeam struct {
	ID string
}

func (c DeleteTeam) apply(s *Snapshot) error {
	team, ok := s.teams[c.ID]
	if !ok {
		return apperr.NotFound("team", c.ID)
	}
	for _, taskID := range team.TaskIDs {
		s.unlistFromTimeline(s.taskTimeline[taskID], taskID)
		delete(s.tasks, taskID)
		delete(s.taskTimeline, taskID)
	}
	delete(s.teams, c.ID)
	s.teamOrder = without(s.teamOrder, c.ID)
	return nil
}

// MoveTeam changes a team's display position (0-based).
type MoveTeam struct {
	ID       string
	Position int
}

func (c MoveTeam) apply(s *Snapshot) error {
	if _, ok := s.teams[c.ID]; !ok {
		return apperr.NotFound("team", c.ID)
	}
	order, err := moveTo(s.teamOrder, c.ID, c.Position)
	if err != nil {
		return err
	}
	s.teamOrder = order
	return nil
}

// CreateTask adds a task to a timeline and a team. An empty Color means
// models.DefaultColor.
type CreateTask struct {
	ID         string
	TimelineID string
	TeamID     string
	Name       string
	Progress   int
	Start      calendar.Quarter
	End        calendar.Quarter
	Color      models.Color
}

func (c CreateTask) apply(s *Snapshot) error {
	if _, ok := s.timelines[c.TimelineID]; !ok {
		return apperr.NotFound("timeline", c.TimelineID)
	}
	if _, ok := s.teams[c.TeamID]; !ok {
		return apperr.NotFound("team", c.TeamID)
	}
	name, err := validation.ValidateTaskFields(c.Name, s.timelineTaskNames(c.TimelineID, ""), c.Progress, c.Start, c.End)
	if err != nil {
		return err
	}
	color, err := resolveColor(c.Color)
	if err != nil {
		return err
	}
	if err := ensureQuarters(c.Start, c.End); err != nil {
		return err
	}
	id := newID(c.ID)
	if _, exists := s.tasks[id]; exists {
		return apperr.Duplicate("task id")
	}
	s.tasks[id] = models.Task{
		ID:       id,
		Name:     name,
		TeamID:   c.TeamID,
		Start:    c.Start,
		End:      c.End,
		Progress: c.Progress,
		Color:    color,
	}
	s.listInTimeline(c.TimelineID, id)
	s.listInTeam(c.TeamID, id)
	return nil
}

// TaskPatch holds the fields an UpdateTask changes. Nil fields are kept.
type TaskPatch struct {
	TimelineID *string
	TeamID     *string
	Name       *string
	Progress   *int
	Start      *calendar.Quarter
	End        *calendar.Quarter
	Color      *models.Color
}

// UpdateTask edits a task, moving it between timelines or teams when the
// patch names new ones.
type UpdateTask struct {
	ID    string
	Patch TaskPatch
}

func (c UpdateTask) apply(s *Snapshot) error {
	task, ok := s.tasks[c.ID]
	if !ok {
		return apperr.NotFound("task", c.ID)
	}
	fromTimeline := s.taskTimeline[c.ID]
	toTimeline := fromTimeline
	if c.Patch.TimelineID != nil {
		toTimeline = *c.Patch.TimelineID
		if _, ok := s.timelines[toTimeline]; !ok {
			return apperr.NotFound("timeline", toTimeline)
		}
	}
	fromTeam := task.TeamID
	toTeam := fromTeam
	if c.Patch.TeamID != nil {
		toTeam = *c.Patch.TeamID
		if _, ok := s.teams[toTeam]; !ok {
			return apperr.NotFound("team", toTeam)
		}
	}

	updated := task
	if c.Patch.Name != nil {
		updated.Name = *c.Patch.Name
	}
	if c.Patch.Progress != nil {
		updated.Progress = *c.Patch.Progress
	}
	if c.Patch.Start != nil {
		updated.Start = *c.Patch.Start
	}
	if c.Patch.End != nil {
		updated.End = *c.Patch.End
	}
	name, err := validation.ValidateTaskFields(updated.Name, s.timelineTaskNames(toTimeline, c.ID), updated.Progress, updated.Start, updated.End)
	if err != nil {
		return err
	}
	updated.Name = name
	if c.Patch.Color != nil {
		color, err := resolveColor(*c.Patch.Color)
		if err != nil {
			return err
		}
		updated.Color = color
	}
	if err := ensureQuarters(updated.Start, updated.End); err != nil {
		return err
	}

	updated.TeamID = toTeam
	s.tasks[c.ID] = updated
	if toTimeline != fromTimeline {
		s.unlistFromTimeline(fromTimeline, c.ID)
		s.listInTimeline(toTimeline, c.ID)
	}
	if toTeam != fromTeam {
		s.unlistFromTeam(fromTeam, c.ID)
		s.listInTeam(toTeam, c.ID)
	}
	return nil
}

// DeleteTask removes a task from both indices. Unknown ids are ignored.
type DeleteTask struct {
	ID string
}

func (c DeleteTask) apply(s *Snapshot) error {
	task, ok := s.tasks[c.ID]
	if !ok {
		return nil
	}
	s.unlistFromTimeline(s.taskTimeline[c.ID], c.ID)
	s.unlistFromTeam(task.TeamID, c.ID)
	delete(s.tasks, c.ID)
	delete(s.taskTimeline, c.ID)
	return nil
}

// ReplaceState swaps in a snapshot built elsewhere, normally by the
// exchange pipeline, which guarantees its consistency.
type ReplaceState struct {
	Snapshot Snapshot
}

func (c ReplaceState) apply(s *Snapshot) error {
	*s = c.Snapshot.clone()
	return nil
}

func (s *Snapshot) listInTimeline(timelineID, taskID string) {
	tl := s.timelines[timelineID]
	tl.TaskIDs = append(tl.TaskIDs, taskID)
	s.timelines[timelineID] = tl
	s.taskTimeline[taskID] = timelineID
}

func (s *Snapshot) unlistFromTimeline(timelineID, taskID string) {
	tl, ok := s.timelines[timelineID]
	if !ok {
		return
	}
	tl.TaskIDs = without(tl.TaskIDs, taskID)
	s.timelines[timelineID] = tl
	delete(s.taskTimeline, taskID)
}

func (s *Snapshot) listInTeam(teamID, taskID string) {
	team := s.teams[teamID]
	team.TaskIDs = append(team.TaskIDs, taskID)
	s.teams[teamID] = team
}

func (s *Snapshot) unlistFromTeam(teamID, taskID string) {
	team, ok := s.teams[teamID]
	if !ok {
		return
	}
	team.TaskIDs = without(team.TaskIDs, taskID)
	s.teams[teamID] = team
}

func resolveColor(c models.Color) (models.Color, error) {
	if c == "" {
		return models.DefaultColor, nil
	}
	if !c.IsValid() {
		return "", &apperr.Error{Kind: apperr.ErrFormat, Field: "color", Msg: "must be blue or indigo"}
	}
	return c, nil
}

func ensureQuarters(start, end calendar.Quarter) error {
	if !start.Valid() {
		return &apperr.Error{Kind: apperr.ErrFormat, Field: "start quarter", Msg: "not a valid quarter"}
	}
	if !end.Valid() {
		return &apperr.Error{Kind: apperr.ErrFormat, Field: "end quarter", Msg: "not a valid quarter"}
	}
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func moveTo(order []string, id string, position int) ([]string, error) {
	if position < 0 || position >= len(order) {
		return nil, apperr.Rangef("position", "must be between 0 and %d, got %d", len(order)-1, position)
	}
	rest := without(order, id)
	out := make([]string, 0, len(order))
	out = append(out, rest[:position]...)
	out = append(out, id)
	out = append(out, rest[position:]...)
	return out, nil
}
