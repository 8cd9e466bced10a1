package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/akyairhashvil/roadmap/internal/calendar"
	"github.com/akyairhashvil/roadmap/internal/models"
)

// DefaultHistoryDepth bounds the undo stack.
const DefaultHistoryDepth = 100

// Change describes a committed transition. Command is nil for undo/redo.
type Change struct {
	Before  Snapshot
	After   Snapshot
	Command Command
}

// Store holds the current snapshot plus undo/redo history. Commands are
// serialized; listeners run after the lock is released, in commit order
// for a single writer.
type Store struct {
	mu        sync.Mutex
	current   Snapshot
	undo      []Snapshot
	redo      []Snapshot
	depth     int
	newID     func() string
	listeners map[int]func(Change)
	nextToken int
}

type Option func(*Store)

// WithHistoryDepth sets the maximum number of undo steps. Zero disables
// history.
func WithHistoryDepth(depth int) Option {
	return func(s *Store) {
		if depth >= 0 {
			s.depth = depth
		}
	}
}

// WithIDFunc overrides id allocation, mainly for deterministic tests.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSnapshot seeds the store with an initial snapshot.
func WithSnapshot(snap Snapshot) Option {
	return func(s *Store) {
		s.current = snap.clone()
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		current:   Empty(),
		depth:     DefaultHistoryDepth,
		newID:     uuid.NewString,
		listeners: map[int]func(Change){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state. Snapshots are immutable, so callers
// may keep them.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn for every committed change and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.nextToken
	s.nextToken++
	s.listeners[token] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, token)
	}
}

// Dispatch applies cmd to the current snapshot. On failure nothing changes
// and no listener runs.
func (s *Store) Dispatch(cmd Command) (Snapshot, error) {
	s.mu.Lock()
	before := s.current
	after, err := before.Apply(s.assignID(cmd))
	if err != nil {
		s.mu.Unlock()
		return before, err
	}
	s.current = after
	s.pushUndo(before)
	s.redo = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, Change{Before: before, After: after, Command: cmd})
	return after, nil
}

// Undo restores the previous snapshot. ok is false when there is nothing to
// undo.
func (s *Store) Undo() (Snapshot, bool) {
	s.mu.Lock()
	if len(s.undo) == 0 {
		cur := s.current
		s.mu.Unlock()
		return cur, false
	}
	before := s.current
	s.current = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, before)
	after := s.current
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, Change{Before: before, After: after})
	return after, true
}

// Redo re-applies the most recently undone snapshot.
func (s *Store) Redo() (Snapshot, bool) {
	s.mu.Lock()
	if len(s.redo) == 0 {
		cur := s.current
		s.mu.Unlock()
		return cur, false
	}
	before := s.current
	s.current = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.pushUndo(before)
	after := s.current
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, Change{Before: before, After: after})
	return after, true
}

// CanUndo and CanRedo report whether history is available.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

func (s *Store) pushUndo(snap Snapshot) {
	if s.depth == 0 {
		return
	}
	s.undo = append(s.undo, snap)
	if len(s.undo) > s.depth {
		s.undo = append([]Snapshot(nil), s.undo[len(s.undo)-s.depth:]...)
	}
}

func (s *Store) snapshotListeners() []func(Change) {
	out := make([]func(Change), 0, len(s.listeners))
	for token := 0; token < s.nextToken; token++ {
		if fn, ok := s.listeners[token]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(Change), change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}

func (s *Store) assignID(cmd Command) Command {
	switch c := cmd.(type) {
	case CreateTimeline:
		if c.ID == "" {
			c.ID = s.newID()
		}
		return c
	case CreateTeam:
		if c.ID == "" {
			c.ID = s.newID()
		}
		return c
	case CreateTask:
		if c.ID == "" {
			c.ID = s.newID()
		}
		return c
	}
	return cmd
}

// CreateTimeline creates a timeline and returns it.
func (s *Store) CreateTimeline(name string) (models.Timeline, error) {
	id := s.allocID()
	snap, err := s.Dispatch(CreateTimeline{ID: id, Name: name})
	if err != nil {
		return models.Timeline{}, err
	}
	tl, _ := snap.Timeline(id)
	return tl, nil
}

func (s *Store) RenameTimeline(id, name string) error {
	_, err := s.Dispatch(RenameTimeline{ID: id, Name: name})
	return err
}

func (s *Store) DeleteTimeline(id string) error {
	_, err := s.Dispatch(DeleteTimeline{ID: id})
	return err
}

func (s *Store) SetActiveTimeline(id string) error {
	_, err := s.Dispatch(SetActiveTimeline{ID: id})
	return err
}

// CreateTeam creates a team and returns it.
func (s *Store) CreateTeam(name string) (models.Team, error) {
	id := s.allocID()
	snap, err := s.Dispatch(CreateTeam{ID: id, Name: name})
	if err != nil {
		return models.Team{}, err
	}
	team, _ := snap.Team(id)
	return team, nil
}

func (s *Store) RenameTeam(id, name string) error {
	_, err := s.Dispatch(RenameTeam{ID: id, Name: name})
	return err
}

func (s *Store) DeleteTeam(id string) error {
	_, err := s.Dispatch(DeleteTeam{ID: id})
	return err
}

// CreateTask creates a task and returns it with its normalized name.
func (s *Store) CreateTask(timelineID, teamID, name string, progress int, start, end calendar.Quarter, color models.Color) (models.Task, error) {
	id := s.allocID()
	snap, err := s.Dispatch(CreateTask{
		ID:         id,
		TimelineID: timelineID,
		TeamID:     teamID,
		Name:       name,
		Progress:   progress,
		Start:      start,
		End:        end,
		Color:      color,
	})
	if err != nil {
		return models.Task{}, err
	}
	task, _ := snap.Task(id)
	return task, nil
}

// UpdateTask applies patch and returns the updated task.
func (s *Store) UpdateTask(id string, patch TaskPatch) (models.Task, error) {
	snap, err := s.Dispatch(UpdateTask{ID: id, Patch: patch})
	if err != nil {
		return models.Task{}, err
	}
	task, _ := snap.Task(id)
	return task, nil
}

func (s *Store) DeleteTask(id string) {
	// DeleteTask never fails.
	_, _ = s.Dispatch(DeleteTask{ID: id})
}

// ReplaceState swaps in snap wholesale.
func (s *Store) ReplaceState(snap Snapshot) {
	_, _ = s.Dispatch(ReplaceState{Snapshot: snap})
}

// Reset installs snap as the starting state: history is cleared and no
// listener runs.
func (s *Store) Reset(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap.clone()
	s.undo = nil
	s.redo = nil
}

func (s *Store) allocID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newID()
}
