package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

func defaultRegistry() *HandlerRegistry {
	r := NewHandlerRegistry()
	board := []Mode{ModeBoard}
	input := []Mode{ModeNewTimeline}

	r.Register(KeyBinding{Key: "tab", Handler: handleNextTimeline, Description: "next", Modes: board})
	r.Register(KeyBinding{Key: "shift+tab", Handler: handlePrevTimeline, Description: "prev", Modes: board})
	r.Register(KeyBinding{Key: "n", Handler: handleStartNewTimeline, Description: "new timeline", Modes: board})
	r.Register(KeyBinding{Key: "u", Handler: handleUndo, Description: "undo", Modes: board})
	r.Register(KeyBinding{Key: "r", Handler: handleRedo, Description: "redo", Modes: board})
	r.Register(KeyBinding{Key: "q", Handler: handleQuit, Description: "quit", Modes: board})

	r.Register(KeyBinding{Key: "enter", Handler: handleSubmitTimeline, Description: "create", Modes: input, Priority: 1})
	r.Register(KeyBinding{Key: "esc", Handler: handleCancelInput, Description: "cancel", Modes: input, Priority: 1})
	return r
}

func handleNextTimeline(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	return m.cycleTimeline(1), nil, true
}

func handlePrevTimeline(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	return m.cycleTimeline(-1), nil, true
}

func (m BoardModel) cycleTimeline(step int) BoardModel {
	snap := m.store.Snapshot()
	timelines := snap.Timelines()
	if len(timelines) < 2 {
		return m
	}
	current := 0
	for i, tl := range timelines {
		if tl.ID == snap.ActiveTimelineID() {
			current = i
			break
		}
	}
	next := (current + step + len(timelines)) % len(timelines)
	if err := m.store.SetActiveTimeline(timelines[next].ID); err != nil {
		m.err = err
		return m
	}
	m.err = nil
	m.status = ""
	return m
}

func handleStartNewTimeline(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	m.mode = ModeNewTimeline
	m.err = nil
	m.input.SetValue("")
	return m, m.input.Focus(), true
}

func handleSubmitTimeline(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	tl, err := m.store.CreateTimeline(m.input.Value())
	if err != nil {
		// Stay in input mode so the name can be fixed.
		m.err = err
		return m, nil, true
	}
	m.err = nil
	m.status = fmt.Sprintf("Created timeline %q", tl.Name)
	m.mode = ModeBoard
	m.input.Blur()
	return m, nil, true
}

func handleCancelInput(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	m.mode = ModeBoard
	m.err = nil
	m.input.Blur()
	return m, nil, true
}

func handleUndo(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	if _, ok := m.store.Undo(); ok {
		m.status = "Undone"
	} else {
		m.status = "Nothing to undo"
	}
	m.err = nil
	return m, nil, true
}

func handleRedo(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	if _, ok := m.store.Redo(); ok {
		m.status = "Redone"
	} else {
		m.status = "Nothing to redo"
	}
	m.err = nil
	return m, nil, true
}

func handleQuit(m BoardModel, _ string) (BoardModel, tea.Cmd, bool) {
	return m, tea.Quit, true
}
