package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/akyairhashvil/roadmap/internal/config"
	"github.com/akyairhashvil/roadmap/internal/store"
)

// Mode is the input mode of the board.
type Mode int

const (
	ModeBoard Mode = iota
	ModeNewTimeline
)

// storeChangedMsg is delivered whenever the store commits a change, local
// or from another writer.
type storeChangedMsg struct{}

// BoardModel renders the active timeline and turns keys into store
// commands.
type BoardModel struct {
	store    *store.Store
	registry *HandlerRegistry
	theme    Theme
	mode     Mode
	input    textinput.Model
	bar      progress.Model
	width    int
	height   int
	status   string
	err      error

	changes     chan struct{}
	unsubscribe func()
}

func NewBoardModel(st *store.Store) BoardModel {
	ti := textinput.New()
	ti.Placeholder = "Timeline name"
	ti.CharLimit = config.MaxNameLength
	ti.Width = 40

	changes := make(chan struct{}, 1)
	unsubscribe := st.Subscribe(func(store.Change) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	return BoardModel{
		store:       st,
		registry:    defaultRegistry(),
		theme:       CurrentTheme,
		mode:        ModeBoard,
		input:       ti,
		bar:         progress.New(progress.WithoutPercentage()),
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Close detaches the model from the store.
func (m BoardModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m BoardModel) Init() tea.Cmd {
	return waitForChange(m.changes)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case storeChangedMsg:
		return m, waitForChange(m.changes)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if next, cmd, handled := m.registry.Handle(m, msg.String()); handled {
			return next, cmd
		}
		if m.mode == ModeNewTimeline {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m BoardModel) View() string {
	return m.render()
}
