// Package display renders a persistent one-line status view of the
// dictation daemon using Bubble Tea, adapted from the teacher's
// Bubble-Tea-driven terminal UI down to a single status bar: session
// state, the committed/pending transcript tail, and a running count of
// throttled or refused injector updates. It owns no pipeline logic — it
// only observes state the controller already computes, the same way the
// teacher's UI is a pure renderer driven by engine/timer state.
package display

import (
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	liveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	committedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)
)

// stateMsg carries a new status snapshot into the Bubble Tea loop.
type stateMsg struct {
	state     string
	committed string
	pending   string
	refused   int
}

// Status is a thin Bubble Tea status bar. Call Run in its own goroutine;
// other goroutines call Update at any time once WaitReady returns.
type Status struct {
	program *tea.Program
	readyCh chan struct{}
	done    atomic.Bool
}

// NewStatus creates an unstarted status view.
func NewStatus() *Status {
	return &Status{readyCh: make(chan struct{})}
}

// Update pushes a new status snapshot. Thread-safe; a no-op before Run
// or after the view has quit.
func (s *Status) Update(state, committed, pending string, refused int) {
	if s.program != nil && !s.done.Load() {
		s.program.Send(stateMsg{state: state, committed: committed, pending: pending, refused: refused})
	}
}

// WaitReady blocks until the Bubble Tea loop is running.
func (s *Status) WaitReady() { <-s.readyCh }

// Quit stops the view.
func (s *Status) Quit() {
	if s.program != nil {
		s.program.Quit()
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (s *Status) Run() error {
	m := statusModel{readyCh: s.readyCh}
	s.program = tea.NewProgram(m)
	_, err := s.program.Run()
	s.done.Store(true)
	return err
}

type statusModel struct {
	readyCh   chan struct{}
	state     string
	committed string
	pending   string
	refused   int
}

func (m statusModel) Init() tea.Cmd {
	close(m.readyCh)
	return nil
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = msg.state
		m.committed = msg.committed
		m.pending = msg.pending
		m.refused = msg.refused
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m statusModel) View() string {
	var stateLabel string
	switch m.state {
	case "Live":
		stateLabel = liveStyle.Render("● LIVE")
	case "Transcribing":
		stateLabel = idleStyle.Render("… finishing")
	case "Error":
		stateLabel = liveStyle.Render("✗ error")
	case "Loading":
		stateLabel = idleStyle.Render("… loading")
	default:
		stateLabel = idleStyle.Render("○ idle")
	}

	tail := committedStyle.Render(truncate(m.committed, 60)) +
		pendingStyle.Render(truncate(m.pending, 30))

	line := fmt.Sprintf(" %s  %s  refused=%d ", stateLabel, tail, m.refused)
	return barBg.Render(line) + "\n"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
