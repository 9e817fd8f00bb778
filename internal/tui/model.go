// Package tui renders the parking screen in the terminal.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/core/parking"
)

// SnapshotMsg carries a new state to the model.
type SnapshotMsg parking.Snapshot

// AlertMsg carries an alert to the model.
type AlertMsg alert.Alert

// closedMsg is sent once the snapshot channel is closed.
type closedMsg struct{}

// Model is the Bubble Tea model of the parking screen.
type Model struct {
	snapshots <-chan parking.Snapshot
	state     parking.Snapshot
	alerts    []alert.Alert
	width     int
	height    int
}

// NewModel returns a model fed by snapshots starting from initial.
func NewModel(initial parking.Snapshot, snapshots <-chan parking.Snapshot) *Model {
	return &Model{state: initial, snapshots: snapshots}
}

// Queue adds alerts raised before the program started.
func (m *Model) Queue(alerts ...alert.Alert) *Model {
	m.alerts = append(m.alerts, alerts...)
	return m
}

func (m *Model) Init() tea.Cmd { return m.wait() }

func (m *Model) wait() tea.Cmd {
	if m.snapshots == nil {
		return nil
	}
	ch := m.snapshots
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return SnapshotMsg(s)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case SnapshotMsg:
		m.state = parking.Snapshot(msg)
		return m, m.wait()
	case closedMsg:
		m.snapshots = nil
	case AlertMsg:
		m.alerts = append(m.alerts, alert.Alert(msg))
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", "esc":
			if len(m.alerts) > 0 {
				m.alerts = m.alerts[1:]
			}
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var a *alert.Alert
	if len(m.alerts) > 0 {
		a = &m.alerts[0]
	}
	return Render(parking.Select(m.state), a, m.width, m.height)
}

// State returns the snapshot currently drawn.
func (m *Model) State() parking.Snapshot { return m.state }

// PendingAlerts returns the alerts not yet dismissed, oldest first.
func (m *Model) PendingAlerts() []alert.Alert { return append([]alert.Alert(nil), m.alerts...) }

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(tea.Msg)
}

// Notifier forwards alerts to a running program.
type Notifier struct {
	Program Sender
}

func (n Notifier) Notify(a alert.Alert) {
	if n.Program != nil {
		n.Program.Send(AlertMsg(a))
	}
}
