package parking

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// Connection events.
const (
	EventDial      = "dial"
	EventEstablish = "establish"
	EventFail      = "fail"
	// EventBreak marks a client that could not be set up at all.
	EventBreak = "break"
	EventLose  = "lose"
	EventClose = "close"
)

// ConnectionMachine guards the connection status transitions.
type ConnectionMachine struct {
	*fsm.FSM
}

// NewConnectionMachine starts in StatusDisconnected.
func NewConnectionMachine() *ConnectionMachine {
	disconnected := string(StatusDisconnected)
	connecting := string(StatusConnecting)
	connected := string(StatusConnected)
	failed := string(StatusError)

	events := fsm.Events{
		{Name: EventDial, Src: []string{disconnected, failed}, Dst: connecting},
		// Paho may finish a connect after the caller gave up waiting, and
		// reconnects start from disconnected.
		{Name: EventEstablish, Src: []string{connecting, disconnected, failed}, Dst: connected},
		{Name: EventFail, Src: []string{connecting}, Dst: failed},
		{Name: EventBreak, Src: []string{disconnected}, Dst: failed},
		{Name: EventLose, Src: []string{connected, connecting}, Dst: disconnected},
		{Name: EventClose, Src: []string{connected}, Dst: disconnected},
	}
	return &ConnectionMachine{FSM: fsm.NewFSM(disconnected, events, fsm.Callbacks{})}
}

// Status returns the current status.
func (m *ConnectionMachine) Status() ConnectionStatus {
	return ConnectionStatus(m.Current())
}

// Fire applies event and reports whether the status changed. An event that
// is not allowed from the current status is returned as an error and leaves
// the status untouched.
func (m *ConnectionMachine) Fire(ctx context.Context, event string) (bool, error) {
	err := m.Event(ctx, event)
	if err == nil {
		return true, nil
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return false, nil
	}
	return false, err
}
