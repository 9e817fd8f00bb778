package parking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/core/logger"
	"github.com/kilianp07/parkwatch/core/metrics"
)

// SnapshotSink receives every new snapshot. Publish must not block.
type SnapshotSink interface {
	Publish(Snapshot)
}

// Options configure a Monitor. Nil fields fall back to no-op implementations.
type Options struct {
	Notifier alert.Notifier
	Recorder metrics.Recorder
	Logger   logger.Logger
	Sink     SnapshotSink
	// Now is used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Monitor owns the screen state. All transport callbacks funnel into it and
// every mutation happens under one lock, so callbacks from different
// goroutines are applied one at a time.
type Monitor struct {
	mu    sync.Mutex
	state Snapshot
	conn  *ConnectionMachine

	notify alert.Notifier
	rec    metrics.Recorder
	log    logger.Logger
	sink   SnapshotSink
	now    func() time.Time
}

// NewMonitor returns a Monitor in the arrived view with a disconnected status.
func NewMonitor(opts Options) *Monitor {
	m := &Monitor{
		conn:   NewConnectionMachine(),
		notify: opts.Notifier,
		rec:    opts.Recorder,
		log:    logger.OrNop(opts.Logger),
		sink:   opts.Sink,
		now:    opts.Now,
	}
	if m.notify == nil {
		m.notify = alert.Multi{}
	}
	if m.rec == nil {
		m.rec = metrics.NopRecorder{}
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.state = Snapshot{Connection: m.conn.Status(), UpdatedAt: m.now()}
	return m
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// View returns the view for the current state.
func (m *Monitor) View() View { return Select(m.Snapshot()) }

// Dialing is called right before a connect attempt.
func (m *Monitor) Dialing() { m.transition(EventDial) }

// Reconnecting is called when the client starts an automatic reconnect.
func (m *Monitor) Reconnecting() {
	m.log.Warnf("reconnecting to parking system")
	m.transition(EventDial)
}

// Connected is called once the broker accepted the connection.
func (m *Monitor) Connected() {
	m.log.Infof("MQTT connected")
	m.transition(EventEstablish)
}

// ConnectFailed is called when the connect attempt failed or timed out.
func (m *Monitor) ConnectFailed(err error) {
	m.log.Errorf("MQTT connect failed: %v", err)
	m.transition(EventFail)
	m.notify.Notify(alert.New(alert.KindConnectFailed, err))
}

// InitFailed is called when the client could not be set up at all.
func (m *Monitor) InitFailed(err error) {
	m.log.Errorf("failed to initialize MQTT connection: %v", err)
	m.transition(EventBreak)
	m.notify.Notify(alert.New(alert.KindInitFailed, err))
}

// SubscribeFailed is called when the topic subscription was rejected.
func (m *Monitor) SubscribeFailed(err error) {
	m.log.Errorf("failed to subscribe: %v", err)
	m.notify.Notify(alert.New(alert.KindSubscriptionFailed, err))
}

// Subscribed is called once the subscription is active.
func (m *Monitor) Subscribed(topic string) {
	m.log.Infof("subscribed to %q topic", topic)
}

// ConnectionLost is called when an established connection drops. A nil err
// is a clean close: the status changes but no alert is raised.
func (m *Monitor) ConnectionLost(err error) {
	m.transition(EventLose)
	if err == nil {
		return
	}
	m.log.Warnf("MQTT connection lost: %v", err)
	m.notify.Notify(alert.New(alert.KindConnectionLost, err))
}

// Closed is called after a deliberate disconnect.
func (m *Monitor) Closed() { m.transition(EventClose) }

// HandlePayload interprets one delivered message. Malformed payloads are
// logged and never surfaced to the user.
func (m *Monitor) HandlePayload(payload string) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorf("error processing MQTT message %q: %v", payload, r)
		}
	}()
	m.log.Debugw("MQTT message arrived", map[string]any{"payload": payload})

	msg, err := ParsePayload(payload)
	ev := metrics.PayloadEvent{Flag: string(msg.Flag), Time: m.now()}
	if err != nil {
		ev.Outcome = metrics.OutcomeIgnored
		if errors.Is(err, ErrEmptyPayload) {
			ev.Outcome = metrics.OutcomeInvalid
		}
		m.log.Debugf("ignoring payload %q: %v", payload, err)
		m.record(func() error { return m.rec.RecordPayload(ev) })
		return
	}
	ev.Outcome = metrics.OutcomeApplied

	before, after := m.apply(msg, ev.Time)

	m.record(func() error { return m.rec.RecordPayload(ev) })
	if after.Finished() && (!before.Finished() || after.Price != before.Price) {
		m.record(func() error { return m.rec.RecordSession(metrics.SessionEvent{Price: after.Price, Time: ev.Time}) })
	}
}

// apply updates the state under the lock. The deferred unlock keeps the
// monitor usable when a sink panics.
func (m *Monitor) apply(msg Message, now time.Time) (before, after Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before = m.state
	after = before.Apply(msg)
	if after.Parked != before.Parked || after.Left != before.Left || after.Price != before.Price {
		after.UpdatedAt = now
		m.state = after
		m.publish()
	}
	return before, after
}

func (m *Monitor) transition(event string) {
	status, now, changed := m.fire(event)
	if !changed {
		return
	}
	m.record(func() error {
		return m.rec.RecordConnection(metrics.ConnectionEvent{Status: status.String(), Time: now})
	})
}

func (m *Monitor) fire(event string) (ConnectionStatus, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed, err := m.conn.Fire(context.Background(), event)
	if err != nil {
		m.log.Debugf("connection event %s ignored: %v", event, err)
		return "", time.Time{}, false
	}
	if !changed {
		return "", time.Time{}, false
	}
	now := m.now()
	m.state.Connection = m.conn.Status()
	m.state.UpdatedAt = now
	m.publish()
	return m.state.Connection, now, true
}

// publish must be called with m.mu held so sinks observe snapshots in order.
func (m *Monitor) publish() {
	if m.sink != nil {
		m.sink.Publish(m.state)
	}
}

func (m *Monitor) record(fn func() error) {
	if err := fn(); err != nil {
		m.log.Errorf("record metrics: %v", err)
	}
}
