// Package alert describes the user-visible failures raised by the parking
// screen and the notifiers that deliver them.
package alert

import (
	"sync"
	"time"

	"github.com/kilianp07/parkwatch/core/logger"
)

// Kind identifies a failure category.
type Kind string

const (
	KindSubscriptionFailed Kind = "subscription_failed"
	KindConnectionLost     Kind = "connection_lost"
	KindConnectFailed      Kind = "connect_failed"
	KindInitFailed         Kind = "init_failed"
)

// Alert is a modal message shown to the user.
type Alert struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Cause   string    `json:"cause,omitempty"`
	Time    time.Time `json:"time"`
}

var texts = map[Kind][2]string{
	KindSubscriptionFailed: {"Subscription Error", "Failed to subscribe to parking updates."},
	KindConnectionLost:     {"Connection Error", "Lost connection to the parking system."},
	KindConnectFailed:      {"Connection Error", "Failed to connect to the parking system. Please check your network connection."},
	KindInitFailed:         {"Connection Error", "Failed to initialize connection to the parking system."},
}

// New builds the alert for kind. A nil cause leaves Cause empty.
func New(kind Kind, cause error) Alert {
	t := texts[kind]
	a := Alert{Kind: kind, Title: t[0], Message: t[1], Time: time.Now()}
	if cause != nil {
		a.Cause = cause.Error()
	}
	return a
}

// Notifier delivers alerts to the user.
type Notifier interface {
	Notify(Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Alert)

func (f NotifierFunc) Notify(a Alert) { f(a) }

// LogNotifier writes alerts as warnings. It is used when no interactive
// screen is attached.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(a Alert) {
	logger.OrNop(n.Log).Warnf("%s: %s (%s)", a.Title, a.Message, a.Kind)
}

// Multi fans an alert out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(a Alert) {
	for _, n := range m {
		if n != nil {
			n.Notify(a)
		}
	}
}

// Recorder keeps the alerts it receives. A positive Limit keeps only the
// most recent ones.
type Recorder struct {
	Limit int

	mu     sync.Mutex
	alerts []Alert
}

func (r *Recorder) Notify(a Alert) {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	if r.Limit > 0 && len(r.alerts) > r.Limit {
		r.alerts = append([]Alert(nil), r.alerts[len(r.alerts)-r.Limit:]...)
	}
	r.mu.Unlock()
}

// Alerts returns a copy of the recorded alerts.
func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Kinds returns the kinds of the recorded alerts in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, a.Kind)
	}
	return out
}
