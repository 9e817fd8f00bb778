package metrics

import "time"

// Payload outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeIgnored = "ignored"
	OutcomeInvalid = "invalid"
)

// PayloadEvent describes one delivered message and what the screen did with it.
type PayloadEvent struct {
	Flag    string
	Outcome string
	Time    time.Time
}

// ConnectionEvent records a connection status change.
type ConnectionEvent struct {
	Status string
	Time   time.Time
}

// SessionEvent is emitted when a parking session reaches the finished state
// or its price changes afterwards.
type SessionEvent struct {
	Price float64
	Time  time.Time
}

// Recorder records screen events for observability purposes.
type Recorder interface {
	RecordPayload(ev PayloadEvent) error
	RecordConnection(ev ConnectionEvent) error
	RecordSession(ev SessionEvent) error
}

// NopRecorder discards all events.
type NopRecorder struct{}

func (NopRecorder) RecordPayload(PayloadEvent) error       { return nil }
func (NopRecorder) RecordConnection(ConnectionEvent) error { return nil }
func (NopRecorder) RecordSession(SessionEvent) error       { return nil }
