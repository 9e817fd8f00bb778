package parking

import "time"

// ConnectionStatus is the state of the broker connection as seen by the screen.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

func (s ConnectionStatus) String() string { return string(s) }

// Snapshot is the complete screen state.
type Snapshot struct {
	Parked     bool             `json:"parked"`
	Left       bool             `json:"left"`
	Price      float64          `json:"price"`
	Connection ConnectionStatus `json:"connection_status"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Finished reports whether both flags are set.
func (s Snapshot) Finished() bool { return s.Parked && s.Left }

// Apply returns the snapshot after msg. Flags only ever go from false to
// true; a left message without a price keeps the previous price.
func (s Snapshot) Apply(msg Message) Snapshot {
	switch msg.Flag {
	case FlagParked:
		s.Parked = true
	case FlagLeft:
		s.Left = true
		if msg.HasPrice {
			s.Price = msg.Price
		}
	}
	return s
}
