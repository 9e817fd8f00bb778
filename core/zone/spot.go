package zone

import "time"

// DefaultThresholdCM is the sonar distance at or below which a spot is occupied.
const DefaultThresholdCM = 30

// Spot is a single sensor-equipped parking space.
type Spot struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Vacant    bool      `json:"vacant"`
	ArrivedAt time.Time `json:"arrived_at,omitempty"`
}

// Transition describes what a reading did to a spot.
type Transition int

const (
	// Unchanged means the spot kept its state.
	Unchanged Transition = iota
	// Arrived means a vacant spot became occupied.
	Arrived
	// Departed means an occupied spot became vacant.
	Departed
)

// record applies a sonar reading and returns the transition along with the
// time the vehicle spent in the spot when it departed.
func (s *Spot) record(sonarCM, thresholdCM float64, now time.Time) (Transition, time.Duration) {
	vacant := sonarCM > thresholdCM
	switch {
	case vacant == s.Vacant:
		return Unchanged, 0
	case !vacant:
		s.Vacant = false
		s.ArrivedAt = now
		return Arrived, 0
	default:
		s.Vacant = true
		var stayed time.Duration
		if !s.ArrivedAt.IsZero() {
			stayed = now.Sub(s.ArrivedAt)
		}
		s.ArrivedAt = time.Time{}
		return Departed, stayed
	}
}

func (t Transition) String() string {
	switch t {
	case Arrived:
		return "arrived"
	case Departed:
		return "departed"
	default:
		return "unchanged"
	}
}
