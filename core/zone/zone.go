package zone

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/parkwatch/core/matching"
	"github.com/kilianp07/parkwatch/core/parking"
)

var (
	// ErrUnknownSpot is returned for a spot id the zone does not declare.
	ErrUnknownSpot = errors.New("unknown spot")
	// ErrUnknownZone is returned for a zone id the manager does not hold.
	ErrUnknownZone = errors.New("unknown zone")
)

// ParkedTopic carries parked/left payloads for the screen.
const ParkedTopic = "parked"

// DisplayTopic returns the topic that carries the vacant count of a zone.
func DisplayTopic(zoneID string) string { return zoneID + "_display_value" }

// Update is the outcome of one reading.
type Update struct {
	ZoneID     string
	SpotID     string
	Transition Transition
	// Messages are published on ParkedTopic in order.
	Messages []parking.Message
	// Vacant is the number of vacant spots after the reading.
	Vacant int
	Time   time.Time

	prev Spot
}

// Zone tracks the occupancy of its spots and prices finished sessions.
type Zone struct {
	cfg Config

	mu    sync.Mutex
	spots map[string]*Spot
}

// New creates a zone. Spots start vacant.
func New(cfg Config) *Zone {
	cfg.SetDefaults()
	z := &Zone{cfg: cfg, spots: make(map[string]*Spot, len(cfg.Spots))}
	for _, s := range cfg.Spots {
		z.spots[s.ID] = &Spot{ID: s.ID, Lat: s.Lat, Lon: s.Lon, Vacant: true}
	}
	return z
}

// ID returns the zone identifier.
func (z *Zone) ID() string { return z.cfg.ID }

// Config returns the zone configuration with defaults applied.
func (z *Zone) Config() Config { return z.cfg }

// Record applies a sonar reading for spotID.
func (z *Zone) Record(spotID string, sonarCM float64, now time.Time) (Update, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	spot, ok := z.spots[spotID]
	if !ok {
		return Update{}, fmt.Errorf("%w %s in zone %s", ErrUnknownSpot, spotID, z.cfg.ID)
	}
	prev := *spot
	tr, stayed := spot.record(sonarCM, z.cfg.ThresholdCM, now)
	u := Update{ZoneID: z.cfg.ID, SpotID: spotID, Transition: tr, Time: now, prev: prev}
	switch tr {
	case Arrived:
		u.Messages = []parking.Message{{Flag: parking.FlagParked}}
	case Departed:
		u.Messages = []parking.Message{{Flag: parking.FlagLeft, HasPrice: true, Price: z.price(stayed)}}
	}
	u.Vacant = z.vacantLocked()
	return u, nil
}

// Revert restores the spot to its state before u, so the next reading
// produces the same transition again. It is a no-op for unchanged updates.
func (z *Zone) Revert(u Update) error {
	if u.Transition == Unchanged {
		return nil
	}
	z.mu.Lock()
	defer z.mu.Unlock()
	spot, ok := z.spots[u.SpotID]
	if !ok {
		return fmt.Errorf("%w %s in zone %s", ErrUnknownSpot, u.SpotID, z.cfg.ID)
	}
	*spot = u.prev
	return nil
}

// price bills the stay at the hourly rate, rounded to cents.
func (z *Zone) price(stayed time.Duration) float64 {
	return math.Round(stayed.Hours()*z.cfg.PriceHour*100) / 100
}

// Vacant returns the number of vacant spots.
func (z *Zone) Vacant() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.vacantLocked()
}

func (z *Zone) vacantLocked() int {
	n := 0
	for _, s := range z.spots {
		if s.Vacant {
			n++
		}
	}
	return n
}

// VacantSpot returns the vacant spot nearest to lat/lon. With no coordinates
// the lowest id wins.
func (z *Zone) VacantSpot(lat, lon *float64) (Spot, bool) {
	var (
		best  Spot
		found bool
		dist  float64
	)
	for _, s := range z.Spots() {
		if !s.Vacant {
			continue
		}
		if lat == nil || lon == nil {
			return s, true
		}
		d := matching.Distance(s.Lat, s.Lon, *lat, *lon)
		if !found || d < dist {
			best, dist, found = s, d, true
		}
	}
	return best, found
}

// Spots returns a copy of the spots sorted by id.
func (z *Zone) Spots() []Spot {
	z.mu.Lock()
	defer z.mu.Unlock()
	out := make([]Spot, 0, len(z.spots))
	for _, s := range z.spots {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
