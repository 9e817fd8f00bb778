package zone

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/parkwatch/core/matching"
)

// Manager holds the zones served by one process.
type Manager struct {
	zones map[string]*Zone
	order []string
}

// NewManager validates cfgs and builds their zones.
func NewManager(cfgs []Config) (*Manager, error) {
	m := &Manager{zones: make(map[string]*Zone, len(cfgs))}
	for _, c := range cfgs {
		c.SetDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := m.zones[c.ID]; dup {
			return nil, fmt.Errorf("duplicate zone %s", c.ID)
		}
		m.zones[c.ID] = New(c)
		m.order = append(m.order, c.ID)
	}
	return m, nil
}

// Zone returns a zone by id.
func (m *Manager) Zone(id string) (*Zone, error) {
	z, ok := m.zones[id]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownZone, id)
	}
	return z, nil
}

// Record forwards a reading to the zone that owns the spot.
func (m *Manager) Record(zoneID, spotID string, sonarCM float64, now time.Time) (Update, error) {
	z, err := m.Zone(zoneID)
	if err != nil {
		return Update{}, err
	}
	return z.Record(spotID, sonarCM, now)
}

// Revert undoes u on the zone that produced it.
func (m *Manager) Revert(u Update) error {
	z, err := m.Zone(u.ZoneID)
	if err != nil {
		return err
	}
	return z.Revert(u)
}

// Zones returns the zones in configuration order.
func (m *Manager) Zones() []*Zone {
	out := make([]*Zone, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.zones[id])
	}
	return out
}

// IDs returns the sorted zone identifiers.
func (m *Manager) IDs() []string {
	ids := append([]string(nil), m.order...)
	sort.Strings(ids)
	return ids
}

// Assign picks the best zone for r and a vacant spot in it. The spot is the
// one closest to the request coordinates, or the first by id without them.
func (m *Manager) Assign(r matching.Request) (matching.Scored, Spot, error) {
	best, err := matching.Best(m.Candidates(), r)
	if err != nil {
		return matching.Scored{}, Spot{}, err
	}
	z, err := m.Zone(best.ZoneID)
	if err != nil {
		return matching.Scored{}, Spot{}, err
	}
	spot, ok := z.VacantSpot(r.Lat, r.Lon)
	if !ok {
		return matching.Scored{}, Spot{}, matching.ErrNoSpotAvailable
	}
	return best, spot, nil
}

// Candidates describes every zone for matching.
func (m *Manager) Candidates() []matching.Candidate {
	out := make([]matching.Candidate, 0, len(m.order))
	for _, z := range m.Zones() {
		c := z.Config()
		out = append(out, matching.Candidate{
			ZoneID:      c.ID,
			Environment: c.Environment,
			Pricing:     c.Pricing,
			PriceHour:   c.PriceHour,
			Lat:         c.Lat,
			Lon:         c.Lon,
			Vacant:      z.Vacant(),
		})
	}
	return out
}
