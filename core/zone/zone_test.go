package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/parkwatch/core/matching"
	"github.com/kilianp07/parkwatch/core/parking"
)

func testZone() *Zone {
	return New(Config{
		ID:        "pz1",
		PriceHour: 2.5,
		Spots:     []SpotConfig{{ID: "ps1"}, {ID: "ps2"}},
	})
}

func TestRecordArrivalAndDeparture(t *testing.T) {
	z := testZone()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	u, err := z.Record("ps1", 15, start)
	require.NoError(t, err)
	assert.Equal(t, Arrived, u.Transition)
	assert.Equal(t, []parking.Message{{Flag: parking.FlagParked}}, u.Messages)
	assert.Equal(t, 1, u.Vacant)

	u, err = z.Record("ps1", 12, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, u.Transition)
	assert.Empty(t, u.Messages)

	u, err = z.Record("ps1", 35, start.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Departed, u.Transition)
	require.Len(t, u.Messages, 1)
	assert.Equal(t, parking.FlagLeft, u.Messages[0].Flag)
	assert.InDelta(t, 3.75, u.Messages[0].Price, 1e-9)
	assert.Equal(t, 2, u.Vacant)
}

func TestRecordThresholdIsInclusive(t *testing.T) {
	z := testZone()
	u, err := z.Record("ps2", DefaultThresholdCM, time.Now())
	require.NoError(t, err)
	assert.Equal(t, Arrived, u.Transition)
}

func TestRecordUnknownSpot(t *testing.T) {
	_, err := testZone().Record("nope", 10, time.Now())
	assert.ErrorIs(t, err, ErrUnknownSpot)
}

func TestManager(t *testing.T) {
	m, err := NewManager([]Config{
		{ID: "pz2", Environment: "Indoor", Pricing: "High", Spots: []SpotConfig{{ID: "a"}}},
		{ID: "pz1", Environment: "Outdoor", Spots: []SpotConfig{{ID: "b"}, {ID: "c"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pz1", "pz2"}, m.IDs())

	_, err = m.Record("pz2", "a", 5, time.Now())
	require.NoError(t, err)

	cands := m.Candidates()
	require.Len(t, cands, 2)
	assert.Equal(t, "pz2", cands[0].ZoneID)
	assert.Equal(t, 0, cands[0].Vacant)
	assert.Equal(t, "Medium", cands[1].Pricing)
	assert.Equal(t, 2, cands[1].Vacant)

	_, err = m.Record("pz9", "a", 5, time.Now())
	assert.ErrorIs(t, err, ErrUnknownZone)
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	_, err := NewManager([]Config{{ID: "z", Environment: "Underwater"}})
	assert.Error(t, err)
	_, err = NewManager([]Config{{ID: "z"}, {ID: "z"}})
	assert.Error(t, err)
	_, err = NewManager([]Config{{ID: "z", Spots: []SpotConfig{{ID: "s"}, {ID: "s"}}}})
	assert.Error(t, err)
}

func TestDisplayTopic(t *testing.T) {
	assert.Equal(t, "pz1_display_value", DisplayTopic("pz1"))
}

func TestRevertReplaysTransition(t *testing.T) {
	z := testZone()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	u, err := z.Record("ps1", 10, start)
	require.NoError(t, err)
	require.NoError(t, z.Revert(u))
	assert.Equal(t, 2, z.Vacant())

	u, err = z.Record("ps1", 10, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Arrived, u.Transition)

	d, err := z.Record("ps1", 50, start.Add(61*time.Minute))
	require.NoError(t, err)
	require.Equal(t, Departed, d.Transition)
	require.NoError(t, z.Revert(d))

	d, err = z.Record("ps1", 50, start.Add(61*time.Minute))
	require.NoError(t, err)
	require.Equal(t, Departed, d.Transition)
	assert.InDelta(t, 2.5, d.Messages[0].Price, 1e-9)
}

func TestManagerAssignPicksNearestVacantSpot(t *testing.T) {
	m, err := NewManager([]Config{{
		ID:          "pz1",
		Environment: "Outdoor",
		Lat:         48.85,
		Lon:         2.35,
		Spots: []SpotConfig{
			{ID: "a", Lat: 48.8500, Lon: 2.3500},
			{ID: "b", Lat: 48.8600, Lon: 2.3600},
			{ID: "c", Lat: 48.8601, Lon: 2.3601},
		},
	}})
	require.NoError(t, err)

	best, spot, err := m.Assign(matching.Request{})
	require.NoError(t, err)
	assert.Equal(t, "pz1", best.ZoneID)
	assert.Equal(t, "a", spot.ID)

	lat, lon := 48.8602, 2.3602
	_, err = m.Record("pz1", "c", 5, time.Now())
	require.NoError(t, err)
	_, spot, err = m.Assign(matching.Request{Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	assert.Equal(t, "b", spot.ID)

	for _, id := range []string{"a", "b"} {
		_, err = m.Record("pz1", id, 5, time.Now())
		require.NoError(t, err)
	}
	_, _, err = m.Assign(matching.Request{})
	assert.ErrorIs(t, err, matching.ErrNoSpotAvailable)
}
