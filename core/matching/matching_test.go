package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0, Distance(41.1776, -8.6077, 41.1776, -8.6077), 1e-9)
	// Porto to Lisbon is roughly 274 km.
	assert.InDelta(t, 274, Distance(41.1579, -8.6291, 38.7223, -9.1393), 5)
}

func TestEnvironmentWeight(t *testing.T) {
	assert.Equal(t, 0, environmentWeight("Indoor", ""))
	assert.Equal(t, 3, environmentWeight("Indoor", "Indoor"))
	assert.Equal(t, 2, environmentWeight("Indoor-Preferred", "Indoor"))
	assert.Equal(t, 1, environmentWeight("Outdoor", "Indoor"))
}

func TestPricingWeight(t *testing.T) {
	assert.Equal(t, 0, pricingWeight("High", ""))
	assert.Equal(t, 3, pricingWeight("Low", "Medium"))
	assert.Equal(t, 1, pricingWeight("High", "Low"))
	assert.Equal(t, 3, pricingWeight("Unknown", "Medium"))
}

func TestBestPrefersCloserZone(t *testing.T) {
	cands := []Candidate{
		{ZoneID: "far", Environment: "Outdoor", Pricing: "Low", Lat: 41.20, Lon: -8.60, Vacant: 2},
		{ZoneID: "near", Environment: "Outdoor", Pricing: "Low", Lat: 41.1776, Lon: -8.6077, Vacant: 1},
	}
	best, err := Best(cands, Request{Environment: "Outdoor", Pricing: "Low", Lat: ptr(41.1776), Lon: ptr(-8.6077)})
	require.NoError(t, err)
	assert.Equal(t, "near", best.ZoneID)
	assert.Equal(t, 3+3+6, best.Score)
}

func TestBestSkipsFullZones(t *testing.T) {
	cands := []Candidate{
		{ZoneID: "full", Environment: "Indoor", Vacant: 0},
		{ZoneID: "open", Environment: "Outdoor", Vacant: 1},
	}
	best, err := Best(cands, Request{Environment: "Indoor"})
	require.NoError(t, err)
	assert.Equal(t, "open", best.ZoneID)

	_, err = Best(cands[:1], Request{})
	assert.ErrorIs(t, err, ErrNoSpotAvailable)
}

func TestRankKeepsInputOrderOnTies(t *testing.T) {
	cands := []Candidate{{ZoneID: "a", Vacant: 1}, {ZoneID: "b", Vacant: 1}}
	ranked := Rank(cands, Request{})
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].ZoneID)
}
