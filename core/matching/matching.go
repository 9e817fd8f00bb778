// Package matching ranks parking zones against a driver request.
package matching

import (
	"errors"
	"math"
	"sort"
	"strings"
)

// ErrNoSpotAvailable is returned when no zone has a vacant spot.
var ErrNoSpotAvailable = errors.New("no spot available")

const earthRadiusKM = 6371.0

var pricingValues = map[string]float64{"Low": 0.25, "Medium": 1.0, "High": 2.0}

// Candidate is a zone as seen by the matcher.
type Candidate struct {
	ZoneID      string  `json:"zone_id"`
	Environment string  `json:"environment"`
	Pricing     string  `json:"pricing"`
	PriceHour   float64 `json:"price_hour"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Vacant      int     `json:"vacant"`
}

// Request is what a driver asks for. Empty strings and nil coordinates mean
// no preference.
type Request struct {
	Environment string
	Pricing     string
	Lat         *float64
	Lon         *float64
}

// Scored pairs a candidate with its score.
type Scored struct {
	Candidate
	Score int `json:"score"`
}

// Score adds the environment, pricing and proximity weights.
func Score(c Candidate, r Request) int {
	return environmentWeight(c.Environment, r.Environment) +
		pricingWeight(c.Pricing, r.Pricing) +
		proximityWeight(c, r)
}

// Rank scores every candidate with a vacancy, best first. Equal scores keep
// their input order.
func Rank(cands []Candidate, r Request) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		if c.Vacant <= 0 {
			continue
		}
		out = append(out, Scored{Candidate: c, Score: Score(c, r)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Best returns the highest ranked candidate.
func Best(cands []Candidate, r Request) (Scored, error) {
	ranked := Rank(cands, r)
	if len(ranked) == 0 {
		return Scored{}, ErrNoSpotAvailable
	}
	return ranked[0], nil
}

func environmentWeight(spot, client string) int {
	if client == "" {
		return 0
	}
	base, _, _ := strings.Cut(client, "-")
	switch {
	case spot == client:
		return 3
	case strings.HasSuffix(spot, "-Preferred") && strings.HasPrefix(spot, base):
		return 2
	default:
		return 1
	}
}

func pricingValue(tier string) float64 {
	if v, ok := pricingValues[tier]; ok {
		return v
	}
	return 1.0
}

func pricingWeight(spot, client string) int {
	if client == "" {
		return 0
	}
	s, c := pricingValue(spot), pricingValue(client)
	switch {
	case s <= c:
		return 3
	case s <= c*1.5:
		return 2
	default:
		return 1
	}
}

func proximityWeight(c Candidate, r Request) int {
	if r.Lat == nil || r.Lon == nil {
		return 0
	}
	d := Distance(c.Lat, c.Lon, *r.Lat, *r.Lon)
	switch {
	case d <= 0.1:
		return 6
	case d <= 0.25:
		return 5
	case d <= 0.5:
		return 4
	case d <= 1.0:
		return 3
	case d <= 2.0:
		return 2
	case d <= 5.0:
		return 1
	default:
		return 0
	}
}

// Distance returns the great-circle distance in kilometres.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
