package zone

import "fmt"

// SpotConfig declares a spot of a zone.
type SpotConfig struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Config declares a parking zone.
type Config struct {
	ID          string       `json:"id"`
	Environment string       `json:"environment"`
	Pricing     string       `json:"pricing"`
	PriceHour   float64      `json:"price_hour"`
	Lat         float64      `json:"lat"`
	Lon         float64      `json:"lon"`
	ThresholdCM float64      `json:"threshold_cm"`
	Spots       []SpotConfig `json:"spots"`
}

var environments = map[string]bool{
	"Outdoor":           true,
	"Indoor":            true,
	"Both":              true,
	"Indoor-Preferred":  true,
	"Outdoor-Preferred": true,
}

var pricings = map[string]bool{"Low": true, "Medium": true, "High": true}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ThresholdCM <= 0 {
		c.ThresholdCM = DefaultThresholdCM
	}
	if c.Pricing == "" {
		c.Pricing = "Medium"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("zone id is required")
	}
	if c.Environment != "" && !environments[c.Environment] {
		return fmt.Errorf("zone %s: unknown environment %q", c.ID, c.Environment)
	}
	if !pricings[c.Pricing] {
		return fmt.Errorf("zone %s: unknown pricing %q", c.ID, c.Pricing)
	}
	if c.PriceHour < 0 {
		return fmt.Errorf("zone %s: price_hour must not be negative", c.ID)
	}
	seen := map[string]bool{}
	for _, s := range c.Spots {
		if s.ID == "" {
			return fmt.Errorf("zone %s: spot id is required", c.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("zone %s: duplicate spot %s", c.ID, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
