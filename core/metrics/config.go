package metrics

import "fmt"

// InfluxConfig locates an InfluxDB v2 bucket.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// Config defines settings for metrics recorders.
type Config struct {
	PrometheusEnabled bool         `json:"prometheus_enabled"`
	PrometheusAddr    string       `json:"prometheus_addr"`
	Influx            InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}

// Validate checks mandatory fields of enabled recorders.
func (c Config) Validate() error {
	if !c.Influx.Enabled {
		return nil
	}
	if c.Influx.URL == "" || c.Influx.Org == "" || c.Influx.Bucket == "" {
		return fmt.Errorf("influx requires url, org and bucket")
	}
	return nil
}
