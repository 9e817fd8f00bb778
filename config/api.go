package config

// APIConfig controls the HTTP API of the watch and zone commands.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
