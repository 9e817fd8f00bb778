package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/parkwatch/core/metrics"
	"github.com/kilianp07/parkwatch/core/zone"
	"github.com/kilianp07/parkwatch/infra/mqtt"
)

// Config is the root configuration shared by every command.
type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Logging LoggingConfig  `json:"logging"`
	Metrics metrics.Config `json:"metrics"`
	API     APIConfig      `json:"api"`
	Zones   []zone.Config  `json:"zones"`
}

// Load reads a YAML or JSON file. Environment variables prefixed with K_
// override file values; "__" separates nested keys, e.g. K_MQTT__HOST.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.Metrics.SetDefaults()
	c.API.SetDefaults()
	for i := range c.Zones {
		c.Zones[i].SetDefaults()
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	for _, z := range c.Zones {
		if err := z.Validate(); err != nil {
			return err
		}
	}
	return nil
}
