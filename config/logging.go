package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kilianp07/parkwatch/infra/logger"
)

// LoggingConfig defines the output of the structured logger.
type LoggingConfig struct {
	// Level is a zerolog level: "debug", "info", "warn" or "error".
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
	// Path receives the logs when set. The terminal screen always needs one
	// so log lines do not draw over it.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("unknown log format %s", c.Format)
	}
	return nil
}

// Apply configures the global logger. fallbackPath is used when Path is
// empty and console output must be kept free. The returned closer releases
// the log file, if any.
func (c LoggingConfig) Apply(fallbackPath string) (io.Closer, error) {
	path := c.Path
	if path == "" {
		path = fallbackPath
	}
	var out io.Writer = os.Stdout
	var closer io.Closer = io.NopCloser(nil)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	}
	if err := logger.Configure(logger.Options{Level: c.Level, Format: c.Format, Output: out}); err != nil {
		_ = closer.Close()
		return nil, err
	}
	return closer, nil
}
