package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/parkwatch/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Options control the output of every logger created by New.
type Options struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string
	// Format is "json" or "console". Empty means APP_ENV decides.
	Format string
	// Output defaults to stdout.
	Output io.Writer
}

var (
	mu     sync.RWMutex
	global = Options{Output: os.Stdout}
)

// Configure replaces the options used by New. It also sets the zerolog
// global level.
func Configure(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	mu.Lock()
	global = opts
	mu.Unlock()
	zerolog.SetGlobalLevel(level)
	return nil
}

// New returns a Logger for the given component.
func New(component string) Logger {
	mu.RLock()
	opts := global
	mu.RUnlock()
	return NewZerologLogger(component, opts)
}
