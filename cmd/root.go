package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/parkwatch/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "parkwatch",
	Short:         "Parking status screen and zone services",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(watchCmd, zoneCmd, matchCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// load reads the configuration and applies the logging section. logPath is
// used when the configuration names no log file.
func load(logPath string) (*config.Config, io.Closer, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	closer, err := cfg.Logging.Apply(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	return cfg, closer, nil
}
