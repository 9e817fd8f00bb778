package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/parkwatch/app"
)

var zoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Serve sonar intake for the configured zones",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logFile, err := load("")
		if err != nil {
			return err
		}
		defer logFile.Close()

		ctx, stop := signalContext()
		defer stop()

		svc, err := app.NewZone(cfg)
		if err != nil {
			return err
		}
		defer closeService(svc)
		return svc.Run(ctx)
	},
}
