package cmd

import (
	"errors"
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/kilianp07/parkwatch/core/matching"
	"github.com/kilianp07/parkwatch/core/zone"
)

var (
	matchEnvironment string
	matchPricing     string
	matchLat         float64
	matchLon         float64
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the configured zones for a driver",
	RunE:  runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVar(&matchEnvironment, "environment", "", "preferred environment (Outdoor, Indoor, Both, Indoor-Preferred, Outdoor-Preferred)")
	f.StringVar(&matchPricing, "pricing", "", "maximum pricing tier (Low, Medium, High)")
	f.Float64Var(&matchLat, "lat", 0, "driver latitude")
	f.Float64Var(&matchLon, "lon", 0, "driver longitude")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, logFile, err := load("")
	if err != nil {
		return err
	}
	defer logFile.Close()

	mgr, err := zone.NewManager(cfg.Zones)
	if err != nil {
		return err
	}
	req := matching.Request{Environment: matchEnvironment, Pricing: matchPricing}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return errors.New("--lat and --lon must be given together")
		}
		req.Lat, req.Lon = &matchLat, &matchLon
	}
	ranked := matching.Rank(mgr.Candidates(), req)
	if len(ranked) == 0 {
		return matching.ErrNoSpotAvailable
	}

	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("ZONE", "SCORE", "ENVIRONMENT", "PRICING", "VACANT", "DISTANCE")
	for _, s := range ranked {
		dist := "-"
		if req.Lat != nil {
			dist = fmt.Sprintf("%.2f km", matching.Distance(s.Lat, s.Lon, *req.Lat, *req.Lon))
		}
		table.AddRow(s.ZoneID, s.Score, s.Environment, s.Pricing, s.Vacant, dist)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}
