package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/api/zones"
	"github.com/kilianp07/parkwatch/config"
	"github.com/kilianp07/parkwatch/core/zone"
	"github.com/kilianp07/parkwatch/infra/logger"
	"github.com/kilianp07/parkwatch/infra/metrics"
	"github.com/kilianp07/parkwatch/infra/mqtt"
)

// ZoneService turns sonar readings into broker payloads.
type ZoneService struct {
	Manager *zone.Manager
	Handler *zones.Handler

	cfg       *config.Config
	publisher *mqtt.Publisher
	log       logger.Logger
}

// NewZone connects the publisher and builds the zone manager.
func NewZone(cfg *config.Config) (*ZoneService, error) {
	if len(cfg.Zones) == 0 {
		return nil, fmt.Errorf("no zones configured")
	}
	mgr, err := zone.NewManager(cfg.Zones)
	if err != nil {
		return nil, fmt.Errorf("zones: %w", err)
	}
	pub, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	log := logger.New("zone")
	return &ZoneService{
		Manager:   mgr,
		Handler:   &zones.Handler{Manager: mgr, Publisher: pub, Logger: log},
		cfg:       cfg,
		publisher: pub,
		log:       log,
	}, nil
}

// Run serves the zone API until ctx is cancelled or a server fails.
func (s *ZoneService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr)
		})
	}
	r := api.NewRouter()
	s.Handler.Register(r)
	for _, id := range s.Manager.IDs() {
		s.log.Infof("zone %s ready", id)
	}
	g.Go(func() error {
		return api.Serve(ctx, s.cfg.API.Addr, r, logger.New("api"))
	})
	return g.Wait()
}

// Close disconnects the publisher.
func (s *ZoneService) Close() error {
	s.publisher.Disconnect()
	return nil
}
