// Package app assembles the watch and zone services from the configuration.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/api/status"
	"github.com/kilianp07/parkwatch/config"
	"github.com/kilianp07/parkwatch/core/alert"
	coremetrics "github.com/kilianp07/parkwatch/core/metrics"
	"github.com/kilianp07/parkwatch/core/parking"
	"github.com/kilianp07/parkwatch/infra/logger"
	"github.com/kilianp07/parkwatch/infra/metrics"
	"github.com/kilianp07/parkwatch/infra/mqtt"
	"github.com/kilianp07/parkwatch/internal/eventbus"
)

const recentAlerts = 50

// WatchService drives the parking screen from the broker.
type WatchService struct {
	Monitor *parking.Monitor
	Bus     *eventbus.Broadcaster[parking.Snapshot]
	Alerts  *alert.Recorder

	cfg *config.Config
	sub *mqtt.Subscriber
	rec coremetrics.Recorder
	log logger.Logger
}

// NewWatch builds the service. notifier receives every alert in addition to
// the service's own recorder and may be nil. A client that cannot be set up
// is reported as an alert, not as an error, so the screen still shows.
func NewWatch(cfg *config.Config, notifier alert.Notifier) (*WatchService, error) {
	log := logger.New("watch")
	rec, err := metrics.Build(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	s := &WatchService{
		Bus:    eventbus.New[parking.Snapshot](),
		Alerts: &alert.Recorder{Limit: recentAlerts},
		cfg:    cfg,
		rec:    rec,
		log:    log,
	}
	notifiers := alert.Multi{s.Alerts}
	if notifier != nil {
		notifiers = append(notifiers, notifier)
	}
	s.Monitor = parking.NewMonitor(parking.Options{
		Notifier: notifiers,
		Recorder: rec,
		Logger:   logger.New("parking"),
		Sink:     s.Bus,
	})
	s.Bus.Publish(s.Monitor.Snapshot())

	sub, err := mqtt.NewSubscriber(cfg.MQTT, s.Monitor)
	if err != nil {
		log.Errorf("mqtt subscriber: %v", err)
	} else {
		s.sub = sub
		log.Infof("client %s using broker %s", sub.ClientID(), sub.Broker())
	}
	return s, nil
}

// Run connects and blocks until ctx is cancelled or a server fails. Connect
// failures surface through the monitor and do not stop the service.
func (s *WatchService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr)
		})
	}
	if s.cfg.API.Enabled {
		r := api.NewRouter()
		status.Register(r, s.Monitor, s.Alerts)
		g.Go(func() error {
			return api.Serve(ctx, s.cfg.API.Addr, r, logger.New("api"))
		})
	}
	if s.sub != nil {
		if err := s.sub.Start(ctx); err != nil {
			s.log.Warnf("start subscriber: %v", err)
		}
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	return g.Wait()
}

// Connected reports whether a client exists.
func (s *WatchService) Connected() bool { return s.sub != nil }

// Close disconnects and releases the bus and metric backends.
func (s *WatchService) Close() error {
	if s.sub != nil {
		s.sub.Close()
	}
	s.Bus.Close()
	metrics.Close(s.rec)
	return nil
}
