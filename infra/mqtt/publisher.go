package mqtt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/parkwatch/core/parking"
	"github.com/kilianp07/parkwatch/core/zone"
	"github.com/kilianp07/parkwatch/infra/logger"
)

// Publisher sends zone updates to the broker.
type Publisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// NewPublisher connects to the broker. Unlike the screen, which reports
// failures as alerts, a zone publisher cannot work offline, so connection
// errors are returned.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if cfg.ClientID == "" && cfg.ClientIDPrefix == "parked_client_" {
		cfg.ClientIDPrefix = "parking_zone_"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg, cfg.ResolveClientID())
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(_ paho.Client) { log.Infof("MQTT connected") }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout()) {
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return &Publisher{
		cli:        c,
		topic:      cfg.Topic,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}, nil
}

// PublishUpdate sends the parked/left payloads of u followed by the zone's
// vacant count.
func (p *Publisher) PublishUpdate(ctx context.Context, u zone.Update) error {
	for _, m := range u.Messages {
		if err := p.publish(ctx, p.topic, parking.FormatPayload(m)); err != nil {
			return fmt.Errorf("publish status for %s/%s: %w", u.ZoneID, u.SpotID, err)
		}
	}
	if err := p.publish(ctx, zone.DisplayTopic(u.ZoneID), strconv.Itoa(u.Vacant)); err != nil {
		return fmt.Errorf("publish display for %s: %w", u.ZoneID, err)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, topic, payload string) error {
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugw("published", map[string]any{"topic": topic, "payload": payload})
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return publishErr
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
