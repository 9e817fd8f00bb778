package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Handler receives the connection lifecycle and delivered payloads.
// *parking.Monitor implements it.
type Handler interface {
	Dialing()
	Reconnecting()
	Connected()
	ConnectFailed(err error)
	InitFailed(err error)
	Subscribed(topic string)
	SubscribeFailed(err error)
	ConnectionLost(err error)
	Closed()
	HandlePayload(payload string)
}

// Subscriber owns the single client connection of a screen.
type Subscriber struct {
	cfg      Config
	cli      pahoClient
	h        Handler
	clientID string

	closeOnce sync.Once
}

// NewSubscriber builds the client once. Setup failures are reported to h as
// InitFailed and returned.
func NewSubscriber(cfg Config, h Handler) (*Subscriber, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		h.InitFailed(err)
		return nil, err
	}
	s := &Subscriber{cfg: cfg, h: h, clientID: cfg.ResolveClientID()}
	opts, err := NewClientOptions(cfg, s.clientID)
	if err != nil {
		h.InitFailed(err)
		return nil, fmt.Errorf("mqtt options: %w", err)
	}
	opts.OnConnect = s.onConnect
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		h.ConnectionLost(err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		h.Reconnecting()
	}
	s.cli = newMQTTClient(opts)
	return s, nil
}

// ClientID returns the identifier presented to the broker.
func (s *Subscriber) ClientID() string { return s.clientID }

// Broker returns the broker address.
func (s *Subscriber) Broker() string { return s.cfg.BrokerURL() }

// Start connects and waits for the outcome, the connect timeout, or ctx.
// Cancelling ctx abandons the attempt without raising an alert.
// The subscription is issued from the connect hook so it is renewed on every
// automatic reconnect.
func (s *Subscriber) Start(ctx context.Context) error {
	s.h.Dialing()
	token := s.cli.Connect()
	timer := time.NewTimer(s.cfg.ConnectTimeout())
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			s.h.ConnectFailed(err)
			return fmt.Errorf("connect %s: %w", s.cfg.BrokerURL(), err)
		}
		return nil
	case <-timer.C:
		s.h.ConnectFailed(ErrConnectTimeout)
		return ErrConnectTimeout
	case <-ctx.Done():
		// No alert for a cancelled attempt.
		s.h.ConnectionLost(nil)
		return ctx.Err()
	}
}

func (s *Subscriber) onConnect(c paho.Client) {
	s.h.Connected()
	token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, s.onMessage)
	if !token.WaitTimeout(s.cfg.ConnectTimeout()) {
		s.h.SubscribeFailed(ErrSubscribeTimeout)
		return
	}
	if err := token.Error(); err != nil {
		s.h.SubscribeFailed(err)
		return
	}
	s.h.Subscribed(s.cfg.Topic)
}

func (s *Subscriber) onMessage(_ paho.Client, msg paho.Message) {
	s.h.HandlePayload(string(msg.Payload()))
}

// Close disconnects if the client is connected. Only the first call has an effect.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		if s.cli != nil && s.cli.IsConnected() {
			s.cli.Disconnect(250)
			s.h.Closed()
		}
	})
}
