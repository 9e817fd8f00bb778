package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

var (
	// ErrConnectTimeout is returned when the broker does not accept the
	// connection within the connect timeout.
	ErrConnectTimeout = errors.New("timeout connecting to broker")
	// ErrSubscribeTimeout is reported when the subscription is not
	// acknowledged within the connect timeout.
	ErrSubscribeTimeout = errors.New("timeout waiting for subscription")
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	// Broker is a full broker URL. When set it wins over Scheme, Host, Port and Path.
	Broker string `json:"broker"`
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	// Path is only used for websocket schemes.
	Path string `json:"path"`

	// ClientID is used verbatim when set. Otherwise ClientIDPrefix plus a
	// random suffix is used.
	ClientID       string `json:"client_id"`
	ClientIDPrefix string `json:"client_id_prefix"`
	Username       string `json:"username"`
	Password       string `json:"password"`

	Topic                 string `json:"topic"`
	QoS                   byte   `json:"qos"`
	ConnectTimeoutSeconds int    `json:"connect_timeout_seconds"`
	DisableReconnect      bool   `json:"disable_reconnect"`

	UseTLS     bool        `json:"use_tls"`
	ClientCert string      `json:"client_cert"`
	ClientKey  string      `json:"client_key"`
	CABundle   string      `json:"ca_bundle"`
	TLSConfig  *tls.Config `json:"-"`

	// MaxRetries and BackoffMS apply to publishes.
	MaxRetries int `json:"max_retries"`
	BackoffMS  int `json:"backoff_ms"`
}

// SetDefaults applies the defaults of the parking screen: a websocket
// listener on port 9001, topic "parked" and a 30 second connect timeout.
func (c *Config) SetDefaults() {
	if c.Scheme == "" {
		c.Scheme = "ws"
	}
	if c.Port == 0 {
		c.Port = 9001
	}
	if c.Path == "" && isWebsocket(c.Scheme) {
		c.Path = "/mqtt"
	}
	if c.ClientIDPrefix == "" {
		c.ClientIDPrefix = "parked_client_"
	}
	if c.Topic == "" {
		c.Topic = "parked"
	}
	if c.ConnectTimeoutSeconds <= 0 {
		c.ConnectTimeoutSeconds = 30
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" && c.Host == "" {
		return fmt.Errorf("mqtt: broker or host is required")
	}
	if c.Broker == "" {
		switch c.Scheme {
		case "tcp", "ssl", "tls", "ws", "wss":
		default:
			return fmt.Errorf("mqtt: unsupported scheme %q", c.Scheme)
		}
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt: invalid qos %d", c.QoS)
	}
	return nil
}

// BrokerURL returns the address handed to paho.
func (c Config) BrokerURL() string {
	if c.Broker != "" {
		return c.Broker
	}
	u := url.URL{Scheme: c.Scheme, Host: net.JoinHostPort(c.Host, strconv.Itoa(c.Port))}
	if isWebsocket(c.Scheme) {
		u.Path = c.Path
	}
	return u.String()
}

// ConnectTimeout returns the connect timeout as a duration.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// ResolveClientID returns ClientID or the prefix with a random suffix.
func (c Config) ResolveClientID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.ClientIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func isWebsocket(scheme string) bool { return scheme == "ws" || scheme == "wss" }

// pahoClient is the subset of paho.Client used here.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config, clientID string) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.BrokerURL()).SetClientID(clientID)
	opts.SetConnectTimeout(cfg.ConnectTimeout())
	opts.SetAutoReconnect(!cfg.DisableReconnect)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
// Only the CA bundle is required; a client certificate is optional.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires ca_bundle")
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("no certificates in %s", c.CABundle)
	}
	cfg := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	if c.ClientCert != "" || c.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
