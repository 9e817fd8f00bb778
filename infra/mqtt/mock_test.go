package mqtt

import (
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type subscription struct {
	topic string
	qos   byte
}

type publication struct {
	topic   string
	qos     byte
	payload string
}

// mockClient implements paho.Client for tests.
type mockClient struct {
	mu           sync.Mutex
	opts         *paho.ClientOptions
	connected    bool
	connectErr   error
	connectHangs bool
	subscribeErr error
	disconnects  int
	subscribed   []subscription
	published    []publication
	publishErrs  []error
	handler      paho.MessageHandler
}

// useMock swaps the client constructor for the duration of the test.
func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	prev := newMQTTClient
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = prev })
}

func (m *mockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockClient) Connect() paho.Token {
	if m.connectHangs {
		return &pendingToken{done: make(chan struct{})}
	}
	if m.connectErr != nil {
		return newToken(m.connectErr)
	}
	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return newToken(nil)
}

func (m *mockClient) Disconnect(uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
	m.connected = false
}

func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, _ := payload.(string)
	m.published = append(m.published, publication{topic, qos, p})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return newToken(err)
	}
	return newToken(nil)
}

func (m *mockClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, subscription{topic, qos})
	m.handler = cb
	return newToken(m.subscribeErr)
}

func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return newToken(nil)
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return newToken(nil) }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return m.IsConnected() }

// deliver simulates a broker message on the subscribed topic.
func (m *mockClient) deliver(payload string) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(m, mockMessage{[]byte(payload)})
	}
}

type dummyToken struct {
	err  error
	done chan struct{}
}

func newToken(err error) *dummyToken {
	ch := make(chan struct{})
	close(ch)
	return &dummyToken{err: err, done: ch}
}

func (d *dummyToken) Wait() bool                     { return true }
func (d *dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d *dummyToken) Done() <-chan struct{}          { return d.done }
func (d *dummyToken) Error() error                   { return d.err }

type pendingToken struct{ done chan struct{} }

func (p *pendingToken) Wait() bool                     { <-p.done; return true }
func (p *pendingToken) WaitTimeout(time.Duration) bool { return false }
func (p *pendingToken) Done() <-chan struct{}          { return p.done }
func (p *pendingToken) Error() error                   { return nil }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "parked" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
