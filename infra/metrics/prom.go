package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/parkwatch/core/metrics"
)

var connectionStatuses = []string{"disconnected", "connecting", "connected", "error"}

// PromRecorder records screen events in Prometheus metrics.
type PromRecorder struct {
	payloads   *prometheus.CounterVec
	connection *prometheus.GaugeVec
	sessions   prometheus.Counter
	price      prometheus.Histogram
}

// NewPromRecorder registers metrics on the default Prometheus registerer.
// The HTTP server is started separately with StartPromServer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	payloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_payloads_total",
		Help: "Payloads delivered on the parked topic",
	}, []string{"flag", "outcome"})
	connection := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "parking_connection_status",
		Help: "1 for the current broker connection status, 0 otherwise",
	}, []string{"status"})
	sessions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parking_sessions_finished_total",
		Help: "Parking sessions that reached the finished view",
	})
	price := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parking_session_price",
		Help:    "Price charged for finished parking sessions",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	})

	var err error
	if payloads, err = register(reg, payloads); err != nil {
		return nil, err
	}
	if connection, err = register(reg, connection); err != nil {
		return nil, err
	}
	if sessions, err = register(reg, sessions); err != nil {
		return nil, err
	}
	if price, err = register(reg, price); err != nil {
		return nil, err
	}
	return &PromRecorder{payloads: payloads, connection: connection, sessions: sessions, price: price}, nil
}

// register returns the already registered collector when c was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordPayload increments the payload counter.
func (r *PromRecorder) RecordPayload(ev coremetrics.PayloadEvent) error {
	flag := ev.Flag
	if flag == "" {
		flag = "none"
	}
	r.payloads.WithLabelValues(flag, ev.Outcome).Inc()
	return nil
}

// RecordConnection flips the status gauges so exactly one is set.
func (r *PromRecorder) RecordConnection(ev coremetrics.ConnectionEvent) error {
	for _, s := range connectionStatuses {
		v := 0.0
		if s == ev.Status {
			v = 1
		}
		r.connection.WithLabelValues(s).Set(v)
	}
	return nil
}

// RecordSession counts the session and observes its price.
func (r *PromRecorder) RecordSession(ev coremetrics.SessionEvent) error {
	r.sessions.Inc()
	r.price.Observe(ev.Price)
	return nil
}
