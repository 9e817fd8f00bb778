package metrics

import coremetrics "github.com/kilianp07/parkwatch/core/metrics"

// MultiRecorder fans events out to multiple recorders.
type MultiRecorder struct {
	Recorders []coremetrics.Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...coremetrics.Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordPayload forwards the event to all recorders, returning the first error encountered.
func (m *MultiRecorder) RecordPayload(ev coremetrics.PayloadEvent) error {
	return m.each(func(r coremetrics.Recorder) error { return r.RecordPayload(ev) })
}

// RecordConnection forwards the event to all recorders.
func (m *MultiRecorder) RecordConnection(ev coremetrics.ConnectionEvent) error {
	return m.each(func(r coremetrics.Recorder) error { return r.RecordConnection(ev) })
}

// RecordSession forwards the event to all recorders.
func (m *MultiRecorder) RecordSession(ev coremetrics.SessionEvent) error {
	return m.each(func(r coremetrics.Recorder) error { return r.RecordSession(ev) })
}

func (m *MultiRecorder) each(fn func(coremetrics.Recorder) error) error {
	var first error
	for _, r := range m.Recorders {
		if err := fn(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every recorder that holds resources.
func (m *MultiRecorder) Close() {
	for _, r := range m.Recorders {
		Close(r)
	}
}

// Close releases rec if it holds resources, such as an InfluxDB client.
func Close(rec coremetrics.Recorder) {
	if c, ok := rec.(interface{ Close() }); ok {
		c.Close()
	}
}

// Build returns the recorder described by cfg. It registers Prometheus
// collectors when enabled and health-checks InfluxDB.
func Build(cfg coremetrics.Config) (coremetrics.Recorder, error) {
	var recs []coremetrics.Recorder
	if cfg.PrometheusEnabled {
		rec, err := NewPromRecorder()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if cfg.Influx.Enabled {
		recs = append(recs, NewInfluxRecorderWithFallback(cfg.Influx))
	}
	switch len(recs) {
	case 0:
		return coremetrics.NopRecorder{}, nil
	case 1:
		return recs[0], nil
	default:
		return NewMultiRecorder(recs...), nil
	}
}
