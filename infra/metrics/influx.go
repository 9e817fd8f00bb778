package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/parkwatch/core/metrics"
	"github.com/kilianp07/parkwatch/infra/logger"
)

// InfluxRecorder writes screen events to an InfluxDB instance using the official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given InfluxDB endpoint.
func NewInfluxRecorder(cfg coremetrics.InfluxConfig) *InfluxRecorder {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback tries to ping the InfluxDB instance and
// returns a NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(cfg coremetrics.InfluxConfig) coremetrics.Recorder {
	rec := NewInfluxRecorder(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordPayload writes a parking_payload point.
func (r *InfluxRecorder) RecordPayload(ev coremetrics.PayloadEvent) error {
	p := write.NewPointWithMeasurement("parking_payload").
		AddTag("flag", ev.Flag).
		AddTag("outcome", ev.Outcome).
		AddField("count", 1).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordConnection writes a parking_connection point.
func (r *InfluxRecorder) RecordConnection(ev coremetrics.ConnectionEvent) error {
	p := write.NewPointWithMeasurement("parking_connection").
		AddTag("status", ev.Status).
		AddField("count", 1).
		SetTime(ev.Time)
	return r.write(p)
}

// RecordSession writes a parking_session point with the rounded price.
func (r *InfluxRecorder) RecordSession(ev coremetrics.SessionEvent) error {
	p := write.NewPointWithMeasurement("parking_session").
		AddField("price", math.Round(ev.Price*100)/100).
		SetTime(ev.Time)
	return r.write(p)
}

func (r *InfluxRecorder) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (r *InfluxRecorder) Close() { r.client.Close() }
