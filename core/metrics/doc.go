// Package metrics defines the Recorder interface used by the parking screen
// to report delivered payloads, connection status changes and finished
// sessions. Implementations live in infra/metrics; NopRecorder is used when
// nothing is configured.
package metrics
