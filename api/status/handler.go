// Package status exposes the parking screen state over HTTP.
package status

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/core/parking"
)

// Source provides the current snapshot.
type Source interface {
	Snapshot() parking.Snapshot
}

// AlertSource provides the recent alerts.
type AlertSource interface {
	Alerts() []alert.Alert
}

// Response is the body of GET /api/parking/status.
type Response struct {
	Snapshot parking.Snapshot `json:"snapshot"`
	View     parking.View     `json:"view"`
	Alerts   []alert.Alert    `json:"alerts"`
}

// Register mounts GET /api/parking/status on r. alerts may be nil.
func Register(r *mux.Router, src Source, alerts AlertSource) {
	r.Handle("/api/parking/status", NewHandler(src, alerts)).Methods(http.MethodGet)
}

// NewHandler returns the status handler.
func NewHandler(src Source, alerts AlertSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		resp := Response{Snapshot: snap, View: parking.Select(snap), Alerts: []alert.Alert{}}
		if alerts != nil {
			resp.Alerts = append(resp.Alerts, alerts.Alerts()...)
		}
		api.WriteJSON(w, http.StatusOK, resp)
	})
}
