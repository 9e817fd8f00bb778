package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/core/alert"
	"github.com/kilianp07/parkwatch/core/parking"
)

func TestStatusHandler_Finished(t *testing.T) {
	alerts := &alert.Recorder{}
	mon := parking.NewMonitor(parking.Options{Notifier: alerts})
	mon.HandlePayload("1")
	mon.HandlePayload("0 12.5")

	r := api.NewRouter()
	Register(r, mon, alerts)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/parking/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var out Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.True(t, out.Snapshot.Parked)
	assert.Equal(t, parking.ViewFinished, out.View.Kind)
	assert.Equal(t, "$12.50 Payment completed", out.View.Detail)
	assert.Empty(t, out.Alerts)
}

func TestStatusHandler_ErrorBannerAndAlerts(t *testing.T) {
	alerts := &alert.Recorder{}
	mon := parking.NewMonitor(parking.Options{Notifier: alerts})
	mon.Dialing()
	mon.ConnectFailed(assert.AnError)

	rr := httptest.NewRecorder()
	NewHandler(mon, alerts).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/parking/status", nil))
	var out Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Connection Error", out.View.ErrorBanner)
	require.Len(t, out.Alerts, 1)
	assert.Equal(t, alert.KindConnectFailed, out.Alerts[0].Kind)
}

func TestStatusHandler_MethodNotAllowed(t *testing.T) {
	r := api.NewRouter()
	Register(r, parking.NewMonitor(parking.Options{}), nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/parking/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealthz(t *testing.T) {
	rr := httptest.NewRecorder()
	api.NewRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
