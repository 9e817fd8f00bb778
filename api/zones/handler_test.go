package zones

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/core/zone"
)

type fakePublisher struct {
	updates []zone.Update
	err     error
}

func (f *fakePublisher) PublishUpdate(_ context.Context, u zone.Update) error {
	f.updates = append(f.updates, u)
	return f.err
}

func setup(t *testing.T) (*Handler, *fakePublisher, http.Handler, *time.Time) {
	t.Helper()
	m, err := zone.NewManager([]zone.Config{
		{ID: "pz1", Environment: "Outdoor", Pricing: "Low", PriceHour: 2, Spots: []zone.SpotConfig{{ID: "ps1"}}},
		{ID: "pz2", Environment: "Indoor", Pricing: "High", PriceHour: 4, Spots: []zone.SpotConfig{{ID: "ps1"}}},
	})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	pub := &fakePublisher{}
	h := &Handler{Manager: m, Publisher: pub, Now: func() time.Time { return now }}
	r := api.NewRouter()
	h.Register(r)
	return h, pub, r, &now
}

func postReading(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)))
	return rr
}

func TestReadingArrivalAndDeparture(t *testing.T) {
	_, pub, r, now := setup(t)

	rr := postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `{"sonar_value": 12}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out ReadingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "arrived", out.Transition)
	assert.Equal(t, 0, out.Vacant)
	assert.Equal(t, []string{"1"}, out.Payloads)
	assert.NotEmpty(t, out.ID)

	*now = now.Add(2 * time.Hour)
	rr = postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `{"sonar_value": 80}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "departed", out.Transition)
	assert.Equal(t, 1, out.Vacant)
	assert.Equal(t, []string{"0 4.00"}, out.Payloads)

	require.Len(t, pub.updates, 2)
	assert.Equal(t, "pz1", pub.updates[1].ZoneID)
}

func TestReadingErrors(t *testing.T) {
	_, pub, r, _ := setup(t)

	assert.Equal(t, http.StatusBadRequest, postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `nope`).Code)
	assert.Equal(t, http.StatusBadRequest, postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, postReading(t, r, "/api/zones/pz9/spots/ps1/readings", `{"sonar_value": 1}`).Code)
	assert.Equal(t, http.StatusNotFound, postReading(t, r, "/api/zones/pz1/spots/ps9/readings", `{"sonar_value": 1}`).Code)
	assert.Empty(t, pub.updates)

	pub.err = assert.AnError
	assert.Equal(t, http.StatusBadGateway, postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `{"sonar_value": 1}`).Code)
}

func TestListZones(t *testing.T) {
	_, _, r, _ := setup(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/zones", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out []ZoneStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "pz1", out[0].ID)
	assert.Equal(t, 1, out[0].Vacant)
	require.Len(t, out[0].Spots, 1)
}

func TestBestZone(t *testing.T) {
	_, _, r, _ := setup(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/zones/best?environment=Indoor&pricing=High", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "pz2", out["zone_id"])
	assert.EqualValues(t, 6, out["score"])
	spot, ok := out["spot"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ps1", spot["id"])
	assert.Equal(t, true, spot["vacant"])
}

func TestBestZoneNoneAvailable(t *testing.T) {
	_, _, r, _ := setup(t)
	postReading(t, r, "/api/zones/pz1/spots/ps1/readings", `{"sonar_value": 5}`)
	postReading(t, r, "/api/zones/pz2/spots/ps1/readings", `{"sonar_value": 5}`)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/zones/best", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"NoSpotAvailable"}`, rr.Body.String())
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(httptest.NewRequest(http.MethodGet, "/?lat=48.1&lon=2.3&pricing=Low", nil))
	require.NoError(t, err)
	require.NotNil(t, req.Lat)
	assert.InDelta(t, 48.1, *req.Lat, 1e-9)
	assert.Equal(t, "Low", req.Pricing)

	_, err = ParseRequest(httptest.NewRequest(http.MethodGet, "/?lat=48.1", nil))
	assert.Error(t, err)
	_, err = ParseRequest(httptest.NewRequest(http.MethodGet, "/?lat=x&lon=1", nil))
	assert.Error(t, err)
}

type flakyPublisher struct {
	fails   int
	updates []zone.Update
}

func (f *flakyPublisher) PublishUpdate(_ context.Context, u zone.Update) error {
	if f.fails > 0 {
		f.fails--
		return assert.AnError
	}
	f.updates = append(f.updates, u)
	return nil
}

func TestReadingReplayedAfterPublishFailure(t *testing.T) {
	h, _, r, _ := setup(t)
	pub := &flakyPublisher{fails: 1}
	h.Publisher = pub
	path := "/api/zones/pz1/spots/ps1/readings"

	assert.Equal(t, http.StatusBadGateway, postReading(t, r, path, `{"sonar_value": 10}`).Code)

	rr := postReading(t, r, path, `{"sonar_value": 10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out ReadingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "arrived", out.Transition)
	assert.Equal(t, []string{"1"}, out.Payloads)
	require.Len(t, pub.updates, 1)
}
