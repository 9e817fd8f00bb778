// Package zones exposes sonar intake and spot matching over HTTP.
package zones

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/kilianp07/parkwatch/api"
	"github.com/kilianp07/parkwatch/core/logger"
	"github.com/kilianp07/parkwatch/core/matching"
	"github.com/kilianp07/parkwatch/core/parking"
	"github.com/kilianp07/parkwatch/core/zone"
)

// UpdatePublisher forwards zone updates to the broker.
type UpdatePublisher interface {
	PublishUpdate(ctx context.Context, u zone.Update) error
}

// Handler serves the zone endpoints.
type Handler struct {
	Manager   *zone.Manager
	Publisher UpdatePublisher
	Logger    logger.Logger
	Now       func() time.Time
}

// ReadingRequest is the body of a sonar reading.
type ReadingRequest struct {
	SonarValue *float64 `json:"sonar_value"`
}

// ReadingResponse describes the effect of a reading.
type ReadingResponse struct {
	ID         string   `json:"id"`
	Zone       string   `json:"zone"`
	Spot       string   `json:"spot"`
	Transition string   `json:"transition"`
	Vacant     int      `json:"vacant"`
	Payloads   []string `json:"payloads"`
}

// BestResponse is the body of GET /api/zones/best: the winning zone and the
// spot offered to the driver.
type BestResponse struct {
	matching.Scored
	Spot zone.Spot `json:"spot"`
}

// ZoneStatus is one entry of GET /api/zones.
type ZoneStatus struct {
	ID          string      `json:"id"`
	Environment string      `json:"environment"`
	Pricing     string      `json:"pricing"`
	PriceHour   float64     `json:"price_hour"`
	Vacant      int         `json:"vacant"`
	Spots       []zone.Spot `json:"spots"`
}

// Register mounts the zone routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/zones", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/zones/best", h.best).Methods(http.MethodGet)
	r.HandleFunc("/api/zones/{zone}/spots/{spot}/readings", h.reading).Methods(http.MethodPost)
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) reading(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req ReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SonarValue == nil {
		api.WriteError(w, http.StatusBadRequest, "sonar_value is required")
		return
	}
	u, err := h.Manager.Record(vars["zone"], vars["spot"], *req.SonarValue, h.now())
	switch {
	case errors.Is(err, zone.ErrUnknownZone), errors.Is(err, zone.ErrUnknownSpot):
		api.WriteError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log := logger.OrNop(h.Logger)
	if h.Publisher != nil {
		if err := h.Publisher.PublishUpdate(r.Context(), u); err != nil {
			log.Errorf("publish zone update %s/%s: %v", u.ZoneID, u.SpotID, err)
			if rerr := h.Manager.Revert(u); rerr != nil {
				log.Errorf("revert zone update %s/%s: %v", u.ZoneID, u.SpotID, rerr)
			}
			api.WriteError(w, http.StatusBadGateway, "publish failed")
			return
		}
	}
	if u.Transition != zone.Unchanged {
		log.Infof("zone %s spot %s %s, %d vacant", u.ZoneID, u.SpotID, u.Transition, u.Vacant)
	}
	resp := ReadingResponse{
		ID:         uuid.NewString(),
		Zone:       u.ZoneID,
		Spot:       u.SpotID,
		Transition: u.Transition.String(),
		Vacant:     u.Vacant,
		Payloads:   make([]string, 0, len(u.Messages)),
	}
	for _, m := range u.Messages {
		resp.Payloads = append(resp.Payloads, parking.FormatPayload(m))
	}
	api.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	zs := h.Manager.Zones()
	out := make([]ZoneStatus, 0, len(zs))
	for _, z := range zs {
		cfg := z.Config()
		out = append(out, ZoneStatus{
			ID:          cfg.ID,
			Environment: cfg.Environment,
			Pricing:     cfg.Pricing,
			PriceHour:   cfg.PriceHour,
			Vacant:      z.Vacant(),
			Spots:       z.Spots(),
		})
	}
	api.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) best(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	best, spot, err := h.Manager.Assign(req)
	if errors.Is(err, matching.ErrNoSpotAvailable) {
		api.WriteError(w, http.StatusNotFound, "NoSpotAvailable")
		return
	}
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, BestResponse{Scored: best, Spot: spot})
}

// ParseRequest reads environment, pricing, lat and lon from the query string.
// Coordinates must be given together.
func ParseRequest(r *http.Request) (matching.Request, error) {
	q := r.URL.Query()
	req := matching.Request{Environment: q.Get("environment"), Pricing: q.Get("pricing")}
	lat, lon := q.Get("lat"), q.Get("lon")
	if lat == "" && lon == "" {
		return req, nil
	}
	if lat == "" || lon == "" {
		return req, errors.New("lat and lon must be given together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return req, errors.New("invalid lat")
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return req, errors.New("invalid lon")
	}
	req.Lat, req.Lon = &la, &lo
	return req, nil
}
