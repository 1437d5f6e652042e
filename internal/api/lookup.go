package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/coordparse"
	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/metrics"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/session"
)

// LookupRequest selects one of the input encodings. Text carries the free
// form encodings; the field groups carry the box encodings exactly as typed.
type LookupRequest struct {
	Mode      models.InputMode      `json:"mode"`
	Text      string                `json:"text,omitempty"`
	Latitude  string                `json:"latitude,omitempty"`
	Longitude string                `json:"longitude,omitempty"`
	DMS       *coordparse.DMSFields `json:"dms,omitempty"`
	Click     *models.CanonicalPoint `json:"click,omitempty"`
	SessionID string                `json:"session_id,omitempty"`
}

// CommuneRef identifies a commune by name and dataset position.
type CommuneRef struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// LookupResponse is the result of a coordinate or name lookup. Found is false
// when the point sits in no commune or the name matches nothing; that is a
// normal negative result, not an error.
type LookupResponse struct {
	Found     bool                   `json:"found"`
	MatchedBy string                 `json:"matched_by,omitempty"`
	Point     *models.CanonicalPoint `json:"point,omitempty"`
	DMS       string                 `json:"dms,omitempty"`
	Commune   *CommuneRef            `json:"commune,omitempty"`
	Effects   []session.Effect       `json:"effects,omitempty"`
}

// lookupHandler handles POST /v1/lookup
func (h *Handler) lookupHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	var (
		point models.CanonicalPoint
		err   error
	)
	switch req.Mode {
	case models.ModeDecimalPair:
		// The free-text box: accepts a decimal pair or a pasted DMS string.
		point, err = coordparse.DetectInput(req.Text)
	case models.ModeDecimalFields:
		point, err = coordparse.ParseDecimalFields(req.Latitude, req.Longitude)
	case models.ModeDMSFields:
		if req.DMS == nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "dms fields are required")
			return
		}
		point, err = coordparse.ParseDMSFields(*req.DMS)
	case models.ModeDMSString:
		point, err = coordparse.ParseDMSString(req.Text)
	case models.ModeMapClick:
		if req.Click == nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "click point is required")
			return
		}
		point, err = coordparse.Validate(req.Click.Latitude, req.Click.Longitude)
	default:
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown input mode")
		return
	}

	// Free text that is not a coordinate at all becomes a name query.
	if errors.Is(err, apperrors.ErrNotCoordinate) {
		metrics.RecordLookup("coordinate", "name_fallback")
		h.resolveName(w, r, req.Text, req.SessionID)
		return
	}
	if err != nil {
		metrics.RecordLookup("coordinate", "invalid")
		h.writeDomainError(w, r, err)
		return
	}

	region, err := h.resolver.ResolveContaining(ctx, point)
	if err != nil {
		metrics.RecordLookup("coordinate", "unavailable")
		h.writeDomainError(w, r, err)
		return
	}

	resp := LookupResponse{
		Found:     region != nil,
		MatchedBy: "coordinate",
		Point:     &point,
		DMS:       coordparse.FormatDMS(point),
	}
	popup := fmt.Sprintf("No commune at %s", resp.DMS)
	if region != nil {
		resp.Commune = &CommuneRef{Name: region.Name, Index: region.Index}
		popup = fmt.Sprintf("%s (%s)", region.Name, resp.DMS)
		metrics.RecordLookup("coordinate", "found")
	} else {
		metrics.RecordLookup("coordinate", "not_found")
	}

	if req.SessionID != "" {
		sess, err := h.store.Get(ctx, req.SessionID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		name := ""
		if region != nil {
			name = region.Name
		}
		resp.Effects = sess.SetLocateMarker(point, name, popup)
	}

	h.writeJSONResponse(w, http.StatusOK, resp)
}

// NameLookupRequest is a free-text commune name query.
type NameLookupRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// nameLookupHandler handles POST /v1/lookup/name
func (h *Handler) nameLookupHandler(w http.ResponseWriter, r *http.Request) {
	var req NameLookupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	h.resolveName(w, r, req.Query, req.SessionID)
}

func (h *Handler) resolveName(w http.ResponseWriter, r *http.Request, query, sessionID string) {
	ctx := r.Context()

	region, err := h.resolver.ResolveByName(ctx, query)
	if err != nil {
		metrics.RecordLookup("name", "unavailable")
		h.writeDomainError(w, r, err)
		return
	}

	resp := LookupResponse{
		Found:     region != nil,
		MatchedBy: "name",
	}
	if region != nil {
		resp.Commune = &CommuneRef{Name: region.Name, Index: region.Index}
		metrics.RecordLookup("name", "found")
	} else {
		metrics.RecordLookup("name", "not_found")
	}

	if sessionID != "" && region != nil {
		sess, err := h.store.Get(ctx, sessionID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		resp.Effects = sess.SelectRegion(region.Name, region.Index)
	}

	h.writeJSONResponse(w, http.StatusOK, resp)
}

// communesHandler handles GET /v1/communes
func (h *Handler) communesHandler(w http.ResponseWriter, r *http.Request) {
	regions, err := h.dataset.Regions()
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	communes := make([]CommuneRef, 0, len(regions))
	for _, region := range regions {
		communes = append(communes, CommuneRef{Name: region.Name, Index: region.Index})
	}

	response := map[string]interface{}{
		"data":      communes,
		"count":     len(communes),
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	h.writeJSONResponse(w, http.StatusOK, response)
}

// datasetStatusHandler handles GET /v1/dataset/status
func (h *Handler) datasetStatusHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.dataset.Status())
}

// DMSAxis is one axis of a DMS conversion result. Negative is separate from
// Degrees so a value south of the equator but above -1 degree keeps its sign.
type DMSAxis struct {
	Degrees  int     `json:"degrees"`
	Minutes  int     `json:"minutes"`
	Seconds  float64 `json:"seconds"`
	Negative bool    `json:"negative"`
}

// ConvertRequest converts between the decimal and DMS encodings.
type ConvertRequest struct {
	Direction string                 `json:"direction"` // decimal_to_dms or dms_to_decimal
	Point     *models.CanonicalPoint `json:"point,omitempty"`
	DMS       *coordparse.DMSFields  `json:"dms,omitempty"`
}

// convertHandler handles POST /v1/convert
func (h *Handler) convertHandler(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	switch req.Direction {
	case "decimal_to_dms":
		if req.Point == nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "point is required")
			return
		}
		point, err := coordparse.Validate(req.Point.Latitude, req.Point.Longitude)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		latDMS, latNeg := coordparse.DecimalToDMS(point.Latitude)
		lonDMS, lonNeg := coordparse.DecimalToDMS(point.Longitude)
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"latitude":  DMSAxis{Degrees: latDMS.Degrees, Minutes: latDMS.Minutes, Seconds: latDMS.Seconds, Negative: latNeg},
			"longitude": DMSAxis{Degrees: lonDMS.Degrees, Minutes: lonDMS.Minutes, Seconds: lonDMS.Seconds, Negative: lonNeg},
			"formatted": coordparse.FormatDMS(point),
		})

	case "dms_to_decimal":
		if req.DMS == nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "dms fields are required")
			return
		}
		point, err := coordparse.ParseDMSFields(*req.DMS)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"point": point,
		})

	default:
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown conversion direction")
	}
}

// tilesHandler handles GET /v1/tiles
func (h *Handler) tilesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, err := h.prober.Pick(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("No tile server reachable", "error", err)
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "tiles_unavailable", "no tile server reachable")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"url":        url,
		"candidates": h.prober.Servers(),
	})
}
