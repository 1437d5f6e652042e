package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/coordparse"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/session"
)

// createSessionHandler handles POST /v1/sessions
func (h *Handler) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.store.Create(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to create session", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, sess.Snapshot())
}

// getSessionHandler handles GET /v1/sessions/{id}
func (h *Handler) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, sess.Snapshot())
}

// deleteSessionHandler handles DELETE /v1/sessions/{id}
func (h *Handler) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// exportSessionHandler handles GET /v1/sessions/{id}/export
func (h *Handler) exportSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	data, err := sess.ExportGeoJSON()
	if err != nil {
		logger.WithContext(r.Context()).Error("Failed to export session", "error", err, "session_id", sess.ID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "internal", "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", `attachment; filename="points.geojson"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// SelectionRequest selects a point or a commune. Exactly one of PointID and
// Region must be set.
type SelectionRequest struct {
	PointID *int        `json:"point_id,omitempty"`
	Region  *CommuneRef `json:"region,omitempty"`
}

// EffectsResponse returns the session state plus the render intents of a
// transition, in replay order.
type EffectsResponse struct {
	Selection models.Selection `json:"selection"`
	Effects   []session.Effect `json:"effects"`
}

// putSelectionHandler handles PUT /v1/sessions/{id}/selection
func (h *Handler) putSelectionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var req SelectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	var effects []session.Effect
	switch {
	case req.PointID != nil && req.Region == nil:
		effects, err = sess.SelectPoint(*req.PointID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	case req.Region != nil && req.PointID == nil:
		effects = sess.SelectRegion(req.Region.Name, req.Region.Index)
	default:
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "select exactly one of point_id and region")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, EffectsResponse{Selection: sess.Selection(), Effects: effects})
}

// deleteSelectionHandler handles DELETE /v1/sessions/{id}/selection
func (h *Handler) deleteSelectionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	effects := sess.ClearSelection()
	h.writeJSONResponse(w, http.StatusOK, EffectsResponse{Selection: sess.Selection(), Effects: effects})
}

// deleteMarkerHandler handles DELETE /v1/sessions/{id}/marker
func (h *Handler) deleteMarkerHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	effects := sess.ClearLocateMarker()
	h.writeJSONResponse(w, http.StatusOK, EffectsResponse{Selection: sess.Selection(), Effects: effects})
}

// SettingsRequest updates the session's input mode, selection mode, or the
// default region style. Nil fields keep their current value.
type SettingsRequest struct {
	InputMode     *models.InputMode   `json:"input_mode,omitempty"`
	SelectionMode *bool               `json:"selection_mode,omitempty"`
	RegionStyle   *models.RegionStyle `json:"region_style,omitempty"`
}

// putSettingsHandler handles PUT /v1/sessions/{id}/settings
func (h *Handler) putSettingsHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var req SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if req.InputMode != nil {
		if !req.InputMode.Valid() {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown input mode")
			return
		}
		sess.SetInputMode(*req.InputMode)
	}
	if req.SelectionMode != nil {
		sess.SetSelectionMode(*req.SelectionMode)
	}
	if req.RegionStyle != nil {
		sess.SetRegionStyle(*req.RegionStyle)
	}

	h.writeJSONResponse(w, http.StatusOK, sess.Snapshot())
}

// PointRequest creates or updates a user point.
type PointRequest struct {
	Position   *models.CanonicalPoint  `json:"position,omitempty"`
	Shape      *models.PointShape      `json:"shape,omitempty"`
	Visible    *bool                   `json:"visible,omitempty"`
	Properties *models.PointProperties `json:"properties,omitempty"`
}

// createPointHandler handles POST /v1/sessions/{id}/points
func (h *Handler) createPointHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	var req PointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Position == nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "position is required")
		return
	}

	point, verr := h.resolvedPoint(ctx, *req.Position)
	if verr != nil {
		h.writeDomainError(w, r, verr)
		return
	}

	shape := models.ShapeCircle
	if req.Shape != nil {
		if !req.Shape.Valid() {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown point shape")
			return
		}
		shape = *req.Shape
	}

	props := models.PointProperties{}
	if req.Properties != nil {
		props = *req.Properties
	}
	props.ResolvedRegionName = point.regionName

	created, err := sess.AddPoint(point.position, shape, props)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusUnprocessableEntity, "point_limit", err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, created)
}

// listPointsHandler handles GET /v1/sessions/{id}/points
func (h *Handler) listPointsHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	points := sess.Points()
	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"data":  points,
		"count": len(points),
	})
}

// updatePointHandler handles PATCH /v1/sessions/{id}/points/{pointID}
func (h *Handler) updatePointHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.store.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	pointID, err := strconv.Atoi(chi.URLParam(r, "pointID"))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "point ID must be an integer")
		return
	}

	var req PointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Shape != nil && !req.Shape.Valid() {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "unknown point shape")
		return
	}

	upd := session.PointUpdate{
		Shape:      req.Shape,
		Visible:    req.Visible,
		Properties: req.Properties,
	}

	// Moving a point re-resolves its commune.
	if req.Position != nil {
		point, verr := h.resolvedPoint(ctx, *req.Position)
		if verr != nil {
			h.writeDomainError(w, r, verr)
			return
		}
		upd.Position = &point.position
		if upd.Properties == nil {
			current, err := sess.Point(pointID)
			if err != nil {
				h.writeDomainError(w, r, err)
				return
			}
			props := current.Properties
			upd.Properties = &props
		}
		upd.Properties.ResolvedRegionName = point.regionName
	}

	updated, err := sess.UpdatePoint(pointID, upd)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, updated)
}

// deletePointHandler handles DELETE /v1/sessions/{id}/points/{pointID}
func (h *Handler) deletePointHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	pointID, err := strconv.Atoi(chi.URLParam(r, "pointID"))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "bad_request", "point ID must be an integer")
		return
	}

	effects, err := sess.DeletePoint(pointID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, EffectsResponse{Selection: sess.Selection(), Effects: effects})
}

type resolvedPoint struct {
	position   models.CanonicalPoint
	regionName string
}

// resolvedPoint validates a position and resolves its commune. A degraded
// dataset leaves the commune blank rather than rejecting the point.
func (h *Handler) resolvedPoint(ctx context.Context, pos models.CanonicalPoint) (*resolvedPoint, error) {
	point, err := coordparse.Validate(pos.Latitude, pos.Longitude)
	if err != nil {
		return nil, err
	}

	out := &resolvedPoint{position: point}
	region, err := h.resolver.ResolveContaining(ctx, point)
	if err == nil && region != nil {
		out.regionName = region.Name
	}
	return out, nil
}
