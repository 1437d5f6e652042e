package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/session"
)

func createSession(t *testing.T, router *chi.Mux) string {
	t.Helper()
	w := doJSON(t, router, "POST", "/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d %s", w.Code, w.Body.String())
	}
	var snap struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil || snap.ID == "" {
		t.Fatalf("bad session snapshot: %s", w.Body.String())
	}
	return snap.ID
}

func TestSessionLifecycle(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "GET", "/v1/sessions/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get session: %d", w.Code)
	}

	w = doJSON(t, router, "DELETE", "/v1/sessions/"+id, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete session: %d", w.Code)
	}

	w = doJSON(t, router, "GET", "/v1/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestCreatePointResolvesCommune(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position:   &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
		Properties: &models.PointProperties{Label: "camp", Color: "#ff0000", Opacity: 1},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create point: %d %s", w.Code, w.Body.String())
	}

	var p models.UserPoint
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.ID != 1 || !p.Visible || p.Shape != models.ShapeCircle {
		t.Errorf("unexpected point defaults %+v", p)
	}
	if p.Properties.ResolvedRegionName != "Nouméa" {
		t.Errorf("expected resolved commune Nouméa, got %q", p.Properties.ResolvedRegionName)
	}
	if p.Properties.Label != "camp" {
		t.Errorf("user properties dropped: %+v", p.Properties)
	}
}

func TestCreatePointOutOfRange(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position: &models.CanonicalPoint{Latitude: 95, Longitude: 166},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMovePointReResolves(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position: &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create point: %d", w.Code)
	}
	var p models.UserPoint
	json.Unmarshal(w.Body.Bytes(), &p)

	// Move into Koné
	w = doJSON(t, router, "PATCH", fmt.Sprintf("/v1/sessions/%s/points/%d", id, p.ID), PointRequest{
		Position: &models.CanonicalPoint{Latitude: -21.0, Longitude: 164.5},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update point: %d %s", w.Code, w.Body.String())
	}
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Properties.ResolvedRegionName != "Koné" {
		t.Errorf("moving a point must re-resolve its commune, got %q", p.Properties.ResolvedRegionName)
	}

	// Move into open sea
	w = doJSON(t, router, "PATCH", fmt.Sprintf("/v1/sessions/%s/points/%d", id, p.ID), PointRequest{
		Position: &models.CanonicalPoint{Latitude: 0, Longitude: 0},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update point: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Properties.ResolvedRegionName != "" {
		t.Errorf("point outside every commune must clear the resolution, got %q", p.Properties.ResolvedRegionName)
	}
}

func TestPointVisibilityToggle(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position: &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
	})
	var p models.UserPoint
	json.Unmarshal(w.Body.Bytes(), &p)

	hidden := false
	w = doJSON(t, router, "PATCH", fmt.Sprintf("/v1/sessions/%s/points/%d", id, p.ID), PointRequest{
		Visible: &hidden,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle visibility: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Visible {
		t.Error("expected point hidden")
	}
}

func TestSelectionEndpoints(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position: &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
	})
	var p models.UserPoint
	json.Unmarshal(w.Body.Bytes(), &p)

	// Select the point
	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/selection", SelectionRequest{PointID: &p.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("select point: %d %s", w.Code, w.Body.String())
	}
	var resp EffectsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Selection.Kind != models.SelectionPoint || resp.Selection.PointID != p.ID {
		t.Errorf("unexpected selection %+v", resp.Selection)
	}

	// Switch to a region: point revert comes before region highlight.
	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/selection", SelectionRequest{
		Region: &CommuneRef{Name: "Koné", Index: 1},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("select region: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Effects) != 2 ||
		resp.Effects[0].Kind != session.EffectRevertPointStyle ||
		resp.Effects[1].Kind != session.EffectHighlightRegion {
		t.Errorf("unexpected effects %+v", resp.Effects)
	}

	// Clear
	w = doJSON(t, router, "DELETE", "/v1/sessions/"+id+"/selection", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear selection: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Selection.Kind != models.SelectionNone {
		t.Errorf("expected idle selection, got %+v", resp.Selection)
	}

	// Selecting an unknown point is a 404.
	ghost := 99
	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/selection", SelectionRequest{PointID: &ghost})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown point, got %d", w.Code)
	}

	// Both or neither is a 400.
	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/selection", SelectionRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty selection request, got %d", w.Code)
	}
}

func TestDeletePointEndpoint(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position: &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
	})
	var p models.UserPoint
	json.Unmarshal(w.Body.Bytes(), &p)

	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/selection", SelectionRequest{PointID: &p.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("select point: %d", w.Code)
	}

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/v1/sessions/%s/points/%d", id, p.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete point: %d", w.Code)
	}
	var resp EffectsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Selection.Kind != models.SelectionNone {
		t.Errorf("deleting the selected point must clear the selection, got %+v", resp.Selection)
	}
	if len(resp.Effects) != 1 || resp.Effects[0].Kind != session.EffectRevertPointStyle {
		t.Errorf("expected the revert effect, got %+v", resp.Effects)
	}

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/v1/sessions/%s/points/%d", id, p.ID), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for double delete, got %d", w.Code)
	}
}

func TestDeleteMarkerEndpoint(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	// No marker yet: clearing is a no-op with no effects.
	w := doJSON(t, router, "DELETE", "/v1/sessions/"+id+"/marker", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear marker: %d", w.Code)
	}
	var resp EffectsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Effects) != 0 {
		t.Errorf("expected no effects without a marker, got %+v", resp.Effects)
	}

	// A coordinate lookup with the session drops a marker.
	w = doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair, Text: "-22.5, 166.5", SessionID: id,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("lookup: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, "DELETE", "/v1/sessions/"+id+"/marker", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear marker: %d", w.Code)
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Effects) != 1 || resp.Effects[0].Kind != session.EffectRemoveLocateMarker {
		t.Errorf("expected the remove-marker effect, got %+v", resp.Effects)
	}

	var snap session.Snapshot
	w = doJSON(t, router, "GET", "/v1/sessions/"+id, nil)
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.LocateMarker != nil {
		t.Errorf("marker must be gone from the snapshot, got %+v", snap.LocateMarker)
	}
}

func TestSettingsEndpoint(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	mode := models.ModeDMSFields
	sel := true
	style := models.RegionStyle{BorderColor: "#112233", FillColor: "#112233", FillOpacity: 0.4, Weight: 3}
	w := doJSON(t, router, "PUT", "/v1/sessions/"+id+"/settings", SettingsRequest{
		InputMode:     &mode,
		SelectionMode: &sel,
		RegionStyle:   &style,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update settings: %d %s", w.Code, w.Body.String())
	}

	var snap session.Snapshot
	json.Unmarshal(w.Body.Bytes(), &snap)
	if snap.InputMode != models.ModeDMSFields || !snap.SelectionMode || snap.RegionStyle != style {
		t.Errorf("settings not applied: %+v", snap)
	}

	bad := models.InputMode("smoke_signals")
	w = doJSON(t, router, "PUT", "/v1/sessions/"+id+"/settings", SettingsRequest{InputMode: &bad})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router)

	w := doJSON(t, router, "POST", "/v1/sessions/"+id+"/points", PointRequest{
		Position:   &models.CanonicalPoint{Latitude: -22.5, Longitude: 166.5},
		Properties: &models.PointProperties{Label: "camp"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create point: %d", w.Code)
	}

	w = doJSON(t, router, "GET", "/v1/sessions/"+id+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Errorf("unexpected export %s", w.Body.String())
	}
}

func TestSessionEndpointsUnknownSession(t *testing.T) {
	_, router := newTestHandler(t)

	paths := []struct {
		method, path string
		body         interface{}
	}{
		{"GET", "/v1/sessions/ghost", nil},
		{"DELETE", "/v1/sessions/ghost", nil},
		{"GET", "/v1/sessions/ghost/export", nil},
		{"GET", "/v1/sessions/ghost/points", nil},
		{"POST", "/v1/sessions/ghost/points", PointRequest{Position: &models.CanonicalPoint{Latitude: -22, Longitude: 166}}},
		{"DELETE", "/v1/sessions/ghost/selection", nil},
	}
	for _, tt := range paths {
		w := doJSON(t, router, tt.method, tt.path, tt.body)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tt.method, tt.path, w.Code)
		}
	}
}
