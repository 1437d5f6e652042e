package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/geodata"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/resolver"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/store"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/tiles"
)

func rectRegion(name string, index int, minLon, minLat, maxLon, maxLat float64) models.Region {
	ring := orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
	return models.Region{
		Name:     name,
		Geometry: orb.MultiPolygon{orb.Polygon{ring}},
		Index:    index,
	}
}

// newTestHandler builds a handler over an in-memory store and a two-commune
// dataset. Nouméa covers lon [166,167] lat [-23,-22]; Koné covers
// lon [164,165] lat [-21.5,-20.5].
func newTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	logger.Init("error", "text")

	ds := geodata.NewDataset()
	ds.Swap(&geodata.Snapshot{
		Regions: []models.Region{
			rectRegion("Nouméa", 0, 166.0, -23.0, 167.0, -22.0),
			rectRegion("Koné", 1, 164.0, -21.5, 165.0, -20.5),
		},
		Source:   "test",
		LoadedAt: time.Now().UTC(),
	})

	st := store.NewMemoryStore(time.Hour, 100)
	h := NewHandler(st, nil, ds, resolver.New(ds), tiles.NewProber(nil, time.Second), "test", "", "")

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return h, r
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "GET", "/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}
}

func TestVersionHandler(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "GET", "/v1/version", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLookupDecimalPairFound(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair,
		Text: "-22.27, 166.45",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp LookupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Found || resp.Commune == nil || resp.Commune.Name != "Nouméa" {
		t.Errorf("expected Nouméa, got %+v", resp)
	}
	if resp.Point == nil || resp.Point.Latitude != -22.27 {
		t.Errorf("expected canonical point echoed back, got %+v", resp.Point)
	}
	if resp.DMS == "" {
		t.Error("expected a DMS rendering of the point")
	}
}

func TestLookupSwappedPair(t *testing.T) {
	_, router := newTestHandler(t)

	// Longitude first: the pair heuristic must swap.
	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair,
		Text: "166.45, -22.27",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Commune.Name != "Nouméa" {
		t.Errorf("swap heuristic not applied: %+v", resp)
	}
}

func TestLookupOutsideAnyCommune(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair,
		Text: "0.0, 0.0",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("no containing commune is a normal result, got %d", w.Code)
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Found || resp.Commune != nil {
		t.Errorf("expected found:false, got %+v", resp)
	}
}

func TestLookupRangeError(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode:      models.ModeDecimalFields,
		Latitude:  "95.0",
		Longitude: "166.0",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Kind != "range" {
		t.Errorf("expected range kind, got %q", resp.Error.Kind)
	}
}

func TestLookupParseError(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode:      models.ModeDecimalFields,
		Latitude:  "abc",
		Longitude: "166.0",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Kind != "parse" {
		t.Errorf("expected parse kind, got %q", resp.Error.Kind)
	}
}

func TestLookupNameFallback(t *testing.T) {
	_, router := newTestHandler(t)

	// Free text that is not a coordinate becomes a name query.
	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair,
		Text: "noumea",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.MatchedBy != "name" || resp.Commune.Name != "Nouméa" {
		t.Errorf("expected accent-insensitive name match, got %+v", resp)
	}
}

func TestLookupDMSString(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDMSString,
		Text: `20°44'19.7"S 164°47'41.6"E`,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Commune.Name != "Koné" {
		t.Errorf("expected Koné, got %+v", resp)
	}
}

func TestLookupMapClick(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode:  models.ModeMapClick,
		Click: &models.CanonicalPoint{Latitude: -21.0, Longitude: 164.5},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Commune.Name != "Koné" {
		t.Errorf("expected Koné, got %+v", resp)
	}
}

func TestLookupUnknownMode(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", map[string]string{"mode": "carrier_pigeon"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLookupDatasetUnavailable(t *testing.T) {
	logger.Init("error", "text")
	ds := geodata.NewDataset()
	st := store.NewMemoryStore(time.Hour, 100)
	h := NewHandler(st, nil, ds, resolver.New(ds), tiles.NewProber(nil, time.Second), "test", "", "")
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode: models.ModeDecimalPair,
		Text: "-22.27, 166.45",
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error.Kind != "data_unavailable" {
		t.Errorf("expected data_unavailable kind, got %q", resp.Error.Kind)
	}

	// Parsing endpoints stay up while resolution degrades.
	w = doJSON(t, router, "POST", "/v1/convert", ConvertRequest{
		Direction: "decimal_to_dms",
		Point:     &models.CanonicalPoint{Latitude: -22.27, Longitude: 166.45},
	})
	if w.Code != http.StatusOK {
		t.Errorf("conversion must work without a dataset, got %d", w.Code)
	}
}

func TestLookupWithSessionEmitsEffects(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d", w.Code)
	}
	var snap struct {
		ID string `json:"id"`
	}
	json.Unmarshal(w.Body.Bytes(), &snap)

	w = doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode:      models.ModeDecimalPair,
		Text:      "-22.27, 166.45",
		SessionID: snap.ID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp LookupResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Effects) == 0 {
		t.Fatal("expected render effects for a session-bound lookup")
	}
	kinds := make([]string, 0, len(resp.Effects))
	for _, e := range resp.Effects {
		kinds = append(kinds, string(e.Kind))
	}
	want := []string{"show_locate_marker", "center_view", "open_popup"}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Errorf("unexpected effect ordering %v", kinds)
	}
}

func TestLookupWithUnknownSession(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/lookup", LookupRequest{
		Mode:      models.ModeDecimalPair,
		Text:      "-22.27, 166.45",
		SessionID: "ghost",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCommunesHandler(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "GET", "/v1/communes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Data  []CommuneRef `json:"data"`
		Count int          `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Fatalf("expected 2 communes, got %+v", resp)
	}
	if resp.Data[0].Name != "Nouméa" || resp.Data[1].Name != "Koné" {
		t.Errorf("dataset order must be preserved, got %+v", resp.Data)
	}
}

func TestDatasetStatusHandler(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "GET", "/v1/dataset/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var status geodata.Status
	json.Unmarshal(w.Body.Bytes(), &status)
	if !status.Loaded || status.RegionCount != 2 || status.Source != "test" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/convert", ConvertRequest{
		Direction: "decimal_to_dms",
		Point:     &models.CanonicalPoint{Latitude: -20.7388, Longitude: 164.7947},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Latitude  DMSAxis `json:"latitude"`
		Longitude DMSAxis `json:"longitude"`
		Formatted string  `json:"formatted"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Latitude.Negative || resp.Latitude.Degrees != 20 || resp.Latitude.Minutes != 44 {
		t.Errorf("unexpected latitude %+v", resp.Latitude)
	}
	if resp.Longitude.Negative || resp.Longitude.Degrees != 164 {
		t.Errorf("unexpected longitude %+v", resp.Longitude)
	}
	if resp.Formatted == "" {
		t.Error("expected formatted DMS string")
	}
}

func TestConvertBadDirection(t *testing.T) {
	_, router := newTestHandler(t)

	w := doJSON(t, router, "POST", "/v1/convert", ConvertRequest{Direction: "sideways"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
