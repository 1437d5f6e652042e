// Package api exposes the locator over HTTP: coordinate and name lookups,
// dataset introspection, session state, and the tile-server probe.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/database"
	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/geodata"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/resolver"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/store"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/tiles"
)

// Handler handles HTTP requests for the API
type Handler struct {
	store     store.Store
	db        *database.DB
	dataset   *geodata.Dataset
	resolver  *resolver.Resolver
	prober    *tiles.Prober
	version   string
	buildTime string
	gitCommit string
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(st store.Store, db *database.DB, ds *geodata.Dataset, res *resolver.Resolver, prober *tiles.Prober, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:     st,
		db:        db,
		dataset:   ds,
		resolver:  res,
		prober:    prober,
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Lookup endpoints
		r.Post("/lookup", h.lookupHandler)
		r.Post("/lookup/name", h.nameLookupHandler)
		r.Post("/convert", h.convertHandler)

		// Dataset endpoints
		r.Get("/communes", h.communesHandler)
		r.Get("/dataset/status", h.datasetStatusHandler)

		// Session endpoints
		r.Post("/sessions", h.createSessionHandler)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.getSessionHandler)
			r.Delete("/", h.deleteSessionHandler)
			r.Get("/export", h.exportSessionHandler)
			r.Put("/selection", h.putSelectionHandler)
			r.Delete("/selection", h.deleteSelectionHandler)
			r.Delete("/marker", h.deleteMarkerHandler)
			r.Put("/settings", h.putSettingsHandler)
			r.Post("/points", h.createPointHandler)
			r.Get("/points", h.listPointsHandler)
			r.Patch("/points/{pointID}", h.updatePointHandler)
			r.Delete("/points/{pointID}", h.deletePointHandler)
		})

		// Tile server probe
		r.Get("/tiles", h.tilesHandler)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic.
// A degraded dataset keeps readiness green: parsing and validation endpoints
// still work, and resolution reports unavailability per request.
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store":   "ok",
		"dataset": "ok",
	}

	statusCode := http.StatusOK

	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	status := h.dataset.Status()
	if !status.Loaded {
		checks["dataset"] = "degraded: no dataset loaded"
	}

	if h.db != nil && h.db.IsConfigured() {
		checks["database"] = "ok"
		if err := h.db.Health(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
		}
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, kind, message string) {
	response := ErrorResponse{
		Error: ErrorBody{
			Kind:    kind,
			Message: message,
		},
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// ErrorBody carries the machine-readable error kind plus a human message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Absence of a
// containing commune is not an error and never reaches this path.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperrors.IsParseError(err):
		h.writeErrorResponse(w, r, http.StatusBadRequest, "parse", err.Error())
	case apperrors.IsRangeError(err):
		h.writeErrorResponse(w, r, http.StatusBadRequest, "range", err.Error())
	case errors.Is(err, apperrors.ErrDataUnavailable):
		w.Header().Set("Retry-After", "30")
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "data_unavailable", "commune dataset is not available")
	case errors.Is(err, apperrors.ErrSessionNotFound):
		h.writeErrorResponse(w, r, http.StatusNotFound, "session_not_found", "unknown session")
	case errors.Is(err, apperrors.ErrPointNotFound):
		h.writeErrorResponse(w, r, http.StatusNotFound, "point_not_found", "unknown point")
	default:
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "internal", "Internal server error")
	}
}

// decodeJSON decodes a request body with a 1MB cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
