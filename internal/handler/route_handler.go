package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wltransit/opsdash/internal/service"
	"github.com/wltransit/opsdash/internal/store"
)

// RouteHandler serves the strict per-route queries. These are the only
// endpoints that surface a client error: an unknown route id is a 404,
// not an empty simulation.
type RouteHandler struct {
	info *service.RouteInfoService
}

// NewRouteHandler creates a new route query handler.
func NewRouteHandler(info *service.RouteInfoService) *RouteHandler {
	return &RouteHandler{info: info}
}

// Performance handles GET /api/routes/{route_id}/performance
func (h *RouteHandler) Performance(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["route_id"]

	perf, err := h.info.Performance(r.Context(), routeID)
	if err != nil {
		h.writeError(w, routeID, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

// Stops handles GET /api/routes/{route_id}/stops
func (h *RouteHandler) Stops(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["route_id"]

	stops, err := h.info.Stops(r.Context(), routeID)
	if err != nil {
		h.writeError(w, routeID, err)
		return
	}
	writeJSON(w, http.StatusOK, stops)
}

func (h *RouteHandler) writeError(w http.ResponseWriter, routeID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "not_found",
			"message": "Route " + routeID + " not found.",
		})
		return
	}
	log.Printf("[handler] route query error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal_error",
	})
}
