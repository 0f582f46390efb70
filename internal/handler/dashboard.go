// Package handler contains the HTTP handlers for the dashboard API.
//
// The simulation endpoints never fail: data problems degrade to empty or
// synthetic output upstream, so every handler here serializes whatever
// its service returns with a 200.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wltransit/opsdash/internal/metrics"
	"github.com/wltransit/opsdash/internal/service"
)

// DashboardHandler serves the simulation endpoints.
type DashboardHandler struct {
	overview  *service.OverviewService
	trips     *service.TripService
	routes    *service.RouteStatusService
	alerts    *service.AlertService
	flow      *service.PassengerFlowService
	collector *metrics.Collector
}

// NewDashboardHandler wires the dashboard handler to its services.
func NewDashboardHandler(
	overview *service.OverviewService,
	trips *service.TripService,
	routes *service.RouteStatusService,
	alerts *service.AlertService,
	flow *service.PassengerFlowService,
	collector *metrics.Collector,
) *DashboardHandler {
	return &DashboardHandler{
		overview:  overview,
		trips:     trips,
		routes:    routes,
		alerts:    alerts,
		flow:      flow,
		collector: collector,
	}
}

// Index handles GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Transit Operations Dashboard API",
	})
}

// SystemOverview handles GET /api/system-overview
func (h *DashboardHandler) SystemOverview(w http.ResponseWriter, r *http.Request) {
	ov := h.overview.Overview(r.Context())
	if h.collector != nil {
		h.collector.SetDataSource(ov.DataSource)
	}
	writeJSON(w, http.StatusOK, ov)
}

// ActiveTrips handles GET /api/active-trips
func (h *DashboardHandler) ActiveTrips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.trips.ActiveTrips(r.Context()))
}

// RouteStatus handles GET /api/route-status
func (h *DashboardHandler) RouteStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.routes.RouteStatus(r.Context()))
}

// CriticalAlerts handles GET /api/critical-alerts
func (h *DashboardHandler) CriticalAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.alerts.Alerts(r.Context()))
}

// PassengerFlow handles GET /api/passenger-flow
func (h *DashboardHandler) PassengerFlow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.flow.Flow(r.Context()))
}

// SystemHealth handles GET /api/system-health
func (h *DashboardHandler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.overview.Health(r.Context()))
}

// writeJSON is a helper that writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
