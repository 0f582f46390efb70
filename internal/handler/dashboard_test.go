package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/service"
	"github.com/wltransit/opsdash/internal/store"
)

func testRouter(files *store.CSVStore) *mux.Router {
	clock := service.FixedClock{T: time.Date(2024, 3, 14, 8, 15, 0, 0, time.UTC)}
	resolver := store.NewResolver(nil, nil, files)
	sched := resolver.Schedule()

	trips := service.NewTripService(sched, clock)
	dashboard := NewDashboardHandler(
		service.NewOverviewService(resolver, trips, nil, 30*time.Second, clock),
		trips,
		service.NewRouteStatusService(sched),
		service.NewAlertService(sched, clock),
		service.NewPassengerFlowService(sched, clock),
		nil,
	)
	routeHandler := NewRouteHandler(service.NewRouteInfoService(sched))

	r := mux.NewRouter()
	r.HandleFunc("/", dashboard.Index).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/system-overview", dashboard.SystemOverview).Methods(http.MethodGet)
	api.HandleFunc("/active-trips", dashboard.ActiveTrips).Methods(http.MethodGet)
	api.HandleFunc("/route-status", dashboard.RouteStatus).Methods(http.MethodGet)
	api.HandleFunc("/critical-alerts", dashboard.CriticalAlerts).Methods(http.MethodGet)
	api.HandleFunc("/passenger-flow", dashboard.PassengerFlow).Methods(http.MethodGet)
	api.HandleFunc("/system-health", dashboard.SystemHealth).Methods(http.MethodGet)
	api.HandleFunc("/routes/{route_id}/performance", routeHandler.Performance).Methods(http.MethodGet)
	api.HandleFunc("/routes/{route_id}/stops", routeHandler.Stops).Methods(http.MethodGet)
	return r
}

func populatedFiles() *store.CSVStore {
	return store.NewMemoryStore(
		[]model.Route{{ID: "R1", ShortName: "U1", LongName: "Leopoldau - Oberlaa"}},
		[]model.Stop{{ID: "S1", Name: "Stephansplatz", Lat: 48.2082, Lon: 16.3738}},
		[]model.Trip{{ID: "T1", RouteID: "R1"}},
		[]model.StopTime{{TripID: "T1", StopID: "S1", ArrivalTime: "07:30:00", DepartureTime: "08:00:00", StopSequence: 1}},
	)
}

func get(t *testing.T, router *mux.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSystemOverviewEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/system-overview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var ov model.SystemOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, 1, ov.TotalRoutes)
	assert.Equal(t, 1, ov.ActiveVehicles)
	assert.Equal(t, service.SystemOperational, ov.SystemStatus)
	assert.Equal(t, store.LabelCSV, ov.DataSource)
}

func TestSystemOverviewEmptyStore(t *testing.T) {
	rec := get(t, testRouter(store.NewMemoryStore(nil, nil, nil, nil)), "/api/system-overview")
	require.Equal(t, http.StatusOK, rec.Code, "no data is not an error")

	var ov model.SystemOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Zero(t, ov.TotalRoutes)
	assert.Equal(t, service.SystemRestricted, ov.SystemStatus)
}

func TestActiveTripsEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/active-trips")
	require.Equal(t, http.StatusOK, rec.Code)

	var trips []model.ActiveTripSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "T1", trips[0].TripID)
}

func TestCriticalAlertsEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/critical-alerts")
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []model.AlertRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.GreaterOrEqual(t, len(alerts), 2)
	assert.LessOrEqual(t, len(alerts), 6)
}

func TestPassengerFlowEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/passenger-flow")
	require.Equal(t, http.StatusOK, rec.Code)

	var flow model.PassengerFlowSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	assert.Len(t, flow.HourlyData, 24)
}

func TestRouteStatusEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/route-status")
	require.Equal(t, http.StatusOK, rec.Code)

	var statuses []model.RouteStatusRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &statuses))
	require.Len(t, statuses, 1)
	assert.Equal(t, "R1", statuses[0].RouteID)
}

// Trip selection may run on a simulated peak-hour clock, but reported
// timestamps and the flagged passenger-flow bucket follow the wall clock.
func TestTimestampsFollowWallClock(t *testing.T) {
	files := populatedFiles()
	wall := service.FixedClock{T: time.Date(2024, 3, 14, 1, 0, 0, 0, time.UTC)}
	trips := service.NewTripService(files, service.PeakClock{})
	dashboard := NewDashboardHandler(
		service.NewOverviewService(store.NewResolver(nil, nil, files), trips, nil, 30*time.Second, wall),
		trips,
		service.NewRouteStatusService(files),
		service.NewAlertService(files, wall),
		service.NewPassengerFlowService(files, wall),
		nil,
	)
	r := mux.NewRouter()
	r.HandleFunc("/api/passenger-flow", dashboard.PassengerFlow).Methods(http.MethodGet)
	r.HandleFunc("/api/system-overview", dashboard.SystemOverview).Methods(http.MethodGet)

	for i := 0; i < 20; i++ {
		rec := get(t, r, "/api/passenger-flow")
		require.Equal(t, http.StatusOK, rec.Code)

		var flow model.PassengerFlowSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
		for _, bucket := range flow.HourlyData {
			assert.Equal(t, bucket.Hour == "01:00", bucket.IsCurrent, bucket.Hour)
		}
	}

	rec := get(t, r, "/api/system-overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var ov model.SystemOverview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ov))
	assert.Equal(t, "01:00:00", ov.LastUpdate)
}

func TestSystemHealthEndpoint(t *testing.T) {
	rec := get(t, testRouter(populatedFiles()), "/api/system-health")
	require.Equal(t, http.StatusOK, rec.Code)

	var health model.SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "disconnected", health.DatabaseStatus)
	assert.Equal(t, "online", health.NetworkStatus)
}

func TestRoutePerformanceEndpoint(t *testing.T) {
	router := testRouter(populatedFiles())

	rec := get(t, router, "/api/routes/R1/performance")
	require.Equal(t, http.StatusOK, rec.Code)

	var perf model.RoutePerformance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perf))
	assert.Equal(t, "R1", perf.RouteID)
	assert.Equal(t, 1, perf.TotalTrips)

	rec = get(t, router, "/api/routes/unknown/performance")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteStopsEndpoint(t *testing.T) {
	router := testRouter(populatedFiles())

	rec := get(t, router, "/api/routes/R1/stops")
	require.Equal(t, http.StatusOK, rec.Code)

	var stops []model.RouteStop
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stops))
	require.Len(t, stops, 1)
	assert.Equal(t, "Stephansplatz", stops[0].Name)

	rec = get(t, router, "/api/routes/unknown/stops")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
