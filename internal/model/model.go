// Package model contains the static GTFS entities served by the schedule
// store and the ephemeral snapshot records synthesized per request.
package model

// ─── Static GTFS entities ───────────────────────────────────

// Agency maps to the `agency` table / agency.txt.
type Agency struct {
	ID       string `json:"agency_id" csv:"agency_id"`
	Name     string `json:"agency_name" csv:"agency_name"`
	URL      string `json:"agency_url" csv:"agency_url"`
	Timezone string `json:"agency_timezone" csv:"agency_timezone"`
	Lang     string `json:"agency_lang" csv:"agency_lang"`
}

// Route maps to the `routes` table / routes_clean.csv.
type Route struct {
	ID        string `json:"route_id" csv:"route_id"`
	AgencyID  string `json:"agency_id" csv:"agency_id"`
	ShortName string `json:"route_short_name" csv:"route_short_name"`
	LongName  string `json:"route_long_name" csv:"route_long_name"`
	Type      int    `json:"route_type" csv:"route_type"`
	Color     string `json:"route_color" csv:"route_color"`
	TextColor string `json:"route_text_color" csv:"route_text_color"`
}

// DisplayName returns the long name, falling back to the short name.
func (r Route) DisplayName() string {
	if r.LongName != "" {
		return r.LongName
	}
	return r.ShortName
}

// Trip maps to the `trips` table / trips_clean.csv.
type Trip struct {
	ID          string `json:"trip_id" csv:"trip_id"`
	RouteID     string `json:"route_id" csv:"route_id"`
	ServiceID   string `json:"service_id" csv:"service_id"`
	DirectionID int    `json:"direction_id" csv:"direction_id"`
}

// Stop maps to the `stops` table / stops_clean.csv.
type Stop struct {
	ID     string  `json:"stop_id" csv:"stop_id"`
	Name   string  `json:"stop_name" csv:"stop_name"`
	Lat    float64 `json:"stop_lat" csv:"stop_lat"`
	Lon    float64 `json:"stop_lon" csv:"stop_lon"`
	ZoneID string  `json:"zone_id" csv:"zone_id"`
}

// StopTime maps to the `stop_times` table / stop_times_clean.csv.
// Arrival and departure are the raw GTFS wall-clock strings (HH:MM:SS,
// hours may exceed 24 for trips running past midnight).
type StopTime struct {
	TripID        string `json:"trip_id" csv:"trip_id"`
	ArrivalTime   string `json:"arrival_time" csv:"arrival_time"`
	DepartureTime string `json:"departure_time" csv:"departure_time"`
	StopID        string `json:"stop_id" csv:"stop_id"`
	StopSequence  int    `json:"stop_sequence" csv:"stop_sequence"`
}

// Calendar maps to the `calendar` table / calendar.csv. Loaded for row
// counts and future service-day filtering; the window matcher does not
// consult it (see DESIGN.md).
type Calendar struct {
	ServiceID string `json:"service_id" csv:"service_id"`
	Monday    int    `json:"monday" csv:"monday"`
	Tuesday   int    `json:"tuesday" csv:"tuesday"`
	Wednesday int    `json:"wednesday" csv:"wednesday"`
	Thursday  int    `json:"thursday" csv:"thursday"`
	Friday    int    `json:"friday" csv:"friday"`
	Saturday  int    `json:"saturday" csv:"saturday"`
	Sunday    int    `json:"sunday" csv:"sunday"`
	StartDate string `json:"start_date" csv:"start_date"`
	EndDate   string `json:"end_date" csv:"end_date"`
}

// ─── Ephemeral snapshots (one HTTP request lifetime) ────────

// ActiveTripSnapshot is the synthesized real-time view of one matched
// trip/stop-time pair.
type ActiveTripSnapshot struct {
	TripID        string  `json:"trip_id"`
	RouteID       string  `json:"route_id"`
	RouteName     string  `json:"route_name"`
	RouteLongName string  `json:"route_long_name"`
	VehicleID     string  `json:"vehicle_id"`
	Status        string  `json:"status"`
	DelayMinutes  int     `json:"delay_minutes"`
	CurrentStop   string  `json:"current_stop"`
	StopID        string  `json:"stop_id"`
	Passengers    int     `json:"passengers"`
	Capacity      int     `json:"capacity"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Speed         int     `json:"speed"`
	NextStopETA   int     `json:"next_stop_eta"`
	LastUpdate    string  `json:"last_update"`
}

// RouteStatusRecord is the synthesized operational state of one route.
type RouteStatusRecord struct {
	RouteID           string  `json:"route_id"`
	RouteName         string  `json:"route_name"`
	RouteLongName     string  `json:"route_long_name"`
	VehiclesActive    int     `json:"vehicles_active"`
	AvgDelay          float64 `json:"avg_delay"`
	OnTimePerformance float64 `json:"on_time_performance"`
	Status            string  `json:"status"`
	PassengersTotal   int     `json:"passengers_total"`
	AlertsCount       int     `json:"alerts_count"`
}

// AlertRecord is one synthetic incident. Alerts are never persisted;
// repeated requests yield different sets.
type AlertRecord struct {
	ID           int    `json:"id"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
	Timestamp    string `json:"timestamp"`
	Acknowledged bool   `json:"acknowledged"`
}

// HourlyLoad is one bucket of the 24-hour ridership curve.
type HourlyLoad struct {
	Hour       string `json:"hour"`
	Passengers int    `json:"passengers"`
	IsCurrent  bool   `json:"is_current"`
}

// StationLoad is the synthesized current load of one sampled station.
type StationLoad struct {
	StopName       string  `json:"stop_name"`
	CurrentLoad    int     `json:"current_load"`
	Capacity       int     `json:"capacity"`
	LoadPercentage float64 `json:"load_percentage"`
	WaitingTime    int     `json:"waiting_time"`
}

// PassengerFlowSnapshot bundles the hourly curve with ranked station loads.
type PassengerFlowSnapshot struct {
	HourlyData   []HourlyLoad  `json:"hourly_data"`
	StationLoads []StationLoad `json:"station_loads"`
}

// SystemOverview is the dashboard headline, annotated with which backing
// supplied the counts.
type SystemOverview struct {
	TotalRoutes       int    `json:"total_routes"`
	TotalStops        int    `json:"total_stops"`
	ActiveVehicles    int    `json:"active_vehicles"`
	OperationalRoutes int    `json:"operational_routes"`
	SystemStatus      string `json:"system_status"`
	DataSource        string `json:"data_source"`
	LastUpdate        string `json:"last_update"`
}

// SystemHealth is the entirely synthetic health panel.
type SystemHealth struct {
	OverallHealth     int    `json:"overall_health"`
	NetworkStatus     string `json:"network_status"`
	DatabaseStatus    string `json:"database_status"`
	DataQuality       int    `json:"data_quality"`
	LastSync          string `json:"last_sync"`
	ActiveConnections int    `json:"active_connections"`
	SystemLoad        int    `json:"system_load"`
}

// RoutePerformance is the strict-query per-route metrics response.
type RoutePerformance struct {
	RouteID          string  `json:"route_id"`
	RouteName        string  `json:"route_name"`
	TotalTrips       int     `json:"total_trips"`
	OnTimePercentage float64 `json:"on_time_percentage"`
	AvgDelay         float64 `json:"avg_delay"`
}

// RouteStop is one stop served by a route.
type RouteStop struct {
	StopID    string  `json:"stop_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
