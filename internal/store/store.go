// Package store provides schedule data access for the dashboard.
//
// The same capability interface is served by two backings: a PostgreSQL
// database holding the ingested GTFS tables, and in-memory tables loaded
// from the cleaned flat files at process start. The resolver picks a
// backing per request and reports which one answered.
package store

import (
	"context"
	"errors"

	"github.com/wltransit/opsdash/internal/model"
)

// Backing labels reported in the system-overview response.
const (
	LabelDatabase = "Database"
	LabelCSV      = "CSV Files"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// Counts holds the headline row counts for the overview panel.
type Counts struct {
	Routes int
	Stops  int
	Trips  int
}

// ActiveStopTime is a stop_time judged to be currently serving a trip,
// joined with its trip, route and stop. Rows with a missing trip, route
// or stop are dropped by the backings, not surfaced as errors.
type ActiveStopTime struct {
	Trip     model.Trip
	StopTime model.StopTime
	Stop     model.Stop
	Route    model.Route
}

// ScheduleStore answers count, row and sample queries over the static
// GTFS schedule. All methods are safe for concurrent use.
type ScheduleStore interface {
	// Label identifies the backing ("Database" or "CSV Files").
	Label() string

	// Counts returns route/stop/trip row counts.
	Counts(ctx context.Context) (Counts, error)

	// Routes returns up to limit routes in storage order. limit <= 0
	// means no limit.
	Routes(ctx context.Context, limit int) ([]model.Route, error)

	// SampleRoutes returns up to n routes drawn uniformly without
	// replacement.
	SampleRoutes(ctx context.Context, n int) ([]model.Route, error)

	// SampleStops returns up to n stops drawn uniformly without
	// replacement.
	SampleStops(ctx context.Context, n int) ([]model.Stop, error)

	// RouteByID returns the route with the given id, or ErrNotFound.
	RouteByID(ctx context.Context, id string) (*model.Route, error)

	// TripCountByRoute returns the number of trips scheduled on a route.
	TripCountByRoute(ctx context.Context, routeID string) (int, error)

	// StopsByRoute returns the distinct stops served by a route, in
	// first-encountered stop_time order.
	StopsByRoute(ctx context.Context, routeID string) ([]model.Stop, error)

	// ActiveStopTimes returns joined stop_time rows whose service window
	// contains the instant nowSec (seconds since local midnight), in
	// storage order, capped at limit matches examined.
	ActiveStopTimes(ctx context.Context, nowSec, limit int) ([]ActiveStopTime, error)
}
