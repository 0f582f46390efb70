package store

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"github.com/wltransit/opsdash/internal/gtfstime"
	"github.com/wltransit/opsdash/internal/model"
)

// Flat file names produced by the GTFS cleaning step.
const (
	routesFile    = "routes_clean.csv"
	stopsFile     = "stops_clean.csv"
	tripsFile     = "trips_clean.csv"
	stopTimesFile = "stop_times_clean.csv"
	calendarFile  = "calendar.csv"
)

// stopTimeRow carries a stop_time with its times pre-parsed to seconds.
// Rows with unparseable times keep ok=false and never match a window.
type stopTimeRow struct {
	st     model.StopTime
	depSec int
	arrSec int
	ok     bool
}

// CSVStore serves schedule queries from in-memory tables loaded once at
// process start. All reads are lock-free: the tables are never mutated
// after Load returns.
type CSVStore struct {
	routes    []model.Route
	stops     []model.Stop
	trips     []model.Trip
	stopTimes []stopTimeRow
	calendars []model.Calendar

	routeByID map[string]*model.Route
	stopByID  map[string]*model.Stop
	tripByID  map[string]*model.Trip

	tripsByRoute map[string][]*model.Trip
	timesByTrip  map[string][]*stopTimeRow
}

var _ ScheduleStore = (*CSVStore)(nil)

// LoadCSVStore reads the cleaned GTFS flat files from dir. A missing or
// malformed file loads as an empty table with a logged warning — the
// dashboard must come up and render something even with no data.
func LoadCSVStore(dir string) *CSVStore {
	s := &CSVStore{}

	readTable(dir, routesFile, &s.routes)
	readTable(dir, stopsFile, &s.stops)
	readTable(dir, tripsFile, &s.trips)
	readTable(dir, calendarFile, &s.calendars)

	var rawStopTimes []model.StopTime
	readTable(dir, stopTimesFile, &rawStopTimes)
	s.stopTimes = make([]stopTimeRow, 0, len(rawStopTimes))
	for _, st := range rawStopTimes {
		row := stopTimeRow{st: st}
		dep, errD := gtfstime.Parse(st.DepartureTime)
		arr, errA := gtfstime.Parse(st.ArrivalTime)
		if errD == nil && errA == nil {
			row.depSec, row.arrSec, row.ok = dep, arr, true
		}
		s.stopTimes = append(s.stopTimes, row)
	}

	s.buildIndexes()

	log.Printf("[store] csv tables loaded: %d routes, %d stops, %d trips, %d stop_times, %d calendars",
		len(s.routes), len(s.stops), len(s.trips), len(s.stopTimes), len(s.calendars))
	return s
}

// NewMemoryStore builds a CSVStore directly from slices. Used by tests
// and anywhere the tables come from something other than files on disk.
func NewMemoryStore(routes []model.Route, stops []model.Stop, trips []model.Trip, stopTimes []model.StopTime) *CSVStore {
	s := &CSVStore{routes: routes, stops: stops, trips: trips}
	for _, st := range stopTimes {
		row := stopTimeRow{st: st}
		dep, errD := gtfstime.Parse(st.DepartureTime)
		arr, errA := gtfstime.Parse(st.ArrivalTime)
		if errD == nil && errA == nil {
			row.depSec, row.arrSec, row.ok = dep, arr, true
		}
		s.stopTimes = append(s.stopTimes, row)
	}
	s.buildIndexes()
	return s
}

// readTable unmarshals one CSV file into out (a pointer to a slice).
func readTable[T any](dir, name string, out *[]T) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		log.Printf("[store] %s not loaded: %v", name, err)
		return
	}
	defer f.Close()

	// Some feed exports start with a UTF-8 BOM, which would corrupt the
	// first header name.
	if err := gocsv.Unmarshal(bom.NewReader(f), out); err != nil {
		log.Printf("[store] %s not loaded: %v", name, err)
		*out = nil
	}
}

func (s *CSVStore) buildIndexes() {
	s.routeByID = make(map[string]*model.Route, len(s.routes))
	for i := range s.routes {
		s.routeByID[s.routes[i].ID] = &s.routes[i]
	}
	s.stopByID = make(map[string]*model.Stop, len(s.stops))
	for i := range s.stops {
		s.stopByID[s.stops[i].ID] = &s.stops[i]
	}
	s.tripByID = make(map[string]*model.Trip, len(s.trips))
	s.tripsByRoute = make(map[string][]*model.Trip)
	for i := range s.trips {
		t := &s.trips[i]
		s.tripByID[t.ID] = t
		s.tripsByRoute[t.RouteID] = append(s.tripsByRoute[t.RouteID], t)
	}
	s.timesByTrip = make(map[string][]*stopTimeRow)
	for i := range s.stopTimes {
		row := &s.stopTimes[i]
		s.timesByTrip[row.st.TripID] = append(s.timesByTrip[row.st.TripID], row)
	}
}

// Label implements ScheduleStore.
func (s *CSVStore) Label() string { return LabelCSV }

// Counts implements ScheduleStore.
func (s *CSVStore) Counts(context.Context) (Counts, error) {
	return Counts{Routes: len(s.routes), Stops: len(s.stops), Trips: len(s.trips)}, nil
}

// Routes implements ScheduleStore.
func (s *CSVStore) Routes(_ context.Context, limit int) ([]model.Route, error) {
	if limit <= 0 || limit > len(s.routes) {
		limit = len(s.routes)
	}
	out := make([]model.Route, limit)
	copy(out, s.routes[:limit])
	return out, nil
}

// SampleRoutes implements ScheduleStore.
func (s *CSVStore) SampleRoutes(_ context.Context, n int) ([]model.Route, error) {
	idx := samplePerm(len(s.routes), n)
	out := make([]model.Route, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.routes[i])
	}
	return out, nil
}

// SampleStops implements ScheduleStore.
func (s *CSVStore) SampleStops(_ context.Context, n int) ([]model.Stop, error) {
	idx := samplePerm(len(s.stops), n)
	out := make([]model.Stop, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.stops[i])
	}
	return out, nil
}

// RouteByID implements ScheduleStore.
func (s *CSVStore) RouteByID(_ context.Context, id string) (*model.Route, error) {
	r, ok := s.routeByID[id]
	if !ok {
		return nil, fmt.Errorf("route %q: %w", id, ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

// TripCountByRoute implements ScheduleStore.
func (s *CSVStore) TripCountByRoute(_ context.Context, routeID string) (int, error) {
	return len(s.tripsByRoute[routeID]), nil
}

// StopsByRoute implements ScheduleStore.
func (s *CSVStore) StopsByRoute(_ context.Context, routeID string) ([]model.Stop, error) {
	seen := make(map[string]bool)
	var out []model.Stop
	for _, trip := range s.tripsByRoute[routeID] {
		for _, row := range s.timesByTrip[trip.ID] {
			if seen[row.st.StopID] {
				continue
			}
			seen[row.st.StopID] = true
			if stop, ok := s.stopByID[row.st.StopID]; ok {
				out = append(out, *stop)
			}
		}
	}
	return out, nil
}

// ActiveStopTimes implements ScheduleStore. Storage order, capped at
// limit matches; rows referencing a missing trip, route or stop are
// skipped silently.
func (s *CSVStore) ActiveStopTimes(_ context.Context, nowSec, limit int) ([]ActiveStopTime, error) {
	var out []ActiveStopTime
	for i := range s.stopTimes {
		if limit > 0 && len(out) >= limit {
			break
		}
		row := &s.stopTimes[i]
		if !row.ok || !gtfstime.InWindow(row.depSec, row.arrSec, nowSec) {
			continue
		}
		trip, ok := s.tripByID[row.st.TripID]
		if !ok {
			continue
		}
		route, ok := s.routeByID[trip.RouteID]
		if !ok {
			continue
		}
		stop, ok := s.stopByID[row.st.StopID]
		if !ok {
			continue
		}
		out = append(out, ActiveStopTime{
			Trip:     *trip,
			StopTime: row.st,
			Stop:     *stop,
			Route:    *route,
		})
	}
	return out, nil
}

// samplePerm returns up to n distinct indices into a population of size
// total, uniformly without replacement.
func samplePerm(total, n int) []int {
	if n > total {
		n = total
	}
	if n <= 0 {
		return nil
	}
	return rand.Perm(total)[:n]
}
