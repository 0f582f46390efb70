package service

import (
	"context"
	"fmt"
	"log"

	"github.com/wltransit/opsdash/internal/gtfstime"
	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

const (
	// examineLimit bounds how many matched stop_times the matcher pulls
	// from the store; returnLimit caps the response.
	examineLimit = 25
	returnLimit  = 20

	// vehicleCapacity is the fixed per-vehicle capacity.
	vehicleCapacity = 100

	// vehiclePrefix is the fleet prefix for synthesized vehicle ids.
	vehiclePrefix = "WL"

	// positionJitterDeg is the per-axis uniform offset applied to the
	// matched stop's coordinates to fake vehicle movement.
	positionJitterDeg = 0.001
)

// Fallback display position when a stop carries no usable coordinates
// (Stephansplatz, Vienna).
const (
	defaultLat = 48.2082
	defaultLon = 16.3738
)

// Delay-to-status thresholds. Fixed policy, not configurable.
const (
	StatusOnTime          = "on time"
	StatusDelayed         = "delayed"
	StatusSeverelyDelayed = "severely delayed"
)

// TripService matches scheduled trips against the simulated current
// instant and synthesizes a per-trip operational snapshot.
type TripService struct {
	sched store.ScheduleStore
	clock Clock
}

// NewTripService creates a trip service over the given schedule backing.
func NewTripService(sched store.ScheduleStore, clock Clock) *TripService {
	return &TripService{sched: sched, clock: clock}
}

// ActiveTrips returns the synthesized snapshots of all currently active
// trips, in store iteration order, capped at 20. An empty schedule or a
// store error degrades to an empty slice, never an error response.
func (s *TripService) ActiveTrips(ctx context.Context) []model.ActiveTripSnapshot {
	now := s.clock.Now()
	nowSec := gtfstime.DaySeconds(now)

	matches, err := s.sched.ActiveStopTimes(ctx, nowSec, examineLimit)
	if err != nil {
		log.Printf("[service] active stop_times unavailable: %v", err)
		return []model.ActiveTripSnapshot{}
	}

	lastUpdate := now.Format("15:04:05")
	trips := make([]model.ActiveTripSnapshot, 0, len(matches))
	for _, m := range matches {
		if len(trips) >= returnLimit {
			break
		}
		trips = append(trips, synthesizeTrip(m, lastUpdate))
	}
	return trips
}

// synthesizeTrip builds one snapshot from a matched row. Every random
// attribute is drawn independently.
func synthesizeTrip(m store.ActiveStopTime, lastUpdate string) model.ActiveTripSnapshot {
	delay := drawDelay()

	lat, lon := m.Stop.Lat, m.Stop.Lon
	if lat == 0 || lon == 0 {
		lat, lon = defaultLat, defaultLon
	}

	return model.ActiveTripSnapshot{
		TripID:        m.Trip.ID,
		RouteID:       m.Route.ID,
		RouteName:     m.Route.ShortName,
		RouteLongName: m.Route.DisplayName(),
		VehicleID:     fmt.Sprintf("%s-%d", vehiclePrefix, intBetween(1000, 9999)),
		Status:        StatusForDelay(delay),
		DelayMinutes:  delay,
		CurrentStop:   m.Stop.Name,
		StopID:        m.Stop.ID,
		Passengers:    intBetween(5, 80),
		Capacity:      vehicleCapacity,
		Lat:           lat + floatBetween(-positionJitterDeg, positionJitterDeg),
		Lng:           lon + floatBetween(-positionJitterDeg, positionJitterDeg),
		Speed:         intBetween(15, 45),
		NextStopETA:   intBetween(1, 8),
		LastUpdate:    lastUpdate,
	}
}

// StatusForDelay maps delay minutes to the three-level status label.
func StatusForDelay(delayMinutes int) string {
	switch {
	case delayMinutes <= 2:
		return StatusOnTime
	case delayMinutes <= 5:
		return StatusDelayed
	default:
		return StatusSeverelyDelayed
	}
}
