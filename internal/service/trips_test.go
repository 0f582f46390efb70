package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

func clockAt(hh, mm int) FixedClock {
	return FixedClock{T: time.Date(2024, 3, 14, hh, mm, 0, 0, time.UTC)}
}

func TestStatusForDelay(t *testing.T) {
	// Exhaustive over the finite delay domain.
	for delay, want := range map[int]string{
		0: StatusOnTime,
		1: StatusOnTime,
		2: StatusOnTime,
		3: StatusDelayed,
		5: StatusDelayed,
		8: StatusSeverelyDelayed,
	} {
		assert.Equal(t, want, StatusForDelay(delay), "delay %d", delay)
	}
}

func TestDrawDelayDomain(t *testing.T) {
	valid := map[int]bool{0: true, 1: true, 2: true, 3: true, 5: true, 8: true}
	for i := 0; i < 1000; i++ {
		assert.True(t, valid[drawDelay()])
	}
}

func TestActiveTripsViennaScenario(t *testing.T) {
	sched := store.NewMemoryStore(
		[]model.Route{{ID: "R1", ShortName: "U1", LongName: "Leopoldau - Oberlaa"}},
		[]model.Stop{{ID: "S1", Name: "Stephansplatz", Lat: 48.2082, Lon: 16.3738}},
		[]model.Trip{{ID: "T1", RouteID: "R1"}},
		[]model.StopTime{{TripID: "T1", StopID: "S1", ArrivalTime: "07:30:00", DepartureTime: "08:00:00", StopSequence: 1}},
	)
	svc := NewTripService(sched, clockAt(8, 15))

	trips := svc.ActiveTrips(context.Background())
	require.Len(t, trips, 1)

	trip := trips[0]
	assert.Equal(t, "T1", trip.TripID)
	assert.Equal(t, "U1", trip.RouteName)
	assert.Equal(t, "Leopoldau - Oberlaa", trip.RouteLongName)
	assert.Equal(t, "Stephansplatz", trip.CurrentStop)
	assert.Equal(t, "08:15:00", trip.LastUpdate)
	assert.Equal(t, StatusForDelay(trip.DelayMinutes), trip.Status)
	assert.Equal(t, vehicleCapacity, trip.Capacity)
	assert.Regexp(t, `^WL-\d{4}$`, trip.VehicleID)

	assert.LessOrEqual(t, math.Abs(trip.Lat-48.2082), positionJitterDeg)
	assert.LessOrEqual(t, math.Abs(trip.Lng-16.3738), positionJitterDeg)

	assert.GreaterOrEqual(t, trip.Passengers, 5)
	assert.LessOrEqual(t, trip.Passengers, 80)
	assert.GreaterOrEqual(t, trip.Speed, 15)
	assert.LessOrEqual(t, trip.Speed, 45)
	assert.GreaterOrEqual(t, trip.NextStopETA, 1)
	assert.LessOrEqual(t, trip.NextStopETA, 8)
}

func TestActiveTripsCappedAtTwenty(t *testing.T) {
	var stopTimes []model.StopTime
	for i := 0; i < 40; i++ {
		stopTimes = append(stopTimes, model.StopTime{
			TripID: "T1", StopID: "S1",
			ArrivalTime: "08:00:00", DepartureTime: "08:05:00", StopSequence: i,
		})
	}
	sched := store.NewMemoryStore(
		[]model.Route{{ID: "R1", ShortName: "U1"}},
		[]model.Stop{{ID: "S1", Name: "Karlsplatz", Lat: 48.2, Lon: 16.36}},
		[]model.Trip{{ID: "T1", RouteID: "R1"}},
		stopTimes,
	)
	svc := NewTripService(sched, clockAt(8, 15))

	trips := svc.ActiveTrips(context.Background())
	assert.Len(t, trips, 20)
}

func TestActiveTripsDefaultCoordinates(t *testing.T) {
	sched := store.NewMemoryStore(
		[]model.Route{{ID: "R1", ShortName: "U1"}},
		[]model.Stop{{ID: "S1", Name: "Unbekannt"}}, // no coordinates
		[]model.Trip{{ID: "T1", RouteID: "R1"}},
		[]model.StopTime{{TripID: "T1", StopID: "S1", ArrivalTime: "08:00:00", DepartureTime: "08:05:00"}},
	)
	svc := NewTripService(sched, clockAt(8, 15))

	trips := svc.ActiveTrips(context.Background())
	require.Len(t, trips, 1)
	assert.LessOrEqual(t, math.Abs(trips[0].Lat-defaultLat), positionJitterDeg)
	assert.LessOrEqual(t, math.Abs(trips[0].Lng-defaultLon), positionJitterDeg)
}

func TestActiveTripsEmptySchedule(t *testing.T) {
	svc := NewTripService(store.NewMemoryStore(nil, nil, nil, nil), clockAt(8, 15))
	trips := svc.ActiveTrips(context.Background())
	assert.NotNil(t, trips)
	assert.Empty(t, trips)
}
