package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

func routeInfoStore() store.ScheduleStore {
	return store.NewMemoryStore(
		[]model.Route{{ID: "R1", ShortName: "U6", LongName: "Siebenhirten - Floridsdorf"}},
		[]model.Stop{
			{ID: "S1", Name: "Längenfeldgasse", Lat: 48.185, Lon: 16.335},
			{ID: "S2", Name: "Westbahnhof", Lat: 48.196, Lon: 16.337},
		},
		[]model.Trip{{ID: "T1", RouteID: "R1"}, {ID: "T2", RouteID: "R1"}},
		[]model.StopTime{
			{TripID: "T1", StopID: "S1", ArrivalTime: "08:00:00", DepartureTime: "08:01:00", StopSequence: 1},
			{TripID: "T1", StopID: "S2", ArrivalTime: "08:04:00", DepartureTime: "08:05:00", StopSequence: 2},
			{TripID: "T2", StopID: "S1", ArrivalTime: "09:00:00", DepartureTime: "09:01:00", StopSequence: 1},
		},
	)
}

func TestRoutePerformance(t *testing.T) {
	svc := NewRouteInfoService(routeInfoStore())

	perf, err := svc.Performance(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", perf.RouteID)
	assert.Equal(t, "Siebenhirten - Floridsdorf", perf.RouteName)
	assert.Equal(t, 2, perf.TotalTrips)
	assert.GreaterOrEqual(t, perf.OnTimePercentage, 60.0)
	assert.LessOrEqual(t, perf.OnTimePercentage, 100.0)
	assert.GreaterOrEqual(t, perf.AvgDelay, 0.0)
	assert.LessOrEqual(t, perf.AvgDelay, 12.0)
}

func TestRoutePerformanceNotFound(t *testing.T) {
	svc := NewRouteInfoService(routeInfoStore())
	_, err := svc.Performance(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestRouteStops(t *testing.T) {
	svc := NewRouteInfoService(routeInfoStore())

	stops, err := svc.Stops(context.Background(), "R1")
	require.NoError(t, err)
	require.Len(t, stops, 2, "distinct stops only")
	assert.Equal(t, "S1", stops[0].StopID)
	assert.Equal(t, "S2", stops[1].StopID)
	assert.InDelta(t, 48.185, stops[0].Latitude, 1e-9)
}

func TestRouteStopsNotFound(t *testing.T) {
	svc := NewRouteInfoService(routeInfoStore())
	_, err := svc.Stops(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
