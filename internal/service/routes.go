package service

import (
	"context"
	"log"
	"math"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

// routeStatusLimit bounds the number of routes reported, in storage
// order — no ranking is applied.
const routeStatusLimit = 15

// Route-level status labels.
const (
	RouteStatusNormal     = "normal"
	RouteStatusDelay      = "delay"
	RouteStatusDisruption = "disruption"
)

// RouteStatusService synthesizes route-level operational aggregates.
//
// The draws here are deliberately uncorrelated with the per-trip
// snapshots from TripService; the aggregator does not cross-check
// vehicle counts against actually-matched trips (see DESIGN.md).
type RouteStatusService struct {
	sched store.ScheduleStore
}

// NewRouteStatusService creates a route status service.
func NewRouteStatusService(sched store.ScheduleStore) *RouteStatusService {
	return &RouteStatusService{sched: sched}
}

// RouteStatus returns synthesized status records for up to the first 15
// routes. Store failures degrade to an empty slice.
func (s *RouteStatusService) RouteStatus(ctx context.Context) []model.RouteStatusRecord {
	routes, err := s.sched.Routes(ctx, routeStatusLimit)
	if err != nil {
		log.Printf("[service] routes unavailable: %v", err)
		return []model.RouteStatusRecord{}
	}

	records := make([]model.RouteStatusRecord, 0, len(routes))
	for _, route := range routes {
		avgDelay := floatBetween(0, 12)
		records = append(records, model.RouteStatusRecord{
			RouteID:           route.ID,
			RouteName:         route.ShortName,
			RouteLongName:     route.DisplayName(),
			VehiclesActive:    intBetween(1, 8),
			AvgDelay:          round1(avgDelay),
			OnTimePerformance: round1(OnTimePerformance(avgDelay)),
			Status:            routeStatusForDelay(avgDelay),
			PassengersTotal:   intBetween(50, 400),
			AlertsCount:       intBetween(0, 3),
		})
	}
	return records
}

// OnTimePerformance derives the on-time percentage from an average
// delay. Bounded to [60, 100] by construction.
func OnTimePerformance(avgDelay float64) float64 {
	return math.Max(60, 100-avgDelay*5)
}

func routeStatusForDelay(avgDelay float64) string {
	switch {
	case avgDelay > 8:
		return RouteStatusDisruption
	case avgDelay > 5:
		return RouteStatusDelay
	default:
		return RouteStatusNormal
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
