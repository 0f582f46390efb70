package service

import (
	"context"
	"fmt"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

// RouteInfoService answers the strict per-route queries. Unlike the
// simulation endpoints these surface "not found" to the caller instead
// of degrading silently.
type RouteInfoService struct {
	sched store.ScheduleStore
}

// NewRouteInfoService creates a route info service.
func NewRouteInfoService(sched store.ScheduleStore) *RouteInfoService {
	return &RouteInfoService{sched: sched}
}

// Performance returns per-route metrics: the real trip count plus a
// synthetic delay/punctuality pair drawn the same way as the route
// status aggregator. Returns store.ErrNotFound for unknown routes.
func (s *RouteInfoService) Performance(ctx context.Context, routeID string) (*model.RoutePerformance, error) {
	route, err := s.sched.RouteByID(ctx, routeID)
	if err != nil {
		return nil, err
	}

	totalTrips, err := s.sched.TripCountByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("trips for route %q: %w", routeID, err)
	}

	avgDelay := floatBetween(0, 12)
	return &model.RoutePerformance{
		RouteID:          route.ID,
		RouteName:        route.DisplayName(),
		TotalTrips:       totalTrips,
		OnTimePercentage: round1(OnTimePerformance(avgDelay)),
		AvgDelay:         round1(avgDelay),
	}, nil
}

// Stops returns the distinct stops served by a route, in first-served
// order. Returns store.ErrNotFound for unknown routes.
func (s *RouteInfoService) Stops(ctx context.Context, routeID string) ([]model.RouteStop, error) {
	if _, err := s.sched.RouteByID(ctx, routeID); err != nil {
		return nil, err
	}

	stops, err := s.sched.StopsByRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("stops for route %q: %w", routeID, err)
	}

	out := make([]model.RouteStop, 0, len(stops))
	for _, st := range stops {
		out = append(out, model.RouteStop{
			StopID:    st.ID,
			Name:      st.Name,
			Latitude:  st.Lat,
			Longitude: st.Lon,
		})
	}
	return out, nil
}
