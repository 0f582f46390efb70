package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wltransit/opsdash/internal/model"
	"github.com/wltransit/opsdash/internal/store"
)

// System-wide status labels.
const (
	SystemOperational = "operational"
	SystemRestricted  = "restricted"
)

const overviewCacheKey = "opsdash:overview:counts"

// cachedCounts is the Redis value for the overview fast path.
type cachedCounts struct {
	Routes int    `json:"routes"`
	Stops  int    `json:"stops"`
	Trips  int    `json:"trips"`
	Source string `json:"source"`
}

// OverviewService produces the dashboard headline and the synthetic
// health panel. Counts come from the resolver's chosen backing, with an
// optional short-TTL Redis fast path to avoid hammering the database on
// dashboards that poll every few seconds.
type OverviewService struct {
	resolver *store.Resolver
	trips    *TripService
	cache    *redis.Client // may be nil
	cacheTTL time.Duration
	clock    Clock
}

// NewOverviewService wires the overview service. cache may be nil to
// disable the Redis fast path.
func NewOverviewService(resolver *store.Resolver, trips *TripService, cache *redis.Client, cacheTTL time.Duration, clock Clock) *OverviewService {
	return &OverviewService{
		resolver: resolver,
		trips:    trips,
		cache:    cache,
		cacheTTL: cacheTTL,
		clock:    clock,
	}
}

// Overview returns the system overview. Never fails: both backings down
// yields zero counts and a restricted status.
func (s *OverviewService) Overview(ctx context.Context) model.SystemOverview {
	counts, source := s.counts(ctx)

	activeVehicles := len(s.trips.ActiveTrips(ctx))
	operationalRoutes := 0
	if counts.Routes > 0 {
		operationalRoutes = min(counts.Routes, activeVehicles)
	}

	status := SystemRestricted
	if activeVehicles > 0 {
		status = SystemOperational
	}

	return model.SystemOverview{
		TotalRoutes:       counts.Routes,
		TotalStops:        counts.Stops,
		ActiveVehicles:    activeVehicles,
		OperationalRoutes: operationalRoutes,
		SystemStatus:      status,
		DataSource:        source,
		LastUpdate:        s.clock.Now().Format("15:04:05"),
	}
}

// counts resolves the headline counts, consulting the Redis cache first.
func (s *OverviewService) counts(ctx context.Context) (store.Counts, string) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, overviewCacheKey).Bytes(); err == nil {
			var cc cachedCounts
			if json.Unmarshal(raw, &cc) == nil {
				return store.Counts{Routes: cc.Routes, Stops: cc.Stops, Trips: cc.Trips}, cc.Source
			}
		}
	}

	counts, source := s.resolver.OverviewCounts(ctx)

	if s.cache != nil {
		raw, _ := json.Marshal(cachedCounts{
			Routes: counts.Routes, Stops: counts.Stops, Trips: counts.Trips, Source: source,
		})
		// Fire and forget; a cache write failure only costs the fast path.
		if err := s.cache.Set(ctx, overviewCacheKey, raw, s.cacheTTL).Err(); err != nil {
			log.Printf("[service] overview cache write failed: %v", err)
		}
	}
	return counts, source
}

// Health returns the synthetic health panel. Only the database status
// reflects anything real: a live probe through the resolver.
func (s *OverviewService) Health(ctx context.Context) model.SystemHealth {
	dbStatus := "disconnected"
	if s.resolver.DatabaseAvailable(ctx) {
		dbStatus = "connected"
	}

	return model.SystemHealth{
		OverallHealth:     intBetween(85, 98),
		NetworkStatus:     "online",
		DatabaseStatus:    dbStatus,
		DataQuality:       intBetween(95, 100),
		LastSync:          s.clock.Now().Format("15:04:05"),
		ActiveConnections: intBetween(150, 300),
		SystemLoad:        intBetween(25, 85),
	}
}
