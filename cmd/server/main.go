package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/wltransit/opsdash/config"
	"github.com/wltransit/opsdash/internal/handler"
	"github.com/wltransit/opsdash/internal/metrics"
	"github.com/wltransit/opsdash/internal/middleware"
	"github.com/wltransit/opsdash/internal/service"
	"github.com/wltransit/opsdash/internal/store"
	"github.com/wltransit/opsdash/pkg/cache"
	"github.com/wltransit/opsdash/pkg/db"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to PostgreSQL (optional) ────────────────
	// The database being down is not fatal: the overview falls back to
	// the flat-file tables and the simulation never needed it anyway.
	var pgPool *pgxpool.Pool
	var pgStore *store.PostgresStore
	var probe func(context.Context) error
	if pgPool, err = db.NewPostgresPool(ctx, cfg.Postgres); err != nil {
		log.Printf("⚠ PostgreSQL unavailable, overview will use CSV: %v", err)
		pgPool = nil
	} else {
		defer pgPool.Close()
		pgStore = store.NewPostgresStore(pgPool)
		probe = pgStore.Ping
		log.Println("✓ PostgreSQL connected")
	}

	// ── Connect to Redis (optional) ─────────────────────
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		if redisClient, err = cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			log.Printf("⚠ Redis unavailable, overview cache disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✓ Redis connected")
		}
	}

	// ── Load flat-file schedule tables ──────────────────
	files := store.LoadCSVStore(cfg.GTFS.DataDir)

	// pgStore is a typed nil inside the interface when unset; pass an
	// explicit nil so the resolver skips the database path cleanly.
	var dbStore store.ScheduleStore
	if pgStore != nil {
		dbStore = pgStore
	}
	resolver := store.NewResolver(dbStore, probe, files)
	sched := resolver.Schedule()

	// ── Initialize layers ───────────────────────────────
	// The peak clock only drives trip selection; timestamps and the
	// passenger-flow is_current bucket follow the wall clock.
	var tripClock service.Clock = service.SystemClock{}
	if cfg.Simulation.PeakClock {
		tripClock = service.PeakClock{}
	}
	wallClock := service.SystemClock{}

	collector := metrics.NewCollector()

	tripSvc := service.NewTripService(sched, tripClock)
	overviewSvc := service.NewOverviewService(resolver, tripSvc, redisClient, cfg.Simulation.OverviewCacheTTL, wallClock)
	routeStatusSvc := service.NewRouteStatusService(sched)
	alertSvc := service.NewAlertService(sched, wallClock)
	flowSvc := service.NewPassengerFlowService(sched, wallClock)
	routeInfoSvc := service.NewRouteInfoService(sched)

	dashboardHandler := handler.NewDashboardHandler(overviewSvc, tripSvc, routeStatusSvc, alertSvc, flowSvc, collector)
	routeHandler := handler.NewRouteHandler(routeInfoSvc)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()

	router.HandleFunc("/", dashboardHandler.Index).Methods(http.MethodGet)
	router.HandleFunc("/health", healthHandler(pgPool, redisClient)).Methods(http.MethodGet)
	router.Handle("/metrics", collector.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/system-overview", dashboardHandler.SystemOverview).Methods(http.MethodGet)
	api.HandleFunc("/active-trips", dashboardHandler.ActiveTrips).Methods(http.MethodGet)
	api.HandleFunc("/route-status", dashboardHandler.RouteStatus).Methods(http.MethodGet)
	api.HandleFunc("/critical-alerts", dashboardHandler.CriticalAlerts).Methods(http.MethodGet)
	api.HandleFunc("/passenger-flow", dashboardHandler.PassengerFlow).Methods(http.MethodGet)
	api.HandleFunc("/system-health", dashboardHandler.SystemHealth).Methods(http.MethodGet)
	api.HandleFunc("/routes/{route_id}/performance", routeHandler.Performance).Methods(http.MethodGet)
	api.HandleFunc("/routes/{route_id}/stops", routeHandler.Stops).Methods(http.MethodGet)

	// Browser dashboards poll these endpoints cross-origin.
	chain := middleware.CORS(middleware.RequestLogger(middleware.Recoverer(middleware.Instrument(collector, router))))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("🚇 Dashboard API listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

// HealthResponse represents the /health endpoint response.
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler reports liveness plus the state of the optional
// backings. The process serves from flat files regardless, so a down
// backing degrades the report without failing the check.
func healthHandler(pgPool *pgxpool.Pool, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Services: make(map[string]string),
		}

		if pgPool == nil {
			resp.Services["postgres"] = "not configured"
		} else if err := db.HealthCheck(r.Context(), pgPool); err != nil {
			resp.Services["postgres"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["postgres"] = "healthy"
		}

		if redisClient == nil {
			resp.Services["redis"] = "not configured"
		} else if err := cache.HealthCheck(r.Context(), redisClient); err != nil {
			resp.Services["redis"] = "unhealthy: " + err.Error()
		} else {
			resp.Services["redis"] = "healthy"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
