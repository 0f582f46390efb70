package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wltransit/opsdash/internal/model"
)

// PostgresStore serves schedule queries from the ingested GTFS tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ ScheduleStore = (*PostgresStore)(nil)

// NewPostgresStore creates a store backed by the given PG pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping probes connectivity, used by the resolver before trusting this
// backing for a request.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("postgres probe: %w", err)
	}
	return nil
}

// Label implements ScheduleStore.
func (s *PostgresStore) Label() string { return LabelDatabase }

// Counts implements ScheduleStore.
func (s *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM routes),
		       (SELECT COUNT(*) FROM stops),
		       (SELECT COUNT(*) FROM trips)
	`).Scan(&c.Routes, &c.Stops, &c.Trips)
	if err != nil {
		return Counts{}, fmt.Errorf("count schedule tables: %w", err)
	}
	return c, nil
}

const routeColumns = `route_id, COALESCE(agency_id, ''), COALESCE(route_short_name, ''),
	COALESCE(route_long_name, ''), COALESCE(route_type, 0),
	COALESCE(route_color, ''), COALESCE(route_text_color, '')`

func scanRoute(row pgx.Row) (model.Route, error) {
	var r model.Route
	err := row.Scan(&r.ID, &r.AgencyID, &r.ShortName, &r.LongName, &r.Type, &r.Color, &r.TextColor)
	return r, err
}

// Routes implements ScheduleStore.
func (s *PostgresStore) Routes(ctx context.Context, limit int) ([]model.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY route_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	return s.queryRoutes(ctx, query, args...)
}

// SampleRoutes implements ScheduleStore.
func (s *PostgresStore) SampleRoutes(ctx context.Context, n int) ([]model.Route, error) {
	return s.queryRoutes(ctx,
		`SELECT `+routeColumns+` FROM routes ORDER BY random() LIMIT $1`, n)
}

func (s *PostgresStore) queryRoutes(ctx context.Context, query string, args ...any) ([]model.Route, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	var routes []model.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

// SampleStops implements ScheduleStore.
func (s *PostgresStore) SampleStops(ctx context.Context, n int) ([]model.Stop, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT stop_id, COALESCE(stop_name, ''), COALESCE(stop_lat, 0),
		       COALESCE(stop_lon, 0), COALESCE(zone_id, '')
		FROM stops ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("sample stops: %w", err)
	}
	defer rows.Close()

	var stops []model.Stop
	for rows.Next() {
		var st model.Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Lat, &st.Lon, &st.ZoneID); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// RouteByID implements ScheduleStore.
func (s *PostgresStore) RouteByID(ctx context.Context, id string) (*model.Route, error) {
	r, err := scanRoute(s.pool.QueryRow(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE route_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("route %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get route %q: %w", id, err)
	}
	return &r, nil
}

// TripCountByRoute implements ScheduleStore.
func (s *PostgresStore) TripCountByRoute(ctx context.Context, routeID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trips WHERE route_id = $1`, routeID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count trips for route %q: %w", routeID, err)
	}
	return n, nil
}

// StopsByRoute implements ScheduleStore.
func (s *PostgresStore) StopsByRoute(ctx context.Context, routeID string) ([]model.Stop, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT s.stop_id, COALESCE(s.stop_name, ''),
		       COALESCE(s.stop_lat, 0), COALESCE(s.stop_lon, 0),
		       COALESCE(s.zone_id, '')
		FROM stops s
		JOIN stop_times st ON st.stop_id = s.stop_id
		JOIN trips t ON t.trip_id = st.trip_id
		WHERE t.route_id = $1
		ORDER BY s.stop_id`, routeID)
	if err != nil {
		return nil, fmt.Errorf("stops for route %q: %w", routeID, err)
	}
	defer rows.Close()

	var stops []model.Stop
	for rows.Next() {
		var st model.Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Lat, &st.Lon, &st.ZoneID); err != nil {
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// gtfsSeconds converts a GTFS time column to seconds since service start
// inside SQL. Times are stored as text and may carry hours >= 24, so the
// conversion is done by splitting rather than casting to a time type.
func gtfsSeconds(col string) string {
	return fmt.Sprintf(`(split_part(%[1]s::text, ':', 1)::int * 3600
		+ split_part(%[1]s::text, ':', 2)::int * 60
		+ COALESCE(NULLIF(split_part(%[1]s::text, ':', 3), ''), '0')::int)`, col)
}

// ActiveStopTimes implements ScheduleStore. The window predicate is
// probed at nowSec and nowSec+86400 so overnight stop_times stay visible
// just after midnight, mirroring gtfstime.InWindow.
func (s *PostgresStore) ActiveStopTimes(ctx context.Context, nowSec, limit int) ([]ActiveStopTime, error) {
	dep := gtfsSeconds("st.departure_time")
	arr := gtfsSeconds("st.arrival_time")
	query := fmt.Sprintf(`
		SELECT t.trip_id, t.route_id, COALESCE(t.service_id, ''), COALESCE(t.direction_id, 0),
		       st.trip_id, COALESCE(st.arrival_time::text, ''), COALESCE(st.departure_time::text, ''),
		       st.stop_id, COALESCE(st.stop_sequence, 0),
		       s.stop_id, COALESCE(s.stop_name, ''), COALESCE(s.stop_lat, 0),
		       COALESCE(s.stop_lon, 0), COALESCE(s.zone_id, ''),
		       %s
		FROM stop_times st
		JOIN trips t ON t.trip_id = st.trip_id
		JOIN stops s ON s.stop_id = st.stop_id
		JOIN routes r ON r.route_id = t.route_id
		WHERE (%s <= $1 AND %s >= $1 - 3600)
		   OR (%s <= $1 + 86400 AND %s >= $1 + 82800)
		LIMIT $2`, routeColumnsPrefixed("r"), dep, arr, dep, arr)

	rows, err := s.pool.Query(ctx, query, nowSec, limit)
	if err != nil {
		return nil, fmt.Errorf("query active stop_times: %w", err)
	}
	defer rows.Close()

	var out []ActiveStopTime
	for rows.Next() {
		var a ActiveStopTime
		if err := rows.Scan(
			&a.Trip.ID, &a.Trip.RouteID, &a.Trip.ServiceID, &a.Trip.DirectionID,
			&a.StopTime.TripID, &a.StopTime.ArrivalTime, &a.StopTime.DepartureTime,
			&a.StopTime.StopID, &a.StopTime.StopSequence,
			&a.Stop.ID, &a.Stop.Name, &a.Stop.Lat, &a.Stop.Lon, &a.Stop.ZoneID,
			&a.Route.ID, &a.Route.AgencyID, &a.Route.ShortName, &a.Route.LongName,
			&a.Route.Type, &a.Route.Color, &a.Route.TextColor,
		); err != nil {
			return nil, fmt.Errorf("scan active stop_time: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func routeColumnsPrefixed(alias string) string {
	return fmt.Sprintf(`%[1]s.route_id, COALESCE(%[1]s.agency_id, ''),
		COALESCE(%[1]s.route_short_name, ''), COALESCE(%[1]s.route_long_name, ''),
		COALESCE(%[1]s.route_type, 0), COALESCE(%[1]s.route_color, ''),
		COALESCE(%[1]s.route_text_color, '')`, alias)
}
