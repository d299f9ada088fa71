package route

import (
	"context"
	"errors"
	"io"

	"backend-trailquest/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// CreateFromGPX ingests a route definition from a GPX document. Cumulative
// distances and elevation gain/loss are computed from the track points; the
// route is created active.
func (s *Service) CreateFromGPX(ctx context.Context, name, description, createdBy string, gpx io.Reader) (Route, error) {
	route, err := ParseGPX(gpx)
	if err != nil {
		return Route{}, err
	}
	if name != "" {
		route.Name = name
	}
	route.Description = description
	route.CreatedBy = createdBy
	return s.createRoute(ctx, route)
}

func (s *Service) createRoute(ctx context.Context, input Route) (Route, error) {
	if len(input.Points) == 0 {
		return Route{}, errors.New("route requires track points")
	}

	input.ID = uuid.NewString()
	input.IsActive = true
	row := s.db.QueryRow(ctx, `
		INSERT INTO routes (id, name, description, is_active, distance_m, elevation_gain_m, elevation_loss_m, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, input.ID, input.Name, input.Description, input.IsActive, input.DistanceM, input.ElevationGainM, input.ElevationLossM, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Route{}, err
	}

	for _, p := range input.Points {
		_, err := s.db.Exec(ctx, `
			INSERT INTO route_points (route_id, sequence, location, elevation_m, distance_from_start_m)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography, $5, $6)
		`, input.ID, p.Sequence, p.Lng, p.Lat, p.ElevationM, p.DistanceFromStartM)
		if err != nil {
			return Route{}, err
		}
	}
	return input, nil
}

func (s *Service) GetRoute(ctx context.Context, id string) (Route, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, description, is_active, distance_m, elevation_gain_m, elevation_loss_m, created_by, created_at
		FROM routes WHERE id=$1
	`, id)
	var r Route
	if err := row.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive, &r.DistanceM, &r.ElevationGainM, &r.ElevationLossM, &r.CreatedBy, &r.CreatedAt); err != nil {
		return Route{}, err
	}

	points, err := s.routePoints(ctx, r.ID)
	if err != nil {
		return Route{}, err
	}
	r.Points = points
	return r, nil
}

func (s *Service) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, is_active, distance_m, elevation_gain_m, elevation_loss_m, created_by, created_at
		FROM routes
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive, &r.DistanceM, &r.ElevationGainM, &r.ElevationLossM, &r.CreatedBy, &r.CreatedAt); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

// ActiveRoutes returns every active route with its full ordered point list,
// which is what the matching engine consumes as the candidate catalog.
func (s *Service) ActiveRoutes(ctx context.Context) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, description, is_active, distance_m, elevation_gain_m, elevation_loss_m, created_by, created_at
		FROM routes WHERE is_active
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}

	var routes []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive, &r.DistanceM, &r.ElevationGainM, &r.ElevationLossM, &r.CreatedBy, &r.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		routes = append(routes, r)
	}
	rows.Close()

	for i := range routes {
		points, err := s.routePoints(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Points = points
	}
	return routes, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE routes SET is_active=$2 WHERE id=$1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("route not found")
	}
	return nil
}

func (s *Service) routePoints(ctx context.Context, routeID string) ([]TrackPoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sequence, ST_Y(location::geometry), ST_X(location::geometry), COALESCE(elevation_m,0), distance_from_start_m
		FROM route_points WHERE route_id=$1
		ORDER BY sequence
	`, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []TrackPoint
	for rows.Next() {
		var p TrackPoint
		if err := rows.Scan(&p.Sequence, &p.Lat, &p.Lng, &p.ElevationM, &p.DistanceFromStartM); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}
