package activity

import (
	"context"
	"errors"
	"time"

	"backend-trailquest/internal/db"
	"backend-trailquest/internal/matching"
	"backend-trailquest/internal/route"
	"backend-trailquest/internal/shared/geo"

	"github.com/google/uuid"
)

// RouteCatalog supplies the candidate routes the matcher aligns against.
// *route.Service satisfies it.
type RouteCatalog interface {
	ActiveRoutes(ctx context.Context) ([]route.Route, error)
}

// Evaluator is notified after an activity and its match outcome are stored.
// The trophy evaluator satisfies it; a nil evaluator disables evaluation.
type Evaluator interface {
	ActivityRecorded(ctx context.Context, act Activity)
}

type Service struct {
	db        db.Querier
	routes    RouteCatalog
	evaluator Evaluator
}

func NewService(db db.Querier, routes RouteCatalog, evaluator Evaluator) *Service {
	return &Service{db: db, routes: routes, evaluator: evaluator}
}

// SetEvaluator breaks the construction cycle between the activity service
// and the trophy evaluator, whose checkers read activity history.
func (s *Service) SetEvaluator(evaluator Evaluator) {
	s.evaluator = evaluator
}

// RecordActivity stores a completed activity with its decoded track, aligns
// the track against the active route catalog, stores the match outcome, and
// hands the activity to achievement evaluation. Evaluation runs after the
// activity is committed and cannot roll it back.
func (s *Service) RecordActivity(ctx context.Context, input Activity) (Activity, error) {
	if input.UserID == "" {
		return Activity{}, errors.New("user_id required")
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}
	if input.DistanceM == 0 {
		input.DistanceM = trackDistanceM(input.Points)
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, name, started_at, duration_sec, distance_m)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, input.ID, input.UserID, input.Name, input.StartedAt, input.DurationSec, input.DistanceM)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Activity{}, err
	}

	for _, p := range input.Points {
		_, err := s.db.Exec(ctx, `
			INSERT INTO activity_points (activity_id, sequence, location, elevation_m, has_position, recorded_at)
			VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography, $5, $6, $7)
		`, input.ID, p.Sequence, p.Lng, p.Lat, p.ElevationM, p.HasPosition, p.RecordedAt)
		if err != nil {
			return Activity{}, err
		}
	}

	match, err := s.matchTrack(ctx, input.Points)
	if err != nil {
		return Activity{}, err
	}
	if match != nil {
		input.MatchedRouteID = match.Route.ID
		input.MatchPct = match.CompletionPct
		input.MatchAccuracyM = match.AvgAccuracyM
		input.MatchDirection = string(match.Direction)
		input.MatchIsComplete = match.IsComplete

		_, err := s.db.Exec(ctx, `
			UPDATE activities
			SET matched_route_id=$2, match_pct=$3, match_accuracy_m=$4, match_direction=$5, match_is_complete=$6
			WHERE id=$1
		`, input.ID, input.MatchedRouteID, input.MatchPct, input.MatchAccuracyM, input.MatchDirection, input.MatchIsComplete)
		if err != nil {
			return Activity{}, err
		}
	}

	if s.evaluator != nil {
		s.evaluator.ActivityRecorded(ctx, input)
	}
	return input, nil
}

func (s *Service) matchTrack(ctx context.Context, points []Point) (*matching.Result, error) {
	if s.routes == nil || len(points) == 0 {
		return nil, nil
	}
	candidates, err := s.routes.ActiveRoutes(ctx)
	if err != nil {
		return nil, err
	}

	track := make([]matching.TrackPoint, len(points))
	for i, p := range points {
		track[i] = matching.TrackPoint{
			Sequence:    p.Sequence,
			Lat:         p.Lat,
			Lng:         p.Lng,
			HasPosition: p.HasPosition,
		}
	}
	return matching.MatchRoute(track, candidates), nil
}

func (s *Service) GetActivity(ctx context.Context, id string) (Activity, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, name, started_at, duration_sec, distance_m,
		       COALESCE(matched_route_id,''), COALESCE(match_pct,0), COALESCE(match_accuracy_m,0),
		       COALESCE(match_direction,''), COALESCE(match_is_complete,false), created_at
		FROM activities WHERE id=$1
	`, id)
	var a Activity
	if err := scanActivity(row, &a); err != nil {
		return Activity{}, err
	}

	points, err := s.ActivityPoints(ctx, a.ID)
	if err != nil {
		return Activity{}, err
	}
	a.Points = points
	return a, nil
}

// ActivitiesSince returns a user's activities started at or after since,
// oldest first, without their point tracks.
func (s *Service) ActivitiesSince(ctx context.Context, userID string, since time.Time) ([]Activity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, name, started_at, duration_sec, distance_m,
		       COALESCE(matched_route_id,''), COALESCE(match_pct,0), COALESCE(match_accuracy_m,0),
		       COALESCE(match_direction,''), COALESCE(match_is_complete,false), created_at
		FROM activities
		WHERE user_id=$1 AND started_at >= $2
		ORDER BY started_at
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := scanActivity(rows, &a); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

func (s *Service) TotalDistanceM(ctx context.Context, userID string) (float64, error) {
	var total float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(distance_m),0) FROM activities WHERE user_id=$1
	`, userID).Scan(&total)
	return total, err
}

func (s *Service) HasAnyActivity(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM activities WHERE user_id=$1)
	`, userID).Scan(&ok)
	return ok, err
}

// HasRouteCompletion reports whether any of the user's activities matched
// the route at or above the given completion percentage.
func (s *Service) HasRouteCompletion(ctx context.Context, userID, routeID string, minPct float64) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM activities
			WHERE user_id=$1 AND matched_route_id=$2 AND match_pct >= $3
		)
	`, userID, routeID, minPct).Scan(&ok)
	return ok, err
}

// CompletedRouteIDs returns the distinct routes the user matched at or above
// minPct among activities started at or after since.
func (s *Service) CompletedRouteIDs(ctx context.Context, userID string, minPct float64, since time.Time) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT matched_route_id
		FROM activities
		WHERE user_id=$1 AND matched_route_id IS NOT NULL AND match_pct >= $2 AND started_at >= $3
	`, userID, minPct, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) ActivityPoints(ctx context.Context, activityID string) ([]Point, error) {
	rows, err := s.db.Query(ctx, `
		SELECT sequence, ST_Y(location::geometry), ST_X(location::geometry), COALESCE(elevation_m,0), has_position, recorded_at
		FROM activity_points WHERE activity_id=$1
		ORDER BY sequence
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Sequence, &p.Lat, &p.Lng, &p.ElevationM, &p.HasPosition, &p.RecordedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner, a *Activity) error {
	return row.Scan(&a.ID, &a.UserID, &a.Name, &a.StartedAt, &a.DurationSec, &a.DistanceM,
		&a.MatchedRouteID, &a.MatchPct, &a.MatchAccuracyM, &a.MatchDirection, &a.MatchIsComplete, &a.CreatedAt)
}

func trackDistanceM(points []Point) float64 {
	total := 0.0
	havePrev := false
	var prev Point
	for _, p := range points {
		if !p.HasPosition {
			continue
		}
		if havePrev {
			total += geo.DistanceMeters(prev.Lat, prev.Lng, p.Lat, p.Lng)
		}
		prev = p
		havePrev = true
	}
	return total
}
