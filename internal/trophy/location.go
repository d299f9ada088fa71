package trophy

import (
	"context"

	"backend-trailquest/internal/activity"
	"backend-trailquest/internal/shared/geo"
)

// LocationChecker is a binary proximity test: the activity track must come
// within the collection radius of the trophy's target point, inside the
// trophy's validity window when one is set.
type LocationChecker struct {
	history History
}

func NewLocationChecker(history History) *LocationChecker {
	return &LocationChecker{history: history}
}

func (c *LocationChecker) Kind() AchievementKind { return KindLocation }

func (c *LocationChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	if !t.ValidFrom.IsZero() && act.StartedAt.Before(t.ValidFrom) {
		return false
	}
	if !t.ValidUntil.IsZero() && act.StartedAt.After(t.ValidUntil) {
		return false
	}

	lat, lng, radius, ok := c.target(t)
	if !ok {
		return false
	}

	points := act.Points
	if len(points) == 0 {
		loaded, err := c.history.ActivityPoints(ctx, act.ID)
		if err != nil {
			return false
		}
		points = loaded
	}

	for _, p := range points {
		if !p.HasPosition {
			continue
		}
		if geo.DistanceMeters(p.Lat, p.Lng, lat, lng) <= radius {
			return true
		}
	}
	return false
}

// Progress is always 0 of 1: proximity has no meaningful partial state.
func (c *LocationChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	return Progress{Target: 1}
}

// target resolves coordinates and radius from the trophy definition first,
// falling back to the criteria document for older definitions.
func (c *LocationChecker) target(t Trophy) (lat, lng, radius float64, ok bool) {
	if t.TargetLat != nil && t.TargetLng != nil {
		lat, lng = *t.TargetLat, *t.TargetLng
		radius = t.RadiusM
		if radius <= 0 {
			var cfg LocationCriteria
			if err := decodeCriteria(t.Criteria, &cfg); err == nil {
				radius = cfg.RadiusM
			}
		}
		return lat, lng, radius, radius > 0
	}

	var cfg LocationCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.RadiusM <= 0 {
		return 0, 0, 0, false
	}
	return cfg.Lat, cfg.Lng, cfg.RadiusM, true
}
