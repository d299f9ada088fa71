package trophy

import (
	"context"
	"fmt"
	"math"
	"time"

	"backend-trailquest/internal/activity"
	"backend-trailquest/internal/shared/geo"
)

const (
	defaultGridSizeM = 1000.0
	metersPerDegree  = 111000.0
)

// ExplorerChecker counts distinct geographic areas visited over the trailing
// year, either as grid cells covering every track point or as radius-clustered
// centroids seeded from each activity's first fix. Grid mode takes precedence
// when both are configured.
type ExplorerChecker struct {
	history History
	now     func() time.Time
}

func NewExplorerChecker(history History) *ExplorerChecker {
	return &ExplorerChecker{history: history, now: time.Now}
}

func (c *ExplorerChecker) Kind() AchievementKind { return KindExplorer }

func (c *ExplorerChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg ExplorerCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.TargetAreas <= 0 {
		return false
	}
	count, err := c.areaCount(ctx, user.ID, cfg)
	if err != nil {
		return false
	}
	return count >= cfg.TargetAreas
}

func (c *ExplorerChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg ExplorerCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.TargetAreas <= 0 {
		return Progress{}
	}
	count, err := c.areaCount(ctx, user.ID, cfg)
	if err != nil {
		return Progress{}
	}
	return Progress{Current: float64(count), Target: float64(cfg.TargetAreas)}
}

func (c *ExplorerChecker) areaCount(ctx context.Context, userID string, cfg ExplorerCriteria) (int, error) {
	activities, err := c.history.ActivitiesSince(ctx, userID, c.now().AddDate(-1, 0, 0))
	if err != nil {
		return 0, err
	}

	gridSize := cfg.GridSizeM
	if gridSize <= 0 && cfg.RadiusM <= 0 {
		gridSize = defaultGridSizeM
	}

	cells := map[string]bool{}
	var centroids []activity.Point

	for _, a := range activities {
		if cfg.MinDistanceM > 0 && a.DistanceM < cfg.MinDistanceM {
			continue
		}
		points, err := c.history.ActivityPoints(ctx, a.ID)
		if err != nil {
			return 0, err
		}

		if gridSize > 0 {
			cellDeg := gridSize / metersPerDegree
			for _, p := range points {
				if !p.HasPosition {
					continue
				}
				key := fmt.Sprintf("%d:%d", int(math.Floor(p.Lat/cellDeg)), int(math.Floor(p.Lng/cellDeg)))
				cells[key] = true
			}
			continue
		}

		// radius mode: the activity's first fix either joins an existing
		// area or founds a new one
		for _, p := range points {
			if !p.HasPosition {
				continue
			}
			known := false
			for _, centroid := range centroids {
				if geo.DistanceMeters(p.Lat, p.Lng, centroid.Lat, centroid.Lng) <= cfg.RadiusM {
					known = true
					break
				}
			}
			if !known {
				centroids = append(centroids, p)
			}
			break
		}
	}

	if gridSize > 0 {
		return len(cells), nil
	}
	return len(centroids), nil
}
