package trophy

import (
	"context"
	"fmt"
	"time"

	"backend-trailquest/internal/activity"
)

const minConsistencyLookbackWeeks = 12

// ConsistencyChecker counts consecutive calendar weeks, walking backward
// from the current one, in which the user logged at least the configured
// number of qualifying activities. The current, possibly incomplete, week
// may fall short without breaking the run.
type ConsistencyChecker struct {
	history History
	now     func() time.Time
}

func NewConsistencyChecker(history History) *ConsistencyChecker {
	return &ConsistencyChecker{history: history, now: time.Now}
}

func (c *ConsistencyChecker) Kind() AchievementKind { return KindConsistency }

func (c *ConsistencyChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg ConsistencyCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.MinPerWeek <= 0 || cfg.Weeks <= 0 {
		return false
	}
	return c.consecutiveWeeks(ctx, user.ID, cfg) >= cfg.Weeks
}

func (c *ConsistencyChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg ConsistencyCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.MinPerWeek <= 0 || cfg.Weeks <= 0 {
		return Progress{}
	}
	return Progress{Current: float64(c.consecutiveWeeks(ctx, user.ID, cfg)), Target: float64(cfg.Weeks)}
}

func (c *ConsistencyChecker) consecutiveWeeks(ctx context.Context, userID string, cfg ConsistencyCriteria) int {
	lookback := cfg.Weeks * 2
	if lookback < minConsistencyLookbackWeeks {
		lookback = minConsistencyLookbackWeeks
	}

	now := c.now()
	activities, err := c.history.ActivitiesSince(ctx, userID, now.AddDate(0, 0, -7*lookback))
	if err != nil {
		return 0
	}

	perWeek := map[string]int{}
	for _, a := range activities {
		if cfg.MinDistanceM > 0 && a.DistanceM < cfg.MinDistanceM {
			continue
		}
		perWeek[weekKey(a.StartedAt)]++
	}

	streak := 0
	for i := 0; i < lookback; i++ {
		if perWeek[weekKey(now.AddDate(0, 0, -7*i))] >= cfg.MinPerWeek {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

func weekKey(t time.Time) string {
	year, week := t.Local().ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}
