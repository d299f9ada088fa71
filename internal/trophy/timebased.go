package trophy

import (
	"context"
	"time"

	"backend-trailquest/internal/activity"
)

// TimeChecker counts activities started inside an hour-of-day window over
// the trailing year, optionally restricted to certain weekdays and a minimum
// distance.
type TimeChecker struct {
	history History
	now     func() time.Time
}

func NewTimeChecker(history History) *TimeChecker {
	return &TimeChecker{history: history, now: time.Now}
}

func (c *TimeChecker) Kind() AchievementKind { return KindTimeBased }

func (c *TimeChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg TimeCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || !validTimeCriteria(cfg) {
		return false
	}
	return c.occurrences(ctx, user.ID, cfg) >= cfg.Count
}

func (c *TimeChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg TimeCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || !validTimeCriteria(cfg) {
		return Progress{}
	}
	return Progress{Current: float64(c.occurrences(ctx, user.ID, cfg)), Target: float64(cfg.Count)}
}

func validTimeCriteria(cfg TimeCriteria) bool {
	if cfg.Count <= 0 {
		return false
	}
	if cfg.StartHour < 0 || cfg.StartHour > 23 || cfg.EndHour < 0 || cfg.EndHour > 24 {
		return false
	}
	return cfg.StartHour != cfg.EndHour
}

func (c *TimeChecker) occurrences(ctx context.Context, userID string, cfg TimeCriteria) int {
	activities, err := c.history.ActivitiesSince(ctx, userID, c.now().AddDate(-1, 0, 0))
	if err != nil {
		return 0
	}

	count := 0
	for _, a := range activities {
		if cfg.MinDistanceM > 0 && a.DistanceM < cfg.MinDistanceM {
			continue
		}
		started := a.StartedAt.Local()
		if !hourInWindow(started.Hour(), cfg.StartHour, cfg.EndHour) {
			continue
		}
		if len(cfg.Weekdays) > 0 && !weekdayAllowed(started.Weekday(), cfg.Weekdays) {
			continue
		}
		count++
	}
	return count
}

// hourInWindow tests the half-open window [start, end); windows with
// start > end wrap past midnight.
func hourInWindow(hour, start, end int) bool {
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func weekdayAllowed(day time.Weekday, allowed []int) bool {
	for _, d := range allowed {
		if int(day) == d {
			return true
		}
	}
	return false
}
