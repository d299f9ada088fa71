package trophy

import (
	"context"
	"time"

	"backend-trailquest/internal/activity"
)

const streakLookbackDays = 365

// StreakChecker counts consecutive calendar days with a qualifying activity,
// walking backward from today. A missing day breaks the streak, except that
// today itself may still be empty.
type StreakChecker struct {
	history History
	now     func() time.Time
}

func NewStreakChecker(history History) *StreakChecker {
	return &StreakChecker{history: history, now: time.Now}
}

func (c *StreakChecker) Kind() AchievementKind { return KindStreak }

func (c *StreakChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg StreakCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.Days <= 0 {
		return false
	}
	return c.currentStreak(ctx, user.ID, cfg) >= cfg.Days
}

func (c *StreakChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg StreakCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.Days <= 0 {
		return Progress{}
	}
	return Progress{Current: float64(c.currentStreak(ctx, user.ID, cfg)), Target: float64(cfg.Days)}
}

func (c *StreakChecker) currentStreak(ctx context.Context, userID string, cfg StreakCriteria) int {
	now := c.now()
	activities, err := c.history.ActivitiesSince(ctx, userID, now.AddDate(0, 0, -streakLookbackDays))
	if err != nil {
		return 0
	}

	days := map[string]bool{}
	for _, a := range activities {
		if cfg.MinDistanceM > 0 && a.DistanceM < cfg.MinDistanceM {
			continue
		}
		days[dayKey(a.StartedAt)] = true
	}

	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		if days[dayKey(now.AddDate(0, 0, -i))] {
			streak++
			continue
		}
		if i == 0 {
			// today may not have an activity yet
			continue
		}
		break
	}
	return streak
}

func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
