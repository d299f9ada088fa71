package trophy

import (
	"context"
	"time"

	"backend-trailquest/internal/activity"
)

// SpecialChecker dispatches on the criteria's type discriminator: birthday
// runs, fixed calendar dates, performance targets, and the first activity
// ever.
type SpecialChecker struct {
	history History
}

func NewSpecialChecker(history History) *SpecialChecker {
	return &SpecialChecker{history: history}
}

func (c *SpecialChecker) Kind() AchievementKind { return KindSpecial }

func (c *SpecialChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg SpecialCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil {
		return false
	}

	switch cfg.Type {
	case SpecialBirthdayRun:
		if user.BirthDate.IsZero() {
			return false
		}
		started := act.StartedAt.Local()
		return started.Month() == user.BirthDate.Month() && started.Day() == user.BirthDate.Day()

	case SpecialDateBased:
		started := act.StartedAt.Local()
		return int(started.Month()) == cfg.Month && started.Day() == cfg.Day

	case SpecialPerformance:
		if cfg.DistanceM <= 0 || cfg.MaxDurationSec <= 0 {
			return false
		}
		return act.DistanceM >= cfg.DistanceM && act.DurationSec <= cfg.MaxDurationSec

	case SpecialFirstActivity:
		has, err := c.history.HasAnyActivity(ctx, user.ID)
		if err != nil {
			return false
		}
		return has

	default:
		return false
	}
}

func (c *SpecialChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg SpecialCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil {
		return Progress{}
	}

	switch cfg.Type {
	case SpecialPerformance:
		if cfg.DistanceM <= 0 || cfg.MaxDurationSec <= 0 {
			return Progress{}
		}
		best, ok := c.bestQualifyingDuration(ctx, user.ID, cfg)
		if !ok {
			return Progress{Target: float64(cfg.MaxDurationSec)}
		}
		return Progress{Current: float64(best), Target: float64(cfg.MaxDurationSec)}

	case SpecialFirstActivity:
		has, err := c.history.HasAnyActivity(ctx, user.ID)
		p := Progress{Target: 1}
		if err == nil && has {
			p.Current = 1
		}
		return p

	default:
		return Progress{Target: 1}
	}
}

// bestQualifyingDuration finds the fastest duration among activities that
// reach the performance distance.
func (c *SpecialChecker) bestQualifyingDuration(ctx context.Context, userID string, cfg SpecialCriteria) (int64, bool) {
	activities, err := c.history.ActivitiesSince(ctx, userID, time.Time{})
	if err != nil {
		return 0, false
	}

	var best int64
	found := false
	for _, a := range activities {
		if a.DistanceM < cfg.DistanceM || a.DurationSec <= 0 {
			continue
		}
		if !found || a.DurationSec < best {
			best = a.DurationSec
			found = true
		}
	}
	return best, found
}
