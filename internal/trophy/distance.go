package trophy

import (
	"context"

	"backend-trailquest/internal/activity"
)

// DistanceChecker awards distance milestones, either on a single activity or
// against the user's lifetime total.
type DistanceChecker struct {
	history History
}

func NewDistanceChecker(history History) *DistanceChecker {
	return &DistanceChecker{history: history}
}

func (c *DistanceChecker) Kind() AchievementKind { return KindDistance }

func (c *DistanceChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg DistanceCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.TargetDistanceM <= 0 {
		return false
	}

	if cfg.Scope == ScopeSingleActivity {
		return act.DistanceM >= cfg.TargetDistanceM
	}

	total, err := c.history.TotalDistanceM(ctx, user.ID)
	if err != nil {
		return false
	}
	return total >= cfg.TargetDistanceM
}

func (c *DistanceChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg DistanceCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil || cfg.TargetDistanceM <= 0 {
		return Progress{}
	}

	// single-activity milestones are all-or-nothing per attempt
	if cfg.Scope == ScopeSingleActivity {
		return Progress{Target: cfg.TargetDistanceM}
	}

	total, err := c.history.TotalDistanceM(ctx, user.ID)
	if err != nil {
		return Progress{}
	}
	return Progress{Current: total, Target: cfg.TargetDistanceM}
}
