package trophy

import (
	"context"
	"time"

	"backend-trailquest/internal/activity"
)

const defaultMinMatchPct = 80.0

// RouteCompletionChecker awards either completing one specific route or
// completing a number of distinct routes, at or above a minimum match
// percentage.
type RouteCompletionChecker struct {
	history History
	now     func() time.Time
}

func NewRouteCompletionChecker(history History) *RouteCompletionChecker {
	return &RouteCompletionChecker{history: history, now: time.Now}
}

func (c *RouteCompletionChecker) Kind() AchievementKind { return KindRouteCompletion }

func (c *RouteCompletionChecker) CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool {
	var cfg RouteCompletionCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil {
		return false
	}
	minPct := cfg.MinPct
	if minPct <= 0 {
		minPct = defaultMinMatchPct
	}

	if cfg.RouteID != "" {
		if act.MatchedRouteID == cfg.RouteID && act.MatchPct >= minPct {
			return true
		}
		ok, err := c.history.HasRouteCompletion(ctx, user.ID, cfg.RouteID, minPct)
		if err != nil {
			return false
		}
		return ok
	}

	if cfg.TargetCount <= 0 {
		return false
	}
	ids, err := c.history.CompletedRouteIDs(ctx, user.ID, minPct, c.now().AddDate(-1, 0, 0))
	if err != nil {
		return false
	}
	return len(ids) >= cfg.TargetCount
}

func (c *RouteCompletionChecker) Progress(ctx context.Context, user User, t Trophy) Progress {
	var cfg RouteCompletionCriteria
	if err := decodeCriteria(t.Criteria, &cfg); err != nil {
		return Progress{}
	}
	minPct := cfg.MinPct
	if minPct <= 0 {
		minPct = defaultMinMatchPct
	}

	if cfg.RouteID != "" {
		done, err := c.history.HasRouteCompletion(ctx, user.ID, cfg.RouteID, minPct)
		if err != nil {
			return Progress{Target: 1}
		}
		p := Progress{Target: 1}
		if done {
			p.Current = 1
		}
		return p
	}

	if cfg.TargetCount <= 0 {
		return Progress{}
	}
	ids, err := c.history.CompletedRouteIDs(ctx, user.ID, minPct, c.now().AddDate(-1, 0, 0))
	if err != nil {
		return Progress{Target: float64(cfg.TargetCount)}
	}
	return Progress{Current: float64(len(ids)), Target: float64(cfg.TargetCount)}
}
