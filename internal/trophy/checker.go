package trophy

import (
	"context"
	"fmt"
	"time"

	"backend-trailquest/internal/activity"
)

// Checker is one achievement rule family. CheckCriteria and Progress are
// soft: any store or criteria failure means "not met" / zero progress, never
// an error, so evaluation can never abort the activity workflow.
type Checker interface {
	Kind() AchievementKind
	CheckCriteria(ctx context.Context, user User, act activity.Activity, t Trophy) bool
	Progress(ctx context.Context, user User, t Trophy) Progress
}

// History is the activity-store surface checkers read. *activity.Service
// satisfies it.
type History interface {
	ActivitiesSince(ctx context.Context, userID string, since time.Time) ([]activity.Activity, error)
	TotalDistanceM(ctx context.Context, userID string) (float64, error)
	ActivityPoints(ctx context.Context, activityID string) ([]activity.Point, error)
	HasAnyActivity(ctx context.Context, userID string) (bool, error)
	HasRouteCompletion(ctx context.Context, userID, routeID string, minPct float64) (bool, error)
	CompletedRouteIDs(ctx context.Context, userID string, minPct float64, since time.Time) ([]string, error)
}

// Registry maps each achievement kind to its checker.
type Registry struct {
	checkers map[AchievementKind]Checker
}

// NewRegistry validates a 1:1 kind-to-checker mapping at construction.
func NewRegistry(checkers ...Checker) (*Registry, error) {
	byKind := make(map[AchievementKind]Checker, len(checkers))
	for _, c := range checkers {
		if _, dup := byKind[c.Kind()]; dup {
			return nil, fmt.Errorf("duplicate checker for kind %q", c.Kind())
		}
		byKind[c.Kind()] = c
	}
	for _, kind := range AllKinds {
		if _, ok := byKind[kind]; !ok {
			return nil, fmt.Errorf("no checker registered for kind %q", kind)
		}
	}
	return &Registry{checkers: byKind}, nil
}

// NewDefaultRegistry wires the full checker set over one history store.
func NewDefaultRegistry(history History) (*Registry, error) {
	return NewRegistry(
		NewDistanceChecker(history),
		NewStreakChecker(history),
		NewConsistencyChecker(history),
		NewExplorerChecker(history),
		NewLocationChecker(history),
		NewRouteCompletionChecker(history),
		NewTimeChecker(history),
		NewSpecialChecker(history),
	)
}

func (r *Registry) For(kind AchievementKind) (Checker, bool) {
	c, ok := r.checkers[kind]
	return c, ok
}
