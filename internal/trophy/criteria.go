package trophy

import (
	"encoding/json"
	"errors"
)

// Criteria payload shapes, one per achievement kind. They deserialize from
// a trophy's stored criteria document; decoding failures are soft (the
// trophy simply never matches).

const (
	ScopeSingleActivity = "single_activity"
	ScopeTotal          = "total"
)

type DistanceCriteria struct {
	TargetDistanceM float64 `json:"target_distance_m"`
	Scope           string  `json:"scope"`
}

type StreakCriteria struct {
	Days         int     `json:"days"`
	MinDistanceM float64 `json:"min_distance_m"`
}

type ConsistencyCriteria struct {
	MinPerWeek   int     `json:"min_per_week"`
	Weeks        int     `json:"weeks"`
	MinDistanceM float64 `json:"min_distance_m"`
}

type ExplorerCriteria struct {
	TargetAreas  int     `json:"target_areas"`
	GridSizeM    float64 `json:"grid_size_m"`
	RadiusM      float64 `json:"radius_m"`
	MinDistanceM float64 `json:"min_distance_m"`
}

type LocationCriteria struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radius_m"`
}

type RouteCompletionCriteria struct {
	RouteID     string  `json:"route_id"`
	TargetCount int     `json:"target_count"`
	MinPct      float64 `json:"min_pct"`
}

type TimeCriteria struct {
	StartHour    int     `json:"start_hour"`
	EndHour      int     `json:"end_hour"`
	Count        int     `json:"count"`
	Weekdays     []int   `json:"weekdays"`
	MinDistanceM float64 `json:"min_distance_m"`
}

const (
	SpecialBirthdayRun   = "birthday_run"
	SpecialDateBased     = "date_based"
	SpecialPerformance   = "performance"
	SpecialFirstActivity = "first_activity"
)

type SpecialCriteria struct {
	Type           string  `json:"type"`
	Month          int     `json:"month"`
	Day            int     `json:"day"`
	DistanceM      float64 `json:"distance_m"`
	MaxDurationSec int64   `json:"max_duration_sec"`
}

var errNoCriteria = errors.New("trophy has no criteria document")

func decodeCriteria(raw []byte, v any) error {
	if len(raw) == 0 {
		return errNoCriteria
	}
	return json.Unmarshal(raw, v)
}
