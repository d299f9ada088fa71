package activity

import "time"

type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	DurationSec int64     `json:"duration_sec"`
	DistanceM   float64   `json:"distance_m"`

	// match outcome, empty when the track aligned with no route
	MatchedRouteID  string  `json:"matched_route_id,omitempty"`
	MatchPct        float64 `json:"match_pct,omitempty"`
	MatchAccuracyM  float64 `json:"match_accuracy_m,omitempty"`
	MatchDirection  string  `json:"match_direction,omitempty"`
	MatchIsComplete bool    `json:"match_is_complete,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	Points    []Point   `json:"points,omitempty"`
}

// Point is one recorded sample of an activity track. Samples from a decoder
// can lack a GPS fix; those carry HasPosition=false.
type Point struct {
	Sequence    int       `json:"sequence"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ElevationM  float64   `json:"elevation_m"`
	HasPosition bool      `json:"has_position"`
	RecordedAt  time.Time `json:"recorded_at"`
}
