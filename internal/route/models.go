package route

import "time"

type Route struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	IsActive       bool         `json:"is_active"`
	DistanceM      float64      `json:"distance_m"`
	ElevationGainM float64      `json:"elevation_gain_m"`
	ElevationLossM float64      `json:"elevation_loss_m"`
	CreatedBy      string       `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
	Points         []TrackPoint `json:"points,omitempty"`
}

// TrackPoint is one vertex of a route. Sequence is contiguous from 0 and
// DistanceFromStartM is the cumulative distance along the route up to it.
type TrackPoint struct {
	Sequence           int     `json:"sequence"`
	Lat                float64 `json:"lat"`
	Lng                float64 `json:"lng"`
	ElevationM         float64 `json:"elevation_m"`
	DistanceFromStartM float64 `json:"distance_from_start_m"`
}
