package trophy

import "time"

// AchievementKind selects the rule family a trophy is evaluated under.
type AchievementKind string

const (
	KindDistance        AchievementKind = "distance"
	KindStreak          AchievementKind = "streak"
	KindConsistency     AchievementKind = "consistency"
	KindExplorer        AchievementKind = "explorer"
	KindLocation        AchievementKind = "location"
	KindRouteCompletion AchievementKind = "route_completion"
	KindTimeBased       AchievementKind = "time_based"
	KindSpecial         AchievementKind = "special"
)

// AllKinds lists every kind the registry must cover, in display order.
var AllKinds = []AchievementKind{
	KindDistance, KindStreak, KindConsistency, KindExplorer,
	KindLocation, KindRouteCompletion, KindTimeBased, KindSpecial,
}

type Trophy struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Kind        AchievementKind `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IconURL     string          `json:"icon_url"`
	IsActive    bool            `json:"is_active"`

	// Criteria is the stored per-kind configuration document. Checkers
	// decode it on demand; an unparseable document just never matches.
	Criteria []byte `json:"criteria,omitempty"`

	// Older location trophies carry their target directly on the
	// definition instead of inside Criteria.
	TargetLat *float64 `json:"target_lat,omitempty"`
	TargetLng *float64 `json:"target_lng,omitempty"`
	RadiusM   float64  `json:"radius_m,omitempty"`

	ValidFrom  time.Time `json:"valid_from,omitempty"`
	ValidUntil time.Time `json:"valid_until,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Award struct {
	UserID     string    `json:"user_id"`
	TrophyID   string    `json:"trophy_id"`
	ActivityID string    `json:"activity_id,omitempty"`
	AwardedAt  time.Time `json:"awarded_at"`
}

// Progress feeds UI progress bars; it is computed, never stored.
type Progress struct {
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
}

// User is the slice of the account record achievement rules need.
type User struct {
	ID        string    `json:"id"`
	BirthDate time.Time `json:"birth_date,omitempty"`
}
