// Package matching aligns a recorded GPS track against a catalog of
// predefined routes and scores the alignment. It is pure computation: no
// stores, no side effects, safe for concurrent use.
package matching

import (
	"backend-trailquest/internal/route"
	"backend-trailquest/internal/shared/geo"
)

type Direction string

const (
	DirectionClockwise        Direction = "clockwise"
	DirectionCounterClockwise Direction = "counter_clockwise"
	DirectionUnknown          Direction = "unknown"
)

const (
	// ToleranceM is the maximum distance for a track point to be considered
	// aligned with a route point.
	ToleranceM = 10.0

	minMatchedPoints = 5
	minStreak        = 5
	completePct      = 95.0
)

// TrackPoint is a single recorded activity sample. Points without a GPS fix
// carry HasPosition=false and are skipped by the matcher.
type TrackPoint struct {
	Sequence    int
	Lat         float64
	Lng         float64
	HasPosition bool
}

type Result struct {
	Route            *route.Route
	MatchedDistanceM float64
	CompletionPct    float64
	AvgAccuracyM     float64
	IsComplete       bool
	Direction        Direction
	MatchedIndices   []int
	Score            float64
}

// MatchRoute finds the best-aligned candidate route for a track, or nil when
// no candidate passes the validity gate. Candidates are ranked by match
// score; ties keep the earlier candidate.
func MatchRoute(track []TrackPoint, candidates []route.Route) *Result {
	var points []TrackPoint
	for _, p := range track {
		if p.HasPosition {
			points = append(points, p)
		}
	}
	if len(points) == 0 || len(candidates) == 0 {
		return nil
	}

	var best *Result
	for i := range candidates {
		r := matchCandidate(points, &candidates[i])
		if r == nil {
			continue
		}
		if best == nil || r.Score > best.Score {
			best = r
		}
	}
	return best
}

func matchCandidate(points []TrackPoint, rt *route.Route) *Result {
	if len(rt.Points) == 0 {
		return nil
	}

	var matched []int
	var accuracies []float64
	streak, longestStreak := 0, 0

	for _, p := range points {
		idx, dist := nearestWithinTolerance(p, rt.Points)
		if idx < 0 {
			streak = 0
			continue
		}
		matched = append(matched, idx)
		accuracies = append(accuracies, dist)
		streak++
		if streak > longestStreak {
			longestStreak = streak
		}
	}

	if len(matched) < minMatchedPoints || longestStreak < minStreak {
		return nil
	}

	minIdx, maxIdx := matched[0], matched[0]
	for _, idx := range matched {
		if idx < minIdx {
			minIdx = idx
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}

	// a track hovering around a single route point spans no distance and is
	// not a match
	matchedDistance := rt.Points[maxIdx].DistanceFromStartM - rt.Points[minIdx].DistanceFromStartM
	if matchedDistance <= 0 {
		return nil
	}

	completion := 0.0
	if rt.DistanceM > 0 {
		completion = matchedDistance / rt.DistanceM * 100
	}

	sum := 0.0
	for _, a := range accuracies {
		sum += a
	}
	avgAccuracy := sum / float64(len(accuracies))

	accuracyScore := (ToleranceM - avgAccuracy) / ToleranceM * 100

	return &Result{
		Route:            rt,
		MatchedDistanceM: matchedDistance,
		CompletionPct:    completion,
		AvgAccuracyM:     avgAccuracy,
		IsComplete:       completion >= completePct,
		Direction:        classifyDirection(matched, len(rt.Points)),
		MatchedIndices:   matched,
		Score:            completion*0.7 + accuracyScore*0.3,
	}
}

func nearestWithinTolerance(p TrackPoint, points []route.TrackPoint) (int, float64) {
	bestIdx := -1
	bestDist := 0.0
	for i := range points {
		d := geo.DistanceMeters(p.Lat, p.Lng, points[i].Lat, points[i].Lng)
		if d > ToleranceM {
			continue
		}
		if bestIdx < 0 || d < bestDist {
			bestIdx = i
			bestDist = d
		}
	}
	return bestIdx, bestDist
}

// classifyDirection votes on the travel direction from the matched index
// deltas. Deltas larger than half the route are treated as loop wraparound
// and normalized. A 2x majority is required; anything closer is unknown.
func classifyDirection(indices []int, totalPoints int) Direction {
	if len(indices) < 3 {
		return DirectionUnknown
	}

	positive, negative := 0, 0
	for i := 1; i < len(indices); i++ {
		delta := indices[i] - indices[i-1]
		if abs(delta) > totalPoints/2 {
			if delta > 0 {
				delta -= totalPoints
			} else {
				delta += totalPoints
			}
		}
		switch {
		case delta > 0:
			positive++
		case delta < 0:
			negative++
		}
	}

	switch {
	case positive > 2*negative:
		return DirectionClockwise
	case negative > 2*positive:
		return DirectionCounterClockwise
	default:
		return DirectionUnknown
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
