package geo

import (
	"sort"
	"time"
)

// Candidate pairs an item with the location and observation time used to rank it.
type Candidate[T any] struct {
	ID         int64
	Item       T
	Location   Point
	ObservedAt time.Time
}

// Ranked is a candidate annotated with its distance from the query origin.
type Ranked[T any] struct {
	ID         int64
	Item       T
	Location   Point
	ObservedAt time.Time
	DistanceKm float64
}

// Nearest ranks candidates by ascending great-circle distance from origin.
//
// When maxRadiusKm is greater than zero, candidates farther than the radius are
// dropped before ordering. Equidistant candidates are ordered newest first and
// then by ascending ID. An empty input yields an empty, non-nil slice.
func Nearest[T any](candidates []Candidate[T], origin Point, maxRadiusKm float64) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(candidates))

	for _, c := range candidates {
		dist := DistanceKm(origin, c.Location)
		if maxRadiusKm > 0 && dist > maxRadiusKm {
			continue
		}
		ranked = append(ranked, Ranked[T]{
			ID:         c.ID,
			Item:       c.Item,
			Location:   c.Location,
			ObservedAt: c.ObservedAt,
			DistanceKm: dist,
		})
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].DistanceKm != ranked[b].DistanceKm {
			return ranked[a].DistanceKm < ranked[b].DistanceKm
		}
		if !ranked[a].ObservedAt.Equal(ranked[b].ObservedAt) {
			return ranked[a].ObservedAt.After(ranked[b].ObservedAt)
		}
		return ranked[a].ID < ranked[b].ID
	})

	return ranked
}
