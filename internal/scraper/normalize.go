package scraper

import (
	"strings"

	"apartment-tracker-backend/internal/store"
)

var sourcePriority = map[string]int{
	SourceMAA:           0,
	SourceApartmentsCom: 1,
	SourceRentCafe:      2,
}

type unitScore [3]int

func score(u store.ScrapedUnit) unitScore {
	priority, ok := sourcePriority[u.Source]
	if !ok {
		priority = 99
	}
	s := unitScore{priority, 1, 1}
	if u.Price != nil {
		s[1] = 0
	}
	if u.SqFt != nil {
		s[2] = 0
	}
	return s
}

func (a unitScore) less(b unitScore) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func dedupeKey(u store.ScrapedUnit) string {
	return strings.ToLower(strings.TrimSpace(u.FloorPlanName)) + "::" + strings.ToLower(strings.TrimSpace(u.UnitNumber))
}

// Normalize drops duplicate sightings of the same unit across sources, keeping the
// best-scored record in the position the unit was first seen.
func Normalize(units []store.ScrapedUnit) []store.ScrapedUnit {
	index := make(map[string]int, len(units))
	out := make([]store.ScrapedUnit, 0, len(units))
	for _, u := range units {
		key := dedupeKey(u)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, u)
			continue
		}
		if score(u).less(score(out[i])) {
			out[i] = u
		}
	}
	return out
}

// SummarizeBySource counts units per source.
func SummarizeBySource(units []store.ScrapedUnit) map[string]int {
	counts := make(map[string]int)
	for _, u := range units {
		counts[u.Source]++
	}
	return counts
}
