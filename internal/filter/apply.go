package filter

import (
	"slices"

	"apartment-tracker-backend/internal/model"
)

// Apply returns the apartments matching f, sorted. The input slice is left untouched.
func Apply(apartments []model.Apartment, f ApartmentFilters) []model.Apartment {
	next := make([]model.Apartment, 0, len(apartments))
	for _, apt := range apartments {
		if matches(apt, f) {
			next = append(next, apt)
		}
	}

	by, desc := f.EffectiveSort()
	slices.SortStableFunc(next, func(a, b model.Apartment) int {
		c := compare(a, b, by)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmpInt64(a.ID, b.ID)
	})
	return next
}

func matches(apt model.Apartment, f ApartmentFilters) bool {
	if len(f.Beds) > 0 && !slices.Contains(f.Beds, float64(apt.Beds)) {
		return false
	}
	if f.BathsMin != nil && apt.Baths < *f.BathsMin {
		return false
	}
	if f.PriceMin != nil && apt.CurrentPrice < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && apt.CurrentPrice > *f.PriceMax {
		return false
	}
	if f.SqFtMin != nil && float64(apt.SqFt) < *f.SqFtMin {
		return false
	}
	if f.SqFtMax != nil && float64(apt.SqFt) > *f.SqFtMax {
		return false
	}

	values := flagValues(apt)
	for _, bf := range f.boolFilters() {
		if bf.value != nil && values[bf.column] != *bf.value {
			return false
		}
	}

	if f.ViewType != "" && apt.ViewType != f.ViewType {
		return false
	}
	return true
}

func flagValues(apt model.Apartment) map[string]bool {
	return map[string]bool{
		"is_available":     apt.IsAvailable,
		"has_garage":       apt.HasGarage,
		"has_fireplace":    apt.HasFireplace,
		"is_renovated":     apt.IsRenovated,
		"is_top_floor":     apt.IsTopFloor,
		"has_sunroom":      apt.HasSunroom,
		"has_balcony":      apt.HasBalcony,
		"has_smart_home":   apt.HasSmartHome,
		"has_washer_dryer": apt.HasWasherDryer,
	}
}

func compare(a, b model.Apartment, by SortBy) int {
	switch by {
	case SortByBeds:
		return cmpInt64(int64(a.Beds), int64(b.Beds))
	case SortBySqFt:
		return cmpInt64(int64(a.SqFt), int64(b.SqFt))
	case SortByUpdated:
		return a.LastSeenAt.Compare(b.LastSeenAt)
	default:
		switch {
		case a.CurrentPrice < b.CurrentPrice:
			return -1
		case a.CurrentPrice > b.CurrentPrice:
			return 1
		}
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
