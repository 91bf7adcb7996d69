// Package filter holds the apartment search criteria and their two evaluators:
// Apply works on rows already in memory and Scope pushes the same criteria into SQL.
// Both must agree on which rows match and on their order.
package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SortBy names a sortable apartment attribute.
type SortBy string

const (
	SortByPrice   SortBy = "price"
	SortBySqFt    SortBy = "sqft"
	SortByBeds    SortBy = "beds"
	SortByUpdated SortBy = "updated"
)

// SortOrder is the sort direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ApartmentFilters are the criteria of an apartment search. Nil fields are not applied.
type ApartmentFilters struct {
	Beds      []float64
	BathsMin  *float64
	PriceMin  *float64
	PriceMax  *float64
	SqFtMin   *float64
	SqFtMax   *float64
	ViewType  string
	SortBy    SortBy
	SortOrder SortOrder

	IsAvailable    *bool
	HasGarage      *bool
	HasFireplace   *bool
	IsRenovated    *bool
	IsTopFloor     *bool
	HasSunroom     *bool
	HasBalcony     *bool
	HasSmartHome   *bool
	HasWasherDryer *bool
}

// boolFilter ties a query/column name to its field.
type boolFilter struct {
	column string
	value  *bool
}

func (f ApartmentFilters) boolFilters() []boolFilter {
	return []boolFilter{
		{"is_available", f.IsAvailable},
		{"has_garage", f.HasGarage},
		{"has_fireplace", f.HasFireplace},
		{"is_renovated", f.IsRenovated},
		{"is_top_floor", f.IsTopFloor},
		{"has_sunroom", f.HasSunroom},
		{"has_balcony", f.HasBalcony},
		{"has_smart_home", f.HasSmartHome},
		{"has_washer_dryer", f.HasWasherDryer},
	}
}

// EffectiveSort resolves defaults: unknown keys sort by price, and only "desc" is descending.
func (f ApartmentFilters) EffectiveSort() (SortBy, bool) {
	by := f.SortBy
	switch by {
	case SortByPrice, SortBySqFt, SortByBeds, SortByUpdated:
	default:
		by = SortByPrice
	}
	return by, f.SortOrder == SortDesc
}

// ParseQuery builds filters from URL query parameters.
func ParseQuery(q url.Values) ApartmentFilters {
	f := ApartmentFilters{
		Beds:      parseBeds(q.Get("beds")),
		BathsMin:  parseNumber(q.Get("baths_min")),
		PriceMin:  parseNumber(q.Get("price_min")),
		PriceMax:  parseNumber(q.Get("price_max")),
		SqFtMin:   parseNumber(q.Get("sqft_min")),
		SqFtMax:   parseNumber(q.Get("sqft_max")),
		ViewType:  q.Get("view_type"),
		SortBy:    SortBy(q.Get("sort_by")),
		SortOrder: SortOrder(q.Get("sort_order")),

		IsAvailable:    parseBool(q.Get("is_available")),
		HasGarage:      parseBool(q.Get("has_garage")),
		HasFireplace:   parseBool(q.Get("has_fireplace")),
		IsRenovated:    parseBool(q.Get("is_renovated")),
		IsTopFloor:     parseBool(q.Get("is_top_floor")),
		HasSunroom:     parseBool(q.Get("has_sunroom")),
		HasBalcony:     parseBool(q.Get("has_balcony")),
		HasSmartHome:   parseBool(q.Get("has_smart_home")),
		HasWasherDryer: parseBool(q.Get("has_washer_dryer")),
	}
	if f.SortBy == "" {
		f.SortBy = SortByPrice
	}
	if f.SortOrder == "" {
		f.SortOrder = SortAsc
	}
	return f
}

// parseBeds reads "1,2,3". Entries that are not numbers, or are zero, are dropped;
// a fractional entry is kept and simply matches no unit.
func parseBeds(raw string) []float64 {
	if raw == "" {
		return nil
	}
	var beds []float64
	for _, part := range strings.Split(raw, ",") {
		v := parseNumber(part)
		if v == nil || *v == 0 {
			continue
		}
		beds = append(beds, *v)
	}
	return beds
}

func parseNumber(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseBool(raw string) *bool {
	switch raw {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
