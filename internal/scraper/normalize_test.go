package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apartment-tracker-backend/internal/store"
)

func TestNormalize(t *testing.T) {
	units := []store.ScrapedUnit{
		{UnitNumber: "B-312", FloorPlanName: "Traditional 2x2", Source: SourceApartmentsCom, Price: ptr(1900.0)},
		{UnitNumber: "A-101", FloorPlanName: "Traditional 1x1", Source: SourceMAA},
		{UnitNumber: " b-312 ", FloorPlanName: "traditional 2X2 ", Source: SourceMAA, Price: ptr(1820.0)},
		{UnitNumber: "A-101", FloorPlanName: "Traditional 1x1", Source: SourceMAA, Price: ptr(1450.0)},
		{UnitNumber: "A-101", FloorPlanName: "Traditional 1x1", Source: SourceMAA, Price: ptr(1500.0), SqFt: ptr(780)},
		{UnitNumber: "C-1", FloorPlanName: "Loft", Source: "craigslist", Price: ptr(1.0), SqFt: ptr(1)},
		{UnitNumber: "C-1", FloorPlanName: "Loft", Source: SourceRentCafe},
	}

	out := Normalize(units)
	require.Len(t, out, 3)

	// First-seen order is kept while the best record replaces weaker ones.
	assert.Equal(t, SourceMAA, out[0].Source)
	assert.Equal(t, 1820.0, *out[0].Price)

	assert.Equal(t, "A-101", out[1].UnitNumber)
	assert.Equal(t, 1500.0, *out[1].Price)
	require.NotNil(t, out[1].SqFt)

	assert.Equal(t, SourceRentCafe, out[2].Source, "a known source beats completeness")
}

func TestNormalize_TiesKeepFirst(t *testing.T) {
	units := []store.ScrapedUnit{
		{UnitNumber: "1", FloorPlanName: "P", Source: SourceMAA, Price: ptr(1.0)},
		{UnitNumber: "1", FloorPlanName: "P", Source: SourceMAA, Price: ptr(2.0)},
	}
	out := Normalize(units)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, *out[0].Price)
}

func TestSummarizeBySource(t *testing.T) {
	units := []store.ScrapedUnit{
		{Source: SourceMAA}, {Source: SourceMAA}, {Source: SourceApartmentsCom},
	}
	assert.Equal(t, map[string]int{SourceMAA: 2, SourceApartmentsCom: 1}, SummarizeBySource(units))
	assert.Empty(t, SummarizeBySource(nil))
}
