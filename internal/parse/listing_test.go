package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected *float64
	}{
		{name: "Plain", raw: "$1,820", expected: ptr(1820.0)},
		{name: "Per month", raw: "$1,820/mo", expected: ptr(1820.0)},
		{name: "From prefix", raw: "From $1,820", expected: ptr(1820.0)},
		{name: "Range takes first", raw: "$1,820 - $3,530", expected: ptr(1820.0)},
		{name: "Cents", raw: "$1,820.50", expected: ptr(1820.5)},
		{name: "Dollar sign wins over earlier numbers", raw: "Traditional 2x2\nUnit 312\n$1,820/mo", expected: ptr(1820.0)},
		{name: "Bare number", raw: "1820", expected: ptr(1820.0)},
		{name: "Not a price", raw: "N/A", expected: nil},
		{name: "Empty", raw: "", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParsePrice(tc.raw))
		})
	}
}

func TestParseSqFt(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected *int
	}{
		{name: "With comma", raw: "1,134 sq ft", expected: ptr(1134)},
		{name: "SF suffix", raw: "1134 SF", expected: ptr(1134)},
		{name: "Bare", raw: "1134", expected: ptr(1134)},
		{name: "Prefers unit over price", raw: "$1820/mo\n2 bed 2 bath\n1,134 sq. ft.", expected: ptr(1134)},
		{name: "Unknown", raw: "unknown", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseSqFt(tc.raw))
		})
	}
}

func TestParseBedsAndBaths(t *testing.T) {
	testCases := []struct {
		raw   string
		beds  int
		baths float64
	}{
		{raw: "2 Beds 2 Baths", beds: 2, baths: 2},
		{raw: "1 bd / 1.5 ba", beds: 0, baths: 1.5},
		{raw: "3br 2ba", beds: 3, baths: 2},
		{raw: "Traditional 2x1.5", beds: 2, baths: 1.5},
		{raw: "Studio", beds: 0, baths: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.beds, ParseBeds(tc.raw))
			assert.Equal(t, tc.baths, ParseBaths(tc.raw))
		})
	}
}

func TestParseCardFields(t *testing.T) {
	card := "Traditional 2x2\nUnit B-312\n$1,820/mo\n2 bed 2 bath\n1,134 sq ft\nAvailable Now\n6 weeks free\nTop Floor | Sunroom"

	assert.Equal(t, "B-312", ParseUnitNumber(card, "MAA-001"))
	assert.Equal(t, "MAA-001", ParseUnitNumber("no identifier here", "MAA-001"))
	assert.Equal(t, "Traditional 2x2", ParseFloorPlanName(card))
	assert.Equal(t, UnknownFloorPlan, ParseFloorPlanName("$1,000"))
	assert.Equal(t, "6 weeks free", ParseMoveInSpecial(card))
	assert.Equal(t, "", ParseMoveInSpecial("no deal"))
	assert.Equal(t, "Now", ParseAvailableDate(card))

	code, ok := ParsePlanCode("2 Bed 2x2 plan")
	require.True(t, ok)
	assert.Equal(t, "2x2", code)
	_, ok = ParsePlanCode("Studio")
	assert.False(t, ok)
}

func ptr[T any](v T) *T {
	return &v
}
