package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dollarRe     = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	priceRe      = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	sqFtUnitRe   = regexp.MustCompile(`(?i)([0-9]{3,4})\s*(?:sq\.?\s*ft|sf\b|square\s+feet)`)
	sqFtBareRe   = regexp.MustCompile(`([0-9]{3,4})`)
	planNxNRe    = regexp.MustCompile(`([0-9]x[0-9](?:\.[0-9])?)`)
	bedPatterns  = compileAll(`(\d+)\s*(?:bed|br)`, `(\d+)x\d`)
	bathPatterns = compileAll(`(\d(?:\.\d)?)\s*(?:bath|ba)`, `\d+x(\d(?:\.\d)?)`)
	unitPatterns = compileAll(
		`unit\s*([a-z0-9\-]+)`,
		`home\s*#?\s*([a-z0-9\-]+)`,
		`apt\.?\s*([a-z0-9\-]+)`,
	)
	floorPlanPatterns = compileAll(
		`((?:traditional|townhome|floor\s*plan)[^\n\r|]*)`,
		`([0-9]x[0-9](?:\.[0-9])?[^\n\r|]*)`,
	)
	availablePatterns = compileAll(
		`available[ \t]*(?:on|now)?[ \t]*([a-z0-9\-/ ,]+)`,
		`move[ \t]*in[ \t]*([a-z0-9\-/ ,]+)`,
	)
	specialPatterns = compileAll(
		`(\d+\s*weeks?\s*free)`,
		`(look-and-lease[^\n\r]*)`,
	)
)

// UnknownFloorPlan is used when a card does not name its layout.
const UnknownFloorPlan = "Unknown Floor Plan"

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// FirstMatch returns the trimmed first capture group of the first pattern that matches.
func FirstMatch(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// ParsePrice returns the first dollar amount in text, e.g. "From $1,820/mo" -> 1820.
// Without a "$" the first number is used.
func ParsePrice(text string) *float64 {
	if text == "" {
		return nil
	}
	m := dollarRe.FindStringSubmatch(text)
	if m == nil {
		m = priceRe.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseSqFt returns a 3-4 digit area, preferring a number followed by a square-foot unit.
func ParseSqFt(text string) *int {
	if text == "" {
		return nil
	}
	s := strings.ReplaceAll(text, ",", "")
	m := sqFtUnitRe.FindStringSubmatch(s)
	if m == nil {
		m = sqFtBareRe.FindStringSubmatch(s)
	}
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// ParseBeds returns the bedroom count, 0 when absent.
func ParseBeds(text string) int {
	v, ok := FirstMatch(bedPatterns, text)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// ParseBaths returns the bathroom count, 0 when absent.
func ParseBaths(text string) float64 {
	v, ok := FirstMatch(bathPatterns, text)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseUnitNumber extracts "unit B-312" style identifiers, upper-cased.
func ParseUnitNumber(text, fallback string) string {
	v, ok := FirstMatch(unitPatterns, text)
	if !ok || v == "" {
		return fallback
	}
	return strings.ToUpper(v)
}

// ParseFloorPlanName extracts the layout name from a unit card.
func ParseFloorPlanName(text string) string {
	v, ok := FirstMatch(floorPlanPatterns, text)
	if !ok || v == "" {
		return UnknownFloorPlan
	}
	return v
}

// ParsePlanCode extracts a bare "2x2" style layout code.
func ParsePlanCode(text string) (string, bool) {
	m := planNxNRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseAvailableDate extracts the availability phrase ("now", "Mar 3").
func ParseAvailableDate(text string) string {
	v, _ := FirstMatch(availablePatterns, text)
	return v
}

// ParseMoveInSpecial extracts a promotion such as "6 weeks free".
func ParseMoveInSpecial(text string) string {
	v, _ := FirstMatch(specialPatterns, text)
	return v
}
