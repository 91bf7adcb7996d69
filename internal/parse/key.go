package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and collapses every run of non-alphanumerics into "-".
func Slugify(s string) string {
	slug := nonSlugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "unknown"
	}
	return slug
}

// CompositeKey derives the de-duplication key of a unit:
// slug(floorPlan)_beds_baths_sqft_slug(unit), with "." in baths written as "_".
func CompositeKey(floorPlan string, beds int, baths float64, sqFt *int, unit string) string {
	sq := 0
	if sqFt != nil {
		sq = *sqFt
	}
	b := strings.ReplaceAll(strconv.FormatFloat(baths, 'f', -1, 64), ".", "_")
	return fmt.Sprintf("%s_%d_%s_%d_%s", Slugify(floorPlan), beds, b, sq, Slugify(unit))
}
