package parse

import "strings"

// knownTags are the amenity labels the property site prints on unit cards.
var knownTags = []string{
	"Top Floor",
	"Wood Burning Fireplace",
	"Attached Garage",
	"Detached Garage",
	"Renovation Renewal Prog",
	"Kitchen and Bath Upgrade",
	"Smart Home Technology",
	"Sunroom",
	"Balcony",
	"Courtyard View",
	"Garden View",
	"Bay View",
	"Roommate Plan",
	"Washer/Dryer",
	"End Unit",
}

// FeatureTags returns the known tags mentioned in text, in catalogue order.
func FeatureTags(text string) []string {
	lowered := strings.ToLower(text)
	found := []string{}
	for _, tag := range knownTags {
		if strings.Contains(lowered, strings.ToLower(tag)) {
			found = append(found, tag)
		}
	}
	return found
}

// FeatureFlags are the boolean columns derived from a unit's tags.
type FeatureFlags struct {
	HasGarage      bool
	HasFireplace   bool
	IsRenovated    bool
	HasSmartHome   bool
	IsTopFloor     bool
	HasSunroom     bool
	HasBalcony     bool
	HasWasherDryer bool
	IsEndUnit      bool
	ViewType       string
}

// Features derives flags from free-form tags. Matching is by case-insensitive substring.
func Features(tags []string) FeatureFlags {
	var f FeatureFlags
	for _, raw := range tags {
		tag := strings.ToLower(raw)
		if strings.Contains(tag, "garage") {
			f.HasGarage = true
		}
		if strings.Contains(tag, "fireplace") {
			f.HasFireplace = true
		}
		if strings.Contains(tag, "renov") || strings.Contains(tag, "upgrade") {
			f.IsRenovated = true
		}
		if strings.Contains(tag, "smart") {
			f.HasSmartHome = true
		}
		if strings.Contains(tag, "top floor") {
			f.IsTopFloor = true
		}
		if strings.Contains(tag, "sunroom") {
			f.HasSunroom = true
		}
		if strings.Contains(tag, "balcony") {
			f.HasBalcony = true
		}
		if strings.Contains(tag, "washer") {
			f.HasWasherDryer = true
		}
		if strings.Contains(tag, "end unit") {
			f.IsEndUnit = true
		}

		if f.ViewType == "" {
			for _, view := range []string{"garden", "courtyard", "bay"} {
				if strings.Contains(tag, view+" view") {
					f.ViewType = view
					break
				}
			}
		}
	}
	return f
}
