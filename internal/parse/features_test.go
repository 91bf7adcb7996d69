package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatures(t *testing.T) {
	flags := Features([]string{
		"Top Floor",
		"Wood Burning Fireplace",
		"Smart Home Technology",
		"Renovation Renewal Prog",
		"Sunroom",
		"Courtyard View",
	})

	assert.True(t, flags.IsTopFloor)
	assert.True(t, flags.HasFireplace)
	assert.True(t, flags.HasSmartHome)
	assert.True(t, flags.IsRenovated)
	assert.True(t, flags.HasSunroom)
	assert.False(t, flags.HasGarage)
	assert.False(t, flags.HasBalcony)
	assert.Equal(t, "courtyard", flags.ViewType)
}

func TestFeatures_Empty(t *testing.T) {
	assert.Equal(t, FeatureFlags{}, Features(nil))
}

func TestFeatureTags(t *testing.T) {
	tags := FeatureTags("Unit 12 | attached garage | BALCONY | Garden View")
	assert.Equal(t, []string{"Attached Garage", "Balcony", "Garden View"}, tags)
	assert.Empty(t, FeatureTags("plain unit"))
}
