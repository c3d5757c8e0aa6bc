package institution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInstitution_Location(t *testing.T) {
	assert.Equal(t, time.UTC, Institution{}.Location())
	assert.Equal(t, time.UTC, Institution{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, "UTC", Institution{Timezone: "UTC"}.Location().String())
}

func TestInstitution_Zone(t *testing.T) {
	inst := Institution{Zones: []AllowedZone{
		{Label: "Main Entrance", Latitude: 1, Longitude: 2, RadiusMeters: 100},
		{Label: "Annex", Latitude: 3, Longitude: 4, RadiusMeters: 50},
	}}

	z, ok := inst.Zone("Annex")
	assert.True(t, ok)
	assert.Equal(t, 50.0, z.RadiusMeters)

	_, ok = inst.Zone("Parking")
	assert.False(t, ok)
}
