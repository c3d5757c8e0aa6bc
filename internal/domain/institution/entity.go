package institution

import "time"

type Institution struct {
	ID        string
	Name      string
	Timezone  string
	Zones     []AllowedZone
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AllowedZone is a circular geofence in which attendance may be recorded.
// Label doubles as the zone label carried by QR tokens.
type AllowedZone struct {
	Label        string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Location returns the institution's time zone, falling back to UTC.
func (i Institution) Location() *time.Location {
	if i.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(i.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (i Institution) Zone(label string) (AllowedZone, bool) {
	for _, z := range i.Zones {
		if z.Label == label {
			return z, true
		}
	}
	return AllowedZone{}, false
}

type Worker struct {
	ID            string
	Name          string
	InstitutionID string
	ScheduleID    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
