package geofence

import (
	"math"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/utils"
)

const (
	DefaultMaxAccuracyMeters = 50.0
	DefaultMaxReadingAge     = 60 * time.Second
)

// Match is the zone that authorized a reading.
type Match struct {
	Zone           institution.AllowedZone
	DistanceMeters float64
}

// Validator decides whether a location reading lies inside one of an institution's zones.
type Validator struct {
	maxAccuracyMeters float64
	maxReadingAge     time.Duration
}

// NewValidator builds a validator. A maxReadingAge of zero disables the staleness check.
func NewValidator(maxAccuracyMeters float64, maxReadingAge time.Duration) *Validator {
	if maxAccuracyMeters <= 0 {
		maxAccuracyMeters = DefaultMaxAccuracyMeters
	}
	if maxReadingAge < 0 {
		maxReadingAge = 0
	}
	return &Validator{
		maxAccuracyMeters: maxAccuracyMeters,
		maxReadingAge:     maxReadingAge,
	}
}

// Authorize returns the nearest zone containing the reading.
func (v *Validator) Authorize(reading attendance.LocationReading, inst institution.Institution) (Match, error) {
	if !finite(reading.Latitude) || !finite(reading.Longitude) ||
		!utils.IsValidCoordinate(reading.Latitude, reading.Longitude) {
		return Match{}, attendance.ErrLocationUnauthorized
	}

	if !finite(reading.AccuracyMeters) || reading.AccuracyMeters < 0 || reading.AccuracyMeters > v.maxAccuracyMeters {
		return Match{}, attendance.ErrLowAccuracy
	}

	var (
		best  Match
		found bool
	)
	for _, zone := range inst.Zones {
		d := utils.CalculateHaversineDistance(reading.Latitude, reading.Longitude, zone.Latitude, zone.Longitude)
		if d > zone.RadiusMeters {
			continue
		}
		if !found || d < best.DistanceMeters {
			best = Match{Zone: zone, DistanceMeters: d}
			found = true
		}
	}

	if !found {
		return Match{}, attendance.ErrLocationUnauthorized
	}
	return best, nil
}

// AuthorizeAt additionally rejects readings captured too long before eventTime.
func (v *Validator) AuthorizeAt(reading attendance.LocationReading, inst institution.Institution, eventTime time.Time) (Match, error) {
	if v.maxReadingAge > 0 && !reading.CapturedAt.IsZero() {
		age := eventTime.Sub(reading.CapturedAt)
		if age < 0 {
			age = -age
		}
		if age > v.maxReadingAge {
			return Match{}, attendance.ErrStaleLocation
		}
	}
	return v.Authorize(reading, inst)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
