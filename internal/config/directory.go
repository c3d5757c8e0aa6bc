package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

// Directory is the YAML seed of institutions, schedules and workers.
type Directory struct {
	Institutions []InstitutionEntry `yaml:"institutions"`
	Schedules    []ScheduleEntry    `yaml:"schedules"`
	Workers      []WorkerEntry      `yaml:"workers"`
}

type InstitutionEntry struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	Timezone string      `yaml:"timezone"`
	Zones    []ZoneEntry `yaml:"zones"`
}

type ZoneEntry struct {
	Label        string  `yaml:"label"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

type ScheduleEntry struct {
	ID               string   `yaml:"id"`
	InstitutionID    string   `yaml:"institution_id"`
	Name             string   `yaml:"name"`
	Start            string   `yaml:"start"`
	End              string   `yaml:"end"`
	BreakMinutes     int      `yaml:"break_minutes"`
	ToleranceMinutes int      `yaml:"tolerance_minutes"`
	Days             []string `yaml:"days"`
}

type WorkerEntry struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	InstitutionID string `yaml:"institution_id"`
	ScheduleID    string `yaml:"schedule_id"`
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// LoadDirectory reads a directory file, replacing ${VAR} placeholders from the environment.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading directory file: %w", err)
	}
	return ParseDirectory(data)
}

func ParseDirectory(data []byte) (*Directory, error) {
	content := string(data)
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}

	var dir Directory
	if err := yaml.Unmarshal([]byte(content), &dir); err != nil {
		return nil, fmt.Errorf("error parsing directory: %w", err)
	}
	if err := dir.Validate(); err != nil {
		return nil, err
	}
	return &dir, nil
}

func (d *Directory) Validate() error {
	var errs validator.ValidationErrors
	fail := func(field, msg string) {
		errs = append(errs, validator.ValidationError{Field: field, Message: msg})
	}

	for i, e := range d.Institutions {
		prefix := fmt.Sprintf("institutions[%d]", i)
		if validator.IsEmpty(e.ID) {
			fail(prefix+".id", "id is required")
		}
		if e.Timezone != "" && !validator.IsValidTimezone(e.Timezone) {
			fail(prefix+".timezone", "timezone must be an IANA location")
		}
		for j, z := range e.Zones {
			if validator.IsEmpty(z.Label) {
				fail(fmt.Sprintf("%s.zones[%d].label", prefix, j), "label is required")
			}
			if z.RadiusMeters <= 0 {
				fail(fmt.Sprintf("%s.zones[%d].radius_meters", prefix, j), "radius_meters must be positive")
			}
		}
	}

	for i, e := range d.Schedules {
		prefix := fmt.Sprintf("schedules[%d]", i)
		if validator.IsEmpty(e.ID) {
			fail(prefix+".id", "id is required")
		}
		if !validator.IsValidClock(e.Start) {
			fail(prefix+".start", "start must be in HH:MM format")
		}
		if !validator.IsValidClock(e.End) {
			fail(prefix+".end", "end must be in HH:MM format")
		}
	}

	for i, e := range d.Workers {
		prefix := fmt.Sprintf("workers[%d]", i)
		if validator.IsEmpty(e.ID) {
			fail(prefix+".id", "id is required")
		}
		if validator.IsEmpty(e.InstitutionID) {
			fail(prefix+".institution_id", "institution_id is required")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (e InstitutionEntry) ToDomain() institution.Institution {
	inst := institution.Institution{ID: e.ID, Name: e.Name, Timezone: e.Timezone}
	for _, z := range e.Zones {
		inst.Zones = append(inst.Zones, institution.AllowedZone{
			Label:        z.Label,
			Latitude:     z.Latitude,
			Longitude:    z.Longitude,
			RadiusMeters: z.RadiusMeters,
		})
	}
	return inst
}

func (e ScheduleEntry) ToDomain() (schedule.WorkSchedule, error) {
	start, err := schedule.ParseClockTime(e.Start)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("schedule %s: %w", e.ID, err)
	}
	end, err := schedule.ParseClockTime(e.End)
	if err != nil {
		return schedule.WorkSchedule{}, fmt.Errorf("schedule %s: %w", e.ID, err)
	}

	days := make([]time.Weekday, 0, len(e.Days))
	for _, d := range e.Days {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return schedule.WorkSchedule{}, fmt.Errorf("schedule %s: %w: unknown day %q", e.ID, schedule.ErrInvalidSchedule, d)
		}
		days = append(days, wd)
	}

	return schedule.WorkSchedule{
		ID:                   e.ID,
		InstitutionID:        e.InstitutionID,
		Name:                 e.Name,
		StartTime:            start,
		EndTime:              end,
		BreakDurationMinutes: e.BreakMinutes,
		DaysOfWeek:           days,
		ToleranceMinutes:     e.ToleranceMinutes,
	}, nil
}

func (e WorkerEntry) ToDomain() institution.Worker {
	return institution.Worker{
		ID:            e.ID,
		Name:          e.Name,
		InstitutionID: e.InstitutionID,
		ScheduleID:    e.ScheduleID,
	}
}

// Apply writes the directory through the given repositories, parents first.
func (d *Directory) Apply(
	ctx context.Context,
	institutions institution.InstitutionRepository,
	schedules schedule.WorkScheduleRepository,
	workers institution.WorkerRepository,
) error {
	for _, e := range d.Institutions {
		if err := institutions.Save(ctx, e.ToDomain()); err != nil {
			return fmt.Errorf("failed to save institution %s: %w", e.ID, err)
		}
	}

	for _, e := range d.Schedules {
		ws, err := e.ToDomain()
		if err != nil {
			return err
		}
		if err := schedules.Save(ctx, ws); err != nil {
			return fmt.Errorf("failed to save schedule %s: %w", e.ID, err)
		}
	}

	for _, e := range d.Workers {
		if err := workers.Save(ctx, e.ToDomain()); err != nil {
			return fmt.Errorf("failed to save worker %s: %w", e.ID, err)
		}
	}
	return nil
}
