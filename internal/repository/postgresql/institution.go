package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type institutionRepository struct {
	db *database.DB
}

func NewInstitutionRepository(db *database.DB) institution.InstitutionRepository {
	return &institutionRepository{db: db}
}

type zoneRow struct {
	Label        string  `json:"label"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

// GetByID implements institution.InstitutionRepository.
func (r *institutionRepository) GetByID(ctx context.Context, id string) (institution.Institution, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			i.id, i.name, i.timezone, i.created_at, i.updated_at,
			COALESCE(
				(
					SELECT json_agg(json_build_object(
						'label', z.label,
						'latitude', z.latitude,
						'longitude', z.longitude,
						'radius_meters', z.radius_meters
					) ORDER BY z.label)
					FROM institution_zones z
					WHERE z.institution_id = i.id
				),
				'[]'::json
			) AS zones
		FROM institutions i
		WHERE i.id = $1
	`

	var (
		inst      institution.Institution
		zonesJSON []byte
	)
	err := q.QueryRow(ctx, query, id).Scan(&inst.ID, &inst.Name, &inst.Timezone, &inst.CreatedAt, &inst.UpdatedAt, &zonesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return institution.Institution{}, institution.ErrInstitutionNotFound
		}
		return institution.Institution{}, fmt.Errorf("failed to get institution: %w", err)
	}

	var zones []zoneRow
	if err := json.Unmarshal(zonesJSON, &zones); err != nil {
		return institution.Institution{}, fmt.Errorf("failed to decode zones: %w", err)
	}
	for _, z := range zones {
		inst.Zones = append(inst.Zones, institution.AllowedZone{
			Label:        z.Label,
			Latitude:     z.Latitude,
			Longitude:    z.Longitude,
			RadiusMeters: z.RadiusMeters,
		})
	}

	return inst, nil
}

// Save implements institution.InstitutionRepository. Zones are replaced as a whole.
func (r *institutionRepository) Save(ctx context.Context, inst institution.Institution) error {
	timezone := inst.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	return WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		_, err := q.Exec(ctx, `
			INSERT INTO institutions (id, name, timezone)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, timezone = EXCLUDED.timezone, updated_at = now()
		`, inst.ID, inst.Name, timezone)
		if err != nil {
			return fmt.Errorf("failed to upsert institution: %w", err)
		}

		if _, err := q.Exec(ctx, `DELETE FROM institution_zones WHERE institution_id = $1`, inst.ID); err != nil {
			return fmt.Errorf("failed to clear zones: %w", err)
		}

		for _, z := range inst.Zones {
			_, err := q.Exec(ctx, `
				INSERT INTO institution_zones (institution_id, label, latitude, longitude, radius_meters)
				VALUES ($1, $2, $3, $4, $5)
			`, inst.ID, z.Label, z.Latitude, z.Longitude, z.RadiusMeters)
			if err != nil {
				return fmt.Errorf("failed to insert zone %q: %w", z.Label, err)
			}
		}
		return nil
	})
}
