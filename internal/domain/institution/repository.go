package institution

import "context"

// InstitutionRepository is read-only to the attendance engine; Save exists for seeding.
type InstitutionRepository interface {
	GetByID(ctx context.Context, id string) (Institution, error)
	Save(ctx context.Context, inst Institution) error
}

type WorkerRepository interface {
	GetByID(ctx context.Context, id string) (Worker, error)
	Save(ctx context.Context, worker Worker) error
}
