package schedule

import "context"

type WorkScheduleRepository interface {
	GetByID(ctx context.Context, id string) (WorkSchedule, error)
	Save(ctx context.Context, ws WorkSchedule) error
}
