package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/schedule"
)

type institutionRepository struct {
	mu    sync.RWMutex
	items map[string]institution.Institution
}

func NewInstitutionRepository() institution.InstitutionRepository {
	return &institutionRepository{items: make(map[string]institution.Institution)}
}

// GetByID implements institution.InstitutionRepository.
func (r *institutionRepository) GetByID(ctx context.Context, id string) (institution.Institution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.items[id]
	if !ok {
		return institution.Institution{}, institution.ErrInstitutionNotFound
	}
	inst.Zones = slices.Clone(inst.Zones)
	return inst, nil
}

// Save implements institution.InstitutionRepository.
func (r *institutionRepository) Save(ctx context.Context, inst institution.Institution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst.Zones = slices.Clone(inst.Zones)
	r.items[inst.ID] = inst
	return nil
}

type workerRepository struct {
	mu    sync.RWMutex
	items map[string]institution.Worker
}

func NewWorkerRepository() institution.WorkerRepository {
	return &workerRepository{items: make(map[string]institution.Worker)}
}

// GetByID implements institution.WorkerRepository.
func (r *workerRepository) GetByID(ctx context.Context, id string) (institution.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.items[id]
	if !ok {
		return institution.Worker{}, institution.ErrWorkerNotFound
	}
	return w, nil
}

// Save implements institution.WorkerRepository.
func (r *workerRepository) Save(ctx context.Context, worker institution.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[worker.ID] = worker
	return nil
}

type workScheduleRepository struct {
	mu    sync.RWMutex
	items map[string]schedule.WorkSchedule
}

func NewWorkScheduleRepository() schedule.WorkScheduleRepository {
	return &workScheduleRepository{items: make(map[string]schedule.WorkSchedule)}
}

// GetByID implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) GetByID(ctx context.Context, id string) (schedule.WorkSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.items[id]
	if !ok {
		return schedule.WorkSchedule{}, schedule.ErrScheduleNotFound
	}
	ws.DaysOfWeek = slices.Clone(ws.DaysOfWeek)
	return ws, nil
}

// Save implements schedule.WorkScheduleRepository.
func (r *workScheduleRepository) Save(ctx context.Context, ws schedule.WorkSchedule) error {
	if err := ws.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ws.DaysOfWeek = slices.Clone(ws.DaysOfWeek)
	r.items[ws.ID] = ws
	return nil
}
