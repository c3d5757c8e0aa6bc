package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/keyedmutex"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/timesheet-engine/internal/service/geofence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultMaxFutureSkew = 2 * time.Minute

// TokenValidator checks a scanned QR payload at a point in time.
type TokenValidator interface {
	Validate(ctx context.Context, payload string, now time.Time) (qrtoken.QRToken, error)
}

type AttendanceServiceImpl struct {
	records      attendance.TimeRecordRepository
	workers      institution.WorkerRepository
	institutions institution.InstitutionRepository
	geo          *geofence.Validator
	tokens       TokenValidator
	locks        *keyedmutex.KeyedMutex
	logger       *zap.Logger

	now           func() time.Time
	maxFutureSkew time.Duration
}

type Option func(*AttendanceServiceImpl)

func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) { s.now = now }
}

// WithMaxFutureSkew bounds how far ahead of server time an event may be stamped.
func WithMaxFutureSkew(d time.Duration) Option {
	return func(s *AttendanceServiceImpl) { s.maxFutureSkew = d }
}

func NewAttendanceService(
	records attendance.TimeRecordRepository,
	workers institution.WorkerRepository,
	institutions institution.InstitutionRepository,
	geo *geofence.Validator,
	tokens TokenValidator,
	logger *zap.Logger,
	opts ...Option,
) *AttendanceServiceImpl {
	s := &AttendanceServiceImpl{
		records:       records,
		workers:       workers,
		institutions:  institutions,
		geo:           geo,
		tokens:        tokens,
		locks:         keyedmutex.New(),
		logger:        logger,
		now:           time.Now,
		maxFutureSkew: DefaultMaxFutureSkew,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// Record implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Record(ctx context.Context, cmd attendance.RecordCommand) (attendance.TimeRecord, error) {
	if err := cmd.Validate(); err != nil {
		return attendance.TimeRecord{}, err
	}

	now := s.now()
	if s.maxFutureSkew > 0 && cmd.Timestamp.After(now.Add(s.maxFutureSkew)) {
		return attendance.TimeRecord{}, validator.ValidationErrors{{
			Field:   "timestamp",
			Message: "timestamp is too far in the future",
		}}
	}

	worker, inst, err := s.resolve(ctx, cmd.WorkerID)
	if err != nil {
		return attendance.TimeRecord{}, err
	}
	workDate := attendance.WorkDateOf(cmd.Timestamp, inst.Location())

	unlock, err := s.locks.Lock(ctx, worker.ID)
	if err != nil {
		return attendance.TimeRecord{}, err
	}
	defer unlock()

	day, err := s.records.ListByWorkerAndDate(ctx, worker.ID, workDate)
	if err != nil {
		return attendance.TimeRecord{}, fmt.Errorf("failed to load day records: %w", err)
	}

	state, err := Replay(day)
	if err != nil {
		return attendance.TimeRecord{}, err
	}

	next, err := Next(state, cmd.Type, cmd.Timestamp)
	if err != nil {
		s.logger.Info("attendance event rejected",
			zap.String("worker_id", worker.ID),
			zap.String("type", string(cmd.Type)),
			zap.String("phase", string(state.Phase)),
			zap.Error(err),
		)
		return attendance.TimeRecord{}, err
	}

	method, proof, err := s.authorize(ctx, cmd, worker, inst, now)
	if err != nil {
		s.logger.Info("attendance event unauthorized",
			zap.String("worker_id", worker.ID),
			zap.String("type", string(cmd.Type)),
			zap.Error(err),
		)
		return attendance.TimeRecord{}, err
	}

	if err := ctx.Err(); err != nil {
		return attendance.TimeRecord{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.TimeRecord{}, fmt.Errorf("failed to generate record id: %w", err)
	}

	saved, err := s.records.Append(ctx, attendance.TimeRecord{
		ID:            id.String(),
		WorkerID:      worker.ID,
		InstitutionID: inst.ID,
		WorkDate:      workDate,
		Sequence:      next.RecordCount,
		Type:          cmd.Type,
		Timestamp:     cmd.Timestamp,
		Method:        method,
		Proof:         proof,
		CreatedAt:     now.UTC(),
	})
	if err != nil {
		return attendance.TimeRecord{}, err
	}

	s.logger.Info("attendance event recorded",
		zap.String("worker_id", worker.ID),
		zap.String("type", string(saved.Type)),
		zap.String("method", string(saved.Method)),
		zap.String("work_date", workDate.Format("2006-01-02")),
		zap.Int("sequence", saved.Sequence),
	)
	return saved, nil
}

func (s *AttendanceServiceImpl) authorize(
	ctx context.Context,
	cmd attendance.RecordCommand,
	worker institution.Worker,
	inst institution.Institution,
	now time.Time,
) (attendance.Method, attendance.Proof, error) {
	if cmd.Location != nil {
		reading := *cmd.Location
		if reading.CapturedAt.IsZero() {
			reading.CapturedAt = cmd.Timestamp
		}
		match, err := s.geo.AuthorizeAt(reading, inst, cmd.Timestamp)
		if err != nil {
			return "", attendance.Proof{}, err
		}
		distance := match.DistanceMeters
		return attendance.MethodGeofence, attendance.Proof{
			Location:       &reading,
			DistanceMeters: &distance,
			ZoneLabel:      match.Zone.Label,
		}, nil
	}

	// A backdated event must not revive an expired token.
	at := cmd.Timestamp
	if now.After(at) {
		at = now
	}
	token, err := s.tokens.Validate(ctx, cmd.QRPayload, at)
	if err != nil {
		return "", attendance.Proof{}, err
	}
	if token.InstitutionID != worker.InstitutionID {
		return "", attendance.Proof{}, fmt.Errorf("%w: token belongs to another institution", qrtoken.ErrTokenInvalid)
	}
	if _, ok := inst.Zone(token.ZoneLabel); !ok {
		return "", attendance.Proof{}, fmt.Errorf("%w: zone %q is not registered", qrtoken.ErrTokenInvalid, token.ZoneLabel)
	}

	nonce := token.Nonce
	return attendance.MethodQRCode, attendance.Proof{
		TokenNonce: &nonce,
		ZoneLabel:  token.ZoneLabel,
	}, nil
}

// DayState implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DayState(ctx context.Context, workerID string, date *time.Time) (attendance.DaySnapshot, error) {
	worker, inst, err := s.resolve(ctx, workerID)
	if err != nil {
		return attendance.DaySnapshot{}, err
	}

	workDate := attendance.WorkDateOf(s.now(), inst.Location())
	if date != nil {
		workDate = normalizeDate(*date)
	}

	records, err := s.records.ListByWorkerAndDate(ctx, worker.ID, workDate)
	if err != nil {
		return attendance.DaySnapshot{}, fmt.Errorf("failed to load day records: %w", err)
	}

	state, err := Replay(records)
	if err != nil {
		return attendance.DaySnapshot{}, err
	}

	return attendance.DaySnapshot{
		WorkerID:      worker.ID,
		WorkDate:      workDate,
		State:         state,
		AllowedEvents: AllowedEvents(state.Phase),
		Records:       records,
	}, nil
}

// ListDayRecords implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListDayRecords(ctx context.Context, workerID string, date time.Time) ([]attendance.TimeRecord, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return s.records.ListByWorkerAndDate(ctx, worker.ID, normalizeDate(date))
}

func (s *AttendanceServiceImpl) resolve(ctx context.Context, workerID string) (institution.Worker, institution.Institution, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return institution.Worker{}, institution.Institution{}, err
	}
	inst, err := s.institutions.GetByID(ctx, worker.InstitutionID)
	if err != nil {
		return institution.Worker{}, institution.Institution{}, err
	}
	return worker, inst, nil
}

// normalizeDate keeps the calendar date of d as midnight UTC.
func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
