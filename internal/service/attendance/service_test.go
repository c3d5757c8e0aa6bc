package attendance

import (
	"context"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/cmlabs-hris/timesheet-engine/internal/repository/memory"
	"github.com/cmlabs-hris/timesheet-engine/internal/service/geofence"
	qrsvc "github.com/cmlabs-hris/timesheet-engine/internal/service/qrtoken"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	hqLat = -23.5505
	hqLon = -46.6333
)

type fixture struct {
	svc     *AttendanceServiceImpl
	records attendance.TimeRecordRepository
	qr      *qrsvc.Manager
	now     time.Time
}

func newFixture(t *testing.T, tz string) *fixture {
	t.Helper()
	ctx := context.Background()

	insts := memory.NewInstitutionRepository()
	require.NoError(t, insts.Save(ctx, institution.Institution{
		ID:       "inst-1",
		Timezone: tz,
		Zones:    []institution.AllowedZone{{Label: "HQ", Latitude: hqLat, Longitude: hqLon, RadiusMeters: 100}},
	}))
	require.NoError(t, insts.Save(ctx, institution.Institution{
		ID:    "inst-2",
		Zones: []institution.AllowedZone{{Label: "HQ", Latitude: 0, Longitude: 0, RadiusMeters: 100}},
	}))

	workers := memory.NewWorkerRepository()
	require.NoError(t, workers.Save(ctx, institution.Worker{ID: "w1", InstitutionID: "inst-1"}))
	require.NoError(t, workers.Save(ctx, institution.Worker{ID: "w2", InstitutionID: "inst-1"}))

	f := &fixture{
		records: memory.NewTimeRecordRepository(),
		now:     time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.qr = qrsvc.NewManager(memory.NewTokenStore(0), 720, qrsvc.WithClock(clock))
	f.svc = NewAttendanceService(f.records, workers, insts, geofence.NewValidator(50, time.Minute), f.qr, zap.NewNop(), WithClock(clock))
	return f
}

func geoCmd(worker string, typ attendance.EventType, ts time.Time) attendance.RecordCommand {
	return attendance.RecordCommand{
		WorkerID:  worker,
		Type:      typ,
		Timestamp: ts,
		Location:  &attendance.LocationReading{Latitude: hqLat, Longitude: hqLon, AccuracyMeters: 10, CapturedAt: ts},
	}
}

func TestRecord_FullDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	for i, step := range []struct {
		typ attendance.EventType
		ts  string
	}{
		{attendance.EventCheckIn, "08:10"},
		{attendance.EventBreakStart, "12:00"},
		{attendance.EventBreakEnd, "13:00"},
		{attendance.EventCheckOut, "17:00"},
	} {
		rec, err := f.svc.Record(ctx, geoCmd("w1", step.typ, at(step.ts)))
		require.NoError(t, err)
		assert.Equal(t, i+1, rec.Sequence)
		assert.Equal(t, attendance.MethodGeofence, rec.Method)
		assert.Equal(t, "HQ", rec.Proof.ZoneLabel)
		require.NotNil(t, rec.Proof.DistanceMeters)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, day, rec.WorkDate)
	}

	snap, err := f.svc.DayState(ctx, "w1", nil)
	require.NoError(t, err)
	assert.Equal(t, attendance.PhaseDone, snap.State.Phase)
	assert.Empty(t, snap.AllowedEvents)
	assert.Len(t, snap.Records, 4)
}

func TestRecord_RejectionsLeaveNoRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	_, err := f.svc.Record(ctx, geoCmd("w1", attendance.EventBreakStart, at("08:00")))
	assert.ErrorIs(t, err, attendance.ErrIllegalTransition)

	far := geoCmd("w1", attendance.EventCheckIn, at("08:00"))
	far.Location.Latitude = hqLat + 0.01
	_, err = f.svc.Record(ctx, far)
	assert.ErrorIs(t, err, attendance.ErrLocationUnauthorized)

	fuzzy := geoCmd("w1", attendance.EventCheckIn, at("08:00"))
	fuzzy.Location.AccuracyMeters = 500
	_, err = f.svc.Record(ctx, fuzzy)
	assert.ErrorIs(t, err, attendance.ErrLowAccuracy)

	stale := geoCmd("w1", attendance.EventCheckIn, at("08:00"))
	stale.Location.CapturedAt = at("07:00")
	_, err = f.svc.Record(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrStaleLocation)

	_, err = f.svc.Record(ctx, geoCmd("ghost", attendance.EventCheckIn, at("08:00")))
	assert.ErrorIs(t, err, institution.ErrWorkerNotFound)

	_, err = f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, f.now.Add(time.Hour)))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	recs, err := f.svc.ListDayRecords(ctx, "w1", day)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecord_NonMonotonic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	_, err := f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, at("09:00")))
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, geoCmd("w1", attendance.EventBreakStart, at("08:30")))
	assert.ErrorIs(t, err, attendance.ErrNonMonotonicTimestamp)
}

func TestRecord_DuplicateCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	_, err := f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, at("08:00")))
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, at("08:05")))
	assert.ErrorIs(t, err, attendance.ErrIllegalTransition)
}

func TestRecord_ConcurrentCheckIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		illegal   int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, at("08:00")))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, attendance.ErrIllegalTransition):
				illegal++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, illegal)

	recs, err := f.svc.ListDayRecords(ctx, "w1", day)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecord_DifferentWorkersInParallel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")

	unlock, err := f.svc.locks.Lock(ctx, "w1")
	require.NoError(t, err)
	defer unlock()

	// w1 is locked; w2 must still proceed
	_, err = f.svc.Record(ctx, geoCmd("w2", attendance.EventCheckIn, at("08:00")))
	assert.NoError(t, err)
}

func TestRecord_CancelledWhileWaiting(t *testing.T) {
	f := newFixture(t, "UTC")

	unlock, err := f.svc.locks.Lock(context.Background(), "w1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, at("08:00")))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	unlock()

	recs, err := f.svc.ListDayRecords(context.Background(), "w1", day)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRecord_QRCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")
	f.now = at("07:00")

	token, err := f.qr.Issue(ctx, "inst-1", "HQ", 2)
	require.NoError(t, err)
	payload, err := f.qr.Serialize(token)
	require.NoError(t, err)

	f.now = at("08:00")
	rec, err := f.svc.Record(ctx, attendance.RecordCommand{WorkerID: "w1", Type: attendance.EventCheckIn, Timestamp: at("08:00"), QRPayload: payload})
	require.NoError(t, err)
	assert.Equal(t, attendance.MethodQRCode, rec.Method)
	require.NotNil(t, rec.Proof.TokenNonce)
	assert.Equal(t, token.Nonce, *rec.Proof.TokenNonce)

	// the same token is reusable by another worker
	f.now = at("08:30")
	_, err = f.svc.Record(ctx, attendance.RecordCommand{WorkerID: "w2", Type: attendance.EventCheckIn, Timestamp: at("08:30"), QRPayload: payload})
	require.NoError(t, err)

	// expired at +3h, even when the event is backdated into the validity window
	f.now = at("10:00")
	_, err = f.svc.Record(ctx, attendance.RecordCommand{WorkerID: "w1", Type: attendance.EventBreakStart, Timestamp: at("08:45"), QRPayload: payload})
	assert.ErrorIs(t, err, qrtoken.ErrTokenExpired)
}

func TestRecord_QRCodeForeignInstitution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "UTC")
	f.now = at("08:00")

	token, err := f.qr.Issue(ctx, "inst-2", "HQ", 2)
	require.NoError(t, err)
	payload, err := f.qr.Serialize(token)
	require.NoError(t, err)

	_, err = f.svc.Record(ctx, attendance.RecordCommand{WorkerID: "w1", Type: attendance.EventCheckIn, Timestamp: at("08:00"), QRPayload: payload})
	assert.ErrorIs(t, err, qrtoken.ErrTokenInvalid)

	unknownZone, err := f.qr.Issue(ctx, "inst-1", "Warehouse", 2)
	require.NoError(t, err)
	payload, err = f.qr.Serialize(unknownZone)
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, attendance.RecordCommand{WorkerID: "w1", Type: attendance.EventCheckIn, Timestamp: at("08:00"), QRPayload: payload})
	assert.ErrorIs(t, err, qrtoken.ErrTokenInvalid)
}

func TestRecord_WorkDateUsesInstitutionTimezone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "America/Sao_Paulo")
	f.now = time.Date(2025, 3, 11, 2, 0, 0, 0, time.UTC)

	// 01:30 UTC on the 11th is 22:30 on the 10th in Sao Paulo
	ts := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC)
	rec, err := f.svc.Record(ctx, geoCmd("w1", attendance.EventCheckIn, ts))
	require.NoError(t, err)
	assert.Equal(t, day, rec.WorkDate)

	snap, err := f.svc.DayState(ctx, "w1", nil)
	require.NoError(t, err)
	assert.Equal(t, day, snap.WorkDate)
	assert.Equal(t, attendance.PhaseWorking, snap.State.Phase)
	assert.Equal(t, []attendance.EventType{attendance.EventBreakStart, attendance.EventCheckOut}, snap.AllowedEvents)
}
