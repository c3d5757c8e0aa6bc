package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRecordRequest_Validate(t *testing.T) {
	valid := RecordRequest{
		WorkerID: "worker-1",
		Type:     "check_in",
		Location: &LocationRequest{Latitude: -23.55, Longitude: -46.63, Accuracy: 12},
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name  string
		req   RecordRequest
		field string
	}{
		{"missing worker", RecordRequest{Type: "check_in", QRPayload: strPtr("{}")}, "worker_id"},
		{"unknown type", RecordRequest{WorkerID: "w", Type: "lunch", QRPayload: strPtr("{}")}, "type"},
		{"no proof", RecordRequest{WorkerID: "w", Type: "check_in"}, "proof"},
		{"both proofs", RecordRequest{WorkerID: "w", Type: "check_in", QRPayload: strPtr("{}"), Location: &LocationRequest{}}, "proof"},
		{"bad timestamp", RecordRequest{WorkerID: "w", Type: "check_in", QRPayload: strPtr("{}"), Timestamp: strPtr("08:00")}, "timestamp"},
		{"bad latitude", RecordRequest{WorkerID: "w", Type: "check_in", Location: &LocationRequest{Latitude: 91}}, "location"},
		{"negative accuracy", RecordRequest{WorkerID: "w", Type: "check_in", Location: &LocationRequest{Accuracy: -1}}, "location.accuracy"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.req.Validate()
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), c.field)
		})
	}
}

func TestRecordRequest_ToCommand(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	req := RecordRequest{
		WorkerID:  "worker-1",
		Type:      "break_start",
		Timestamp: strPtr("2025-03-10T12:00:00Z"),
		Location:  &LocationRequest{Latitude: 1, Longitude: 2, Accuracy: 5},
	}
	cmd := req.ToCommand(now)
	assert.Equal(t, EventBreakStart, cmd.Type)
	assert.True(t, cmd.Timestamp.Equal(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)))
	require.NotNil(t, cmd.Location)
	assert.True(t, cmd.Location.CapturedAt.Equal(cmd.Timestamp))
	assert.NoError(t, cmd.Validate())

	qr := RecordRequest{WorkerID: "worker-1", Type: "check_in", QRPayload: strPtr("payload")}
	cmd = qr.ToCommand(now)
	assert.Equal(t, now, cmd.Timestamp)
	assert.Equal(t, "payload", cmd.QRPayload)
	assert.Nil(t, cmd.Location)
}

func TestRecordCommand_Validate_Proof(t *testing.T) {
	cmd := RecordCommand{WorkerID: "w", Type: EventCheckIn, Timestamp: time.Now()}
	assert.ErrorIs(t, cmd.Validate(), ErrProofRequired)

	cmd.QRPayload = "x"
	cmd.Location = &LocationReading{}
	assert.ErrorIs(t, cmd.Validate(), ErrProofRequired)
}

func TestWorkDateOf(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	ts := time.Date(2025, 3, 11, 1, 30, 0, 0, time.UTC) // 22:30 on the 10th in UTC-3
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), WorkDateOf(ts, loc))
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), WorkDateOf(ts, time.UTC))
}
