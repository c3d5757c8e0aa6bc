package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(auth.Subject{
		UserID:        "user-1",
		WorkerID:      "worker-1",
		InstitutionID: "inst-1",
		Role:          auth.RoleWorker,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims := decoded.PrivateClaims()
	assert.Equal(t, "access", claims["type"])

	subject := SubjectFromClaims(claims)
	assert.Equal(t, "user-1", subject.UserID)
	assert.Equal(t, "worker-1", subject.WorkerID)
	assert.Equal(t, "inst-1", subject.InstitutionID)
	assert.Equal(t, auth.RoleWorker, subject.Role)
}

func TestJWTService_AdminWithoutWorker(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, _, err := svc.GenerateAccessToken(auth.Subject{UserID: "admin-1", Role: auth.RoleAdmin})
	require.NoError(t, err)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	subject := SubjectFromClaims(decoded.PrivateClaims())
	assert.Empty(t, subject.WorkerID)
	assert.True(t, subject.IsAdmin())
	assert.True(t, subject.CanActOn("worker-9"))
}

func TestJWTService_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("secret", "soon")
	_, _, err := svc.GenerateAccessToken(auth.Subject{UserID: "u"})
	assert.Error(t, err)
}
