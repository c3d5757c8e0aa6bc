package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-engine/internal/repository/memory"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(svc jwt.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		s, err := SubjectFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(s.WorkerID))
	})
	r.With(AdminOnly).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func do(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", "15m")
	h := newProtectedRouter(svc)

	worker, _, err := svc.GenerateAccessToken(auth.Subject{UserID: "u1", WorkerID: "w1", InstitutionID: "i1", Role: auth.RoleWorker})
	require.NoError(t, err)
	admin, _, err := svc.GenerateAccessToken(auth.Subject{UserID: "u2", InstitutionID: "i1", Role: auth.RoleAdmin})
	require.NoError(t, err)
	stranger, _, err := svc.GenerateAccessToken(auth.Subject{UserID: "u3", Role: "guest"})
	require.NoError(t, err)

	rec := do(t, h, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/me", stranger)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "/me", worker)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "w1", rec.Body.String())

	rec = do(t, h, "/admin", worker)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, "/admin", admin)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestResolveWorker(t *testing.T) {
	worker := auth.Subject{WorkerID: "w1", Role: auth.RoleWorker}
	admin := auth.Subject{Role: auth.RoleAdmin}

	id, err := ResolveWorker(worker, "")
	require.NoError(t, err)
	assert.Equal(t, "w1", id)

	_, err = ResolveWorker(worker, "w2")
	assert.ErrorIs(t, err, auth.ErrForbiddenWorker)

	id, err = ResolveWorker(admin, "w2")
	require.NoError(t, err)
	assert.Equal(t, "w2", id)

	_, err = ResolveWorker(admin, "")
	assert.ErrorIs(t, err, auth.ErrWorkerClaimRequired)
}

func TestAuthorizeWorker(t *testing.T) {
	ctx := context.Background()
	workers := memory.NewWorkerRepository()
	require.NoError(t, workers.Save(ctx, institution.Worker{ID: "w1", InstitutionID: "inst-1"}))
	require.NoError(t, workers.Save(ctx, institution.Worker{ID: "w9", InstitutionID: "inst-2"}))

	admin := auth.Subject{InstitutionID: "inst-1", Role: auth.RoleAdmin}
	unbound := auth.Subject{Role: auth.RoleAdmin}
	worker := auth.Subject{WorkerID: "w1", InstitutionID: "inst-1", Role: auth.RoleWorker}

	id, err := AuthorizeWorker(ctx, workers, admin, "w1")
	require.NoError(t, err)
	assert.Equal(t, "w1", id)

	_, err = AuthorizeWorker(ctx, workers, admin, "w9")
	assert.ErrorIs(t, err, auth.ErrForbiddenInstitution)

	_, err = AuthorizeWorker(ctx, workers, admin, "nobody")
	assert.ErrorIs(t, err, institution.ErrWorkerNotFound)

	id, err = AuthorizeWorker(ctx, workers, unbound, "w9")
	require.NoError(t, err)
	assert.Equal(t, "w9", id)

	id, err = AuthorizeWorker(ctx, workers, worker, "")
	require.NoError(t, err)
	assert.Equal(t, "w1", id)

	_, err = AuthorizeWorker(ctx, workers, worker, "w9")
	assert.ErrorIs(t, err, auth.ErrForbiddenWorker)
}
