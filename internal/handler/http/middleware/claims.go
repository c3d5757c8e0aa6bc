package middleware

import (
	"context"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// SubjectFromContext returns the caller identity verified by jwtauth.Verifier.
func SubjectFromContext(ctx context.Context) (auth.Subject, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return auth.Subject{}, auth.ErrInvalidToken
	}
	return jwt.SubjectFromClaims(claims), nil
}

// ResolveWorker picks the worker a request acts on: the requested one when
// the caller may act on it, otherwise the caller's own worker.
func ResolveWorker(subject auth.Subject, requested string) (string, error) {
	if requested == "" {
		if subject.WorkerID == "" {
			return "", auth.ErrWorkerClaimRequired
		}
		return subject.WorkerID, nil
	}
	if !subject.CanActOn(requested) {
		return "", auth.ErrForbiddenWorker
	}
	return requested, nil
}

// AuthorizeWorker resolves the target worker like ResolveWorker and keeps
// admins bound to an institution inside it. Admins without an institution
// claim may act on any worker.
func AuthorizeWorker(ctx context.Context, workers institution.WorkerRepository, subject auth.Subject, requested string) (string, error) {
	workerID, err := ResolveWorker(subject, requested)
	if err != nil {
		return "", err
	}
	if !subject.IsAdmin() || subject.InstitutionID == "" || workerID == subject.WorkerID {
		return workerID, nil
	}

	worker, err := workers.GetByID(ctx, workerID)
	if err != nil {
		return "", err
	}
	if worker.InstitutionID != subject.InstitutionID {
		return "", auth.ErrForbiddenInstitution
	}
	return workerID, nil
}
