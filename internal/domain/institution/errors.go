package institution

import "errors"

var (
	ErrInstitutionNotFound = errors.New("institution not found")
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrUnknownZone         = errors.New("zone is not registered for this institution")
)
