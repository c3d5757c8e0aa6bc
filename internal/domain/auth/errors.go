package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrWorkerClaimRequired    = errors.New("token is not bound to a worker")
	ErrForbiddenWorker        = errors.New("not allowed to act on another worker")
	ErrForbiddenInstitution   = errors.New("not allowed to act on another institution")
)
