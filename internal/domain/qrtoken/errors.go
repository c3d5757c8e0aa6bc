package qrtoken

import "errors"

var (
	ErrTokenExpired    = errors.New("qr token has expired")
	ErrTokenInvalid    = errors.New("qr token is invalid")
	ErrTokenNotFound   = errors.New("qr token not found")
	ErrInvalidDuration = errors.New("qr token duration must be a positive number of hours within the allowed maximum")
	ErrInvalidScope    = errors.New("qr token requires an institution and a zone label")
)
