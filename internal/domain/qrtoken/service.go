package qrtoken

import (
	"context"
	"time"
)

type QRTokenService interface {
	// Issue creates a token for a zone of the institution.
	Issue(ctx context.Context, institutionID, zoneLabel string, validForHours int) (QRToken, string, error)

	// Validate checks a scanned payload at now.
	Validate(ctx context.Context, payload string, now time.Time) (QRToken, error)

	// Render returns a PNG QR image of a stored token's payload. A non-empty
	// institutionID restricts rendering to that institution's tokens.
	Render(ctx context.Context, institutionID, nonce string, size int) ([]byte, error)
}
