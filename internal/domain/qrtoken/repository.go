package qrtoken

import (
	"context"
	"time"
)

// TokenStore persists issued tokens keyed by nonce. Get returns ErrTokenNotFound
// for unknown nonces.
type TokenStore interface {
	Save(ctx context.Context, token QRToken) error
	Get(ctx context.Context, nonce string) (QRToken, error)
}

// Purger is implemented by stores that need explicit cleanup of expired tokens.
type Purger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
