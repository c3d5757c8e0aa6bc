package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"github.com/go-redis/redis/v8"
)

const tokenKeyPrefix = "timesheet:qr:"

type storedToken struct {
	Nonce         string    `json:"nonce"`
	InstitutionID string    `json:"institution_id"`
	ZoneLabel     string    `json:"zone_label"`
	IssuedAt      time.Time `json:"issued_at"`
	ValidUntil    time.Time `json:"valid_until"`
}

// TokenStore keeps tokens in Redis. Keys expire retention after ValidUntil,
// so no purge job is needed.
type TokenStore struct {
	client    *redis.Client
	retention time.Duration
	now       func() time.Time
}

func NewTokenStore(client *redis.Client, retention time.Duration) *TokenStore {
	return &TokenStore{client: client, retention: retention, now: time.Now}
}

func (s *TokenStore) Save(ctx context.Context, token qrtoken.QRToken) error {
	ttl := token.ValidUntil.Add(s.retention).Sub(s.now())
	if ttl <= 0 {
		// already past retention; nothing would ever read it
		return nil
	}

	b, err := json.Marshal(storedToken{
		Nonce:         token.Nonce,
		InstitutionID: token.InstitutionID,
		ZoneLabel:     token.ZoneLabel,
		IssuedAt:      token.IssuedAt,
		ValidUntil:    token.ValidUntil,
	})
	if err != nil {
		return fmt.Errorf("failed to encode qr token: %w", err)
	}

	if err := s.client.Set(ctx, tokenKeyPrefix+token.Nonce, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store qr token: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, nonce string) (qrtoken.QRToken, error) {
	val, err := s.client.Get(ctx, tokenKeyPrefix+nonce).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return qrtoken.QRToken{}, qrtoken.ErrTokenNotFound
		}
		return qrtoken.QRToken{}, fmt.Errorf("failed to read qr token: %w", err)
	}

	var st storedToken
	if err := json.Unmarshal(val, &st); err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("failed to decode qr token: %w", err)
	}

	return qrtoken.QRToken{
		Nonce:         st.Nonce,
		InstitutionID: st.InstitutionID,
		ZoneLabel:     st.ZoneLabel,
		IssuedAt:      st.IssuedAt.UTC(),
		ValidUntil:    st.ValidUntil.UTC(),
	}, nil
}

var _ qrtoken.TokenStore = (*TokenStore)(nil)
