package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
)

// TokenStore keeps QR tokens in process memory. Expired tokens stay until PurgeExpired runs.
type TokenStore struct {
	mu        sync.RWMutex
	tokens    map[string]qrtoken.QRToken
	retention time.Duration
}

func NewTokenStore(retention time.Duration) *TokenStore {
	return &TokenStore{
		tokens:    make(map[string]qrtoken.QRToken),
		retention: retention,
	}
}

func (s *TokenStore) Save(ctx context.Context, token qrtoken.QRToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token.Nonce] = token
	return nil
}

func (s *TokenStore) Get(ctx context.Context, nonce string) (qrtoken.QRToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.tokens[nonce]
	if !ok {
		return qrtoken.QRToken{}, qrtoken.ErrTokenNotFound
	}
	return token, nil
}

// PurgeExpired drops tokens whose ValidUntil plus retention lies before now.
func (s *TokenStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for nonce, token := range s.tokens {
		if now.After(token.ValidUntil.Add(s.retention)) {
			delete(s.tokens, nonce)
			purged++
		}
	}
	return purged, nil
}

func (s *TokenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

var (
	_ qrtoken.TokenStore = (*TokenStore)(nil)
	_ qrtoken.Purger     = (*TokenStore)(nil)
)
