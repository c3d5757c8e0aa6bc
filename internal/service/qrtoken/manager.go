package qrtoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
)

const (
	DefaultMaxValidHours = 720
	nonceBytes           = 16
)

// Manager issues, encodes and checks QR tokens against a TokenStore.
type Manager struct {
	store         qrtoken.TokenStore
	maxValidHours int
	now           func() time.Time
	rand          io.Reader
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithRandom(r io.Reader) Option {
	return func(m *Manager) { m.rand = r }
}

func NewManager(store qrtoken.TokenStore, maxValidHours int, opts ...Option) *Manager {
	if maxValidHours <= 0 {
		maxValidHours = DefaultMaxValidHours
	}
	m := &Manager{
		store:         store,
		maxValidHours: maxValidHours,
		now:           time.Now,
		rand:          rand.Reader,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Issue(ctx context.Context, institutionID, zoneLabel string, validForHours int) (qrtoken.QRToken, error) {
	if institutionID == "" || zoneLabel == "" {
		return qrtoken.QRToken{}, qrtoken.ErrInvalidScope
	}
	if validForHours <= 0 || validForHours > m.maxValidHours {
		return qrtoken.QRToken{}, fmt.Errorf("%w: got %d, maximum %d", qrtoken.ErrInvalidDuration, validForHours, m.maxValidHours)
	}

	nonce, err := m.newNonce()
	if err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// The payload carries milliseconds: IssuedAt rounds down and ValidUntil
	// rounds up so the encoded window always covers [now, now+hours].
	now := m.now().UTC()
	token := qrtoken.QRToken{
		Nonce:         nonce,
		InstitutionID: institutionID,
		ZoneLabel:     zoneLabel,
		IssuedAt:      now.Truncate(time.Millisecond),
		ValidUntil:    ceilMillisecond(now.Add(time.Duration(validForHours) * time.Hour)),
	}

	if err := m.store.Save(ctx, token); err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("failed to save qr token: %w", err)
	}
	return token, nil
}

func (m *Manager) Serialize(token qrtoken.QRToken) (string, error) {
	b, err := json.Marshal(qrtoken.Payload{
		Type:          qrtoken.PayloadType,
		InstitutionID: token.InstitutionID,
		Location:      token.ZoneLabel,
		ValidUntil:    token.ValidUntil.UTC().Format(qrtoken.TimeLayout),
		CreatedAt:     token.IssuedAt.UTC().Format(qrtoken.TimeLayout),
		Nonce:         token.Nonce,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode qr payload: %w", err)
	}
	return string(b), nil
}

// Parse decodes a payload without consulting the store.
func (m *Manager) Parse(payload string) (qrtoken.QRToken, error) {
	var p qrtoken.Payload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("%w: malformed payload", qrtoken.ErrTokenInvalid)
	}

	if p.Type != qrtoken.PayloadType {
		return qrtoken.QRToken{}, fmt.Errorf("%w: unexpected payload type %q", qrtoken.ErrTokenInvalid, p.Type)
	}
	if p.InstitutionID == "" || p.Location == "" || p.Nonce == "" {
		return qrtoken.QRToken{}, fmt.Errorf("%w: missing fields", qrtoken.ErrTokenInvalid)
	}
	if raw, err := hex.DecodeString(p.Nonce); err != nil || len(raw) != nonceBytes {
		return qrtoken.QRToken{}, fmt.Errorf("%w: malformed nonce", qrtoken.ErrTokenInvalid)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
	if err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("%w: malformed createdAt", qrtoken.ErrTokenInvalid)
	}
	validUntil, err := time.Parse(time.RFC3339Nano, p.ValidUntil)
	if err != nil {
		return qrtoken.QRToken{}, fmt.Errorf("%w: malformed validUntil", qrtoken.ErrTokenInvalid)
	}
	if validUntil.Before(createdAt) {
		return qrtoken.QRToken{}, fmt.Errorf("%w: validUntil precedes createdAt", qrtoken.ErrTokenInvalid)
	}

	return qrtoken.QRToken{
		Nonce:         p.Nonce,
		InstitutionID: p.InstitutionID,
		ZoneLabel:     p.Location,
		IssuedAt:      createdAt.UTC(),
		ValidUntil:    validUntil.UTC(),
	}, nil
}

// Validate accepts a payload any number of times between its issue and expiry.
// It never mutates the store.
func (m *Manager) Validate(ctx context.Context, payload string, now time.Time) (qrtoken.QRToken, error) {
	token, err := m.Parse(payload)
	if err != nil {
		return qrtoken.QRToken{}, err
	}

	if token.ExpiredAt(now) {
		return qrtoken.QRToken{}, qrtoken.ErrTokenExpired
	}
	if now.Before(token.IssuedAt) {
		return qrtoken.QRToken{}, fmt.Errorf("%w: token not yet valid", qrtoken.ErrTokenInvalid)
	}

	stored, err := m.store.Get(ctx, token.Nonce)
	if err != nil {
		if errors.Is(err, qrtoken.ErrTokenNotFound) {
			return qrtoken.QRToken{}, fmt.Errorf("%w: unknown nonce", qrtoken.ErrTokenInvalid)
		}
		return qrtoken.QRToken{}, fmt.Errorf("failed to load qr token: %w", err)
	}

	if stored.InstitutionID != token.InstitutionID ||
		stored.ZoneLabel != token.ZoneLabel ||
		!stored.IssuedAt.Equal(token.IssuedAt) ||
		!stored.ValidUntil.Equal(token.ValidUntil) {
		return qrtoken.QRToken{}, fmt.Errorf("%w: payload does not match issued token", qrtoken.ErrTokenInvalid)
	}

	return stored, nil
}

func ceilMillisecond(t time.Time) time.Time {
	if r := t.Truncate(time.Millisecond); !r.Equal(t) {
		return r.Add(time.Millisecond)
	}
	return t
}

func (m *Manager) newNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := io.ReadFull(m.rand, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
