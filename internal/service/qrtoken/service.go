package qrtoken

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/institution"
	"github.com/cmlabs-hris/timesheet-engine/internal/domain/qrtoken"
	"go.uber.org/zap"
)

type QRTokenServiceImpl struct {
	manager      *Manager
	store        qrtoken.TokenStore
	institutions institution.InstitutionRepository
	logger       *zap.Logger
}

func NewQRTokenService(manager *Manager, store qrtoken.TokenStore, institutions institution.InstitutionRepository, logger *zap.Logger) qrtoken.QRTokenService {
	return &QRTokenServiceImpl{
		manager:      manager,
		store:        store,
		institutions: institutions,
		logger:       logger,
	}
}

// Issue implements qrtoken.QRTokenService.
func (s *QRTokenServiceImpl) Issue(ctx context.Context, institutionID, zoneLabel string, validForHours int) (qrtoken.QRToken, string, error) {
	if institutionID == "" || zoneLabel == "" {
		return qrtoken.QRToken{}, "", qrtoken.ErrInvalidScope
	}

	inst, err := s.institutions.GetByID(ctx, institutionID)
	if err != nil {
		return qrtoken.QRToken{}, "", err
	}
	if _, ok := inst.Zone(zoneLabel); !ok {
		return qrtoken.QRToken{}, "", fmt.Errorf("%w: %q", institution.ErrUnknownZone, zoneLabel)
	}

	token, err := s.manager.Issue(ctx, institutionID, zoneLabel, validForHours)
	if err != nil {
		return qrtoken.QRToken{}, "", err
	}

	payload, err := s.manager.Serialize(token)
	if err != nil {
		return qrtoken.QRToken{}, "", err
	}

	s.logger.Info("qr token issued",
		zap.String("institution_id", institutionID),
		zap.String("zone", zoneLabel),
		zap.String("nonce", token.Nonce),
		zap.Time("valid_until", token.ValidUntil),
	)
	return token, payload, nil
}

// Validate implements qrtoken.QRTokenService.
func (s *QRTokenServiceImpl) Validate(ctx context.Context, payload string, now time.Time) (qrtoken.QRToken, error) {
	token, err := s.manager.Validate(ctx, payload, now)
	if err != nil {
		s.logger.Debug("qr token rejected", zap.Error(err))
		return qrtoken.QRToken{}, err
	}
	return token, nil
}

// Render implements qrtoken.QRTokenService.
func (s *QRTokenServiceImpl) Render(ctx context.Context, institutionID, nonce string, size int) ([]byte, error) {
	token, err := s.store.Get(ctx, nonce)
	if err != nil {
		return nil, err
	}
	if institutionID != "" && token.InstitutionID != institutionID {
		return nil, auth.ErrForbiddenInstitution
	}

	payload, err := s.manager.Serialize(token)
	if err != nil {
		return nil, err
	}
	return RenderPNG(payload, size)
}
