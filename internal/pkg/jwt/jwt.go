package jwt

import (
	"time"

	"github.com/cmlabs-hris/timesheet-engine/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(subject auth.Subject) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(subject auth.Subject) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":        subject.UserID,
		"worker_id":      j.returnValueOrNil(subject.WorkerID),
		"institution_id": j.returnValueOrNil(subject.InstitutionID),
		"role":           string(subject.Role),
		"type":           "access",
		"exp":            expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) returnValueOrNil(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// SubjectFromClaims rebuilds the caller identity from decoded token claims.
func SubjectFromClaims(claims map[string]interface{}) auth.Subject {
	var s auth.Subject
	s.UserID, _ = claims["user_id"].(string)
	s.WorkerID, _ = claims["worker_id"].(string)
	s.InstitutionID, _ = claims["institution_id"].(string)
	role, _ := claims["role"].(string)
	s.Role = auth.Role(role)
	return s
}
