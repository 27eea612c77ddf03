package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campus-ops/shift-attendance-api/internal/models"
	appErrors "github.com/campus-ops/shift-attendance-api/pkg/errors"
)

// TokenService validates the bearer tokens presented by scanner stations and
// admin tooling. Issuance and session management live with the admin
// collaborator; this service only needs to verify and read claims.
type TokenService struct {
	secret     string
	expiration time.Duration
}

// NewTokenService constructs the service.
func NewTokenService(secret string, expiration time.Duration) *TokenService {
	return &TokenService{secret: secret, expiration: expiration}
}

// Issue mints a token for a station or admin identity. Used by provisioning
// tooling and tests.
func (s *TokenService) Issue(stationID string, role models.StationRole) (string, error) {
	now := time.Now()
	claims := models.StationClaims{
		StationID: stationID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   stationID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign token")
	}
	return signed, nil
}

// Validate parses and verifies a bearer token.
func (s *TokenService) Validate(tokenString string) (*models.StationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.StationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.StationClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
