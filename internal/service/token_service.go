package service

import (
	"fmt"
	"time"

	"marketplace-wallet/config"
	"marketplace-wallet/internal/core/ports"
	"marketplace-wallet/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 signed tokens.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewJWTTokenService creates a token service from configuration.
func NewJWTTokenService(cfg config.JWTConfig) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry,
		issuer: cfg.Issuer,
	}
}

// Generate creates a signed token for the given user.
func (s *JWTTokenService) Generate(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"iss": s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies a token, returning its claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, apperror.ErrInvalidToken()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperror.ErrInvalidToken()
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, apperror.ErrInvalidToken()
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	return &ports.TokenClaims{UserID: userID}, nil
}
