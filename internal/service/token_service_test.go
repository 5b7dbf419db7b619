package service

import (
	"testing"
	"time"

	"marketplace-wallet/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenService() *JWTTokenService {
	return NewJWTTokenService(config.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "marketplace-wallet",
	})
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTokenService()
	userID := uuid.New()

	token, expiresAt, err := svc.Generate(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	token, _, err := newTokenService().Generate(uuid.New())
	require.NoError(t, err)

	other := NewJWTTokenService(config.JWTConfig{
		Secret: "other-secret",
		Expiry: time.Hour,
		Issuer: "marketplace-wallet",
	})
	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Expired(t *testing.T) {
	svc := NewJWTTokenService(config.JWTConfig{
		Secret: "test-secret",
		Expiry: -time.Minute,
		Issuer: "marketplace-wallet",
	})
	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_WrongIssuer(t *testing.T) {
	other := NewJWTTokenService(config.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "someone-else",
	})
	token, _, err := other.Generate(uuid.New())
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_NoneAlgorithmRejected(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
		"iss": "marketplace-wallet",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTokenService().Validate(token)
	assert.Error(t, err)
}

func TestTokenService_Validate_Garbage(t *testing.T) {
	_, err := newTokenService().Validate("not-a-token")
	assert.Error(t, err)
}
