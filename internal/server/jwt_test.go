package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/config"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestTokenService(_ *testing.T, expirationHours int) *TokenService {
	cfg := &config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
		Issuer:          config.DefaultTokenIssuer,
	}
	return NewTokenService(cfg)
}

func TestTokenService_GenerateToken(t *testing.T) {
	service := setupTestTokenService(t, 24)

	token, err := service.GenerateToken("session-1")
	require.NoError(t, err)

	// Test token format is valid JWT (three parts separated by dots)
	parts := strings.Split(token, ".")
	assert.Len(t, parts, 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "session-1", claims.Subject)
	assert.Equal(t, config.DefaultTokenIssuer, claims.Issuer)
}

func TestTokenService_GenerateToken_EmptySession(t *testing.T) {
	service := setupTestTokenService(t, 24)
	_, err := service.GenerateToken("")
	assert.Error(t, err)
}

func TestTokenService_ValidateToken_InvalidSignature(t *testing.T) {
	service := setupTestTokenService(t, 24)
	other := NewTokenService(&config.JWTConfig{Secret: "another-secret-key-that-is-long-enough", ExpirationHours: 24})

	token, err := other.GenerateToken("session-1")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestTokenService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestTokenService(t, 24)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.ValidateToken(token)
		assert.Error(t, err, token)
	}
}

func TestTokenService_TokenExpiration(t *testing.T) {
	service := setupTestTokenService(t, 1)
	issued := time.Now()
	service.now = func() time.Time { return issued }

	token, err := service.GenerateToken("session-1")
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = service.ValidateToken(token)
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestTokenService_RejectsForeignIssuer(t *testing.T) {
	service := setupTestTokenService(t, 24)
	foreign := NewTokenService(&config.JWTConfig{Secret: testSecret, ExpirationHours: 24, Issuer: "someone-else"})

	token, err := foreign.GenerateToken("session-1")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsOtherAlgorithms(t *testing.T) {
	service := setupTestTokenService(t, 24)
	claims := &Claims{
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "session-1",
			Issuer:    config.DefaultTokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsMismatchedSubject(t *testing.T) {
	service := setupTestTokenService(t, 24)
	claims := &Claims{
		SessionID: "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "session-2",
			Issuer:    config.DefaultTokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorContains(t, err, "does not name a session")
}

func TestTokenService_AsTokenValidator(t *testing.T) {
	service := setupTestTokenService(t, 24)
	token, err := service.GenerateToken("session-1")
	require.NoError(t, err)

	got, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.GetSessionID())

	_, err = service.AsTokenValidator().ValidateToken("garbage")
	assert.Error(t, err)
}
