package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "jwt-test-secret-0123456789"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return ts
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("fifteen-chars!!", time.Hour)
	assert.Error(t, err)

	ts, err := NewTokenService("sixteen-chars!!!", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTTL, ts.TTL())

	ts, err = NewTokenService("sixteen-chars!!!", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, ts.TTL())
}

func TestGenerateValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("cq1v9ar0000000000000")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."), "header.payload.signature")

	userID, err := ts.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "cq1v9ar0000000000000", userID)

	other, err := ts.Generate("someone-else")
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

// signClaims builds tokens the service itself would never issue.
func signClaims(t *testing.T, method jwt.SigningMethod, key any, c jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestValidateRejects(t *testing.T) {
	ts := newTestTokenService(t)
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	expired, err := ts.GenerateWithDuration("u1", -time.Second)
	require.NoError(t, err)
	good, err := ts.Generate("u1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"expired", expired},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"other secret", signClaims(t, jwt.SigningMethodHS256, []byte("a-completely-different-secret"),
			jwt.RegisteredClaims{Subject: "u1", Issuer: issuer, ExpiresAt: future})},
		{"other issuer", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.RegisteredClaims{Subject: "u1", Issuer: "someone-else", ExpiresAt: future})},
		{"no expiry", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.RegisteredClaims{Subject: "u1", Issuer: issuer})},
		{"no subject", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret),
			jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: future})},
		{"alg none", signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType,
			jwt.RegisteredClaims{Subject: "u1", Issuer: issuer, ExpiresAt: future})},
		{"HS512", signClaims(t, jwt.SigningMethodHS512, []byte(testSecret),
			jwt.RegisteredClaims{Subject: "u1", Issuer: issuer, ExpiresAt: future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := ts.Validate(tt.token)
			assert.Error(t, err)
			assert.Empty(t, userID)
		})
	}
}

func TestValidateExpiredMessage(t *testing.T) {
	ts := newTestTokenService(t)
	expired, err := ts.GenerateWithDuration("u1", -time.Minute)
	require.NoError(t, err)

	_, err = ts.Validate(expired)
	assert.EqualError(t, err, "auth: token expired")
}
