package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, validity time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
	})
	s, err := tok.SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return s
}

func TestInspect_ReadsClaimsWithoutKey(t *testing.T) {
	tok := signedToken(t, "admin", time.Hour)

	info, err := Inspect(tok)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Subject)
	assert.False(t, info.Expired(time.Now()))
	assert.WithinDuration(t, time.Now().Add(time.Hour), info.ExpiresAt, 5*time.Second)
}

func TestInspect_ExpiredTokenStillDecodes(t *testing.T) {
	tok := signedToken(t, "admin", -time.Minute)

	info, err := Inspect(tok)
	require.NoError(t, err)
	assert.True(t, info.Expired(time.Now()))
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := Inspect("not-a-jwt")
	assert.ErrorIs(t, err, ErrOpaqueToken)
}

func TestTokenInfo_NoExpiryNeverExpires(t *testing.T) {
	assert.False(t, TokenInfo{Subject: "x"}.Expired(time.Now()))
}
