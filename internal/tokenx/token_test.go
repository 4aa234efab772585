package tokenx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func mintTokenNoExp(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestExpiresAt_ReadsClaim(t *testing.T) {
	t.Parallel()

	want := time.Now().Add(time.Hour).Truncate(time.Second)
	got, err := ExpiresAt(mintToken(t, want))
	require.NoError(t, err)
	require.True(t, got.Equal(want), "got %v want %v", got, want)
}

func TestExpiresAt_NoClaim(t *testing.T) {
	t.Parallel()

	_, err := ExpiresAt(mintTokenNoExp(t))
	require.ErrorIs(t, err, ErrNoExpiryClaim)
}

func TestExpiresAt_NotAJWT(t *testing.T) {
	t.Parallel()

	_, err := ExpiresAt("not.a.jwt")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "future expiry", token: mintToken(t, now.Add(time.Hour)), want: false},
		{name: "past expiry", token: mintToken(t, now.Add(-time.Hour)), want: true},
		{name: "no exp claim", token: mintTokenNoExp(t), want: false},
		{name: "opaque token", token: "valid-unexpired", want: false},
		{name: "empty token", token: "", want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Expired(tc.token, now))
		})
	}
}
