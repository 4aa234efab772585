// Package tokenx inspects access and refresh tokens locally, without
// verifying signatures. The client never validates tokens cryptographically
// (the server does); it only reads the expiry claim to avoid sending
// credentials it already knows are stale.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiryClaim is returned when the token parses as a JWT but carries
// no exp claim.
var ErrNoExpiryClaim = errors.New("token has no expiry claim")

var parser = jwt.NewParser()

// ExpiresAt returns the exp claim of the token. The signature is NOT
// verified. Returns an error when the string is not a JWT or the claim
// is absent.
func ExpiresAt(tokenString string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiryClaim
	}
	return exp.Time, nil
}

// Expired reports whether the token carries an expiry claim in the past
// relative to now. Opaque (non-JWT) tokens and tokens without an exp claim
// report false: locally unknowable expiry is left for the server to judge.
func Expired(tokenString string, now time.Time) bool {
	exp, err := ExpiresAt(tokenString)
	if err != nil {
		return false
	}
	return exp.Before(now)
}
