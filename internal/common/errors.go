package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Transport-level errors.
	ErrorUnavailable = errors.New("server unavailable")

	// Auth errors (credentials rejected by the server).
	ErrorUnauthorized = errors.New("unauthorized")

	// Response decoding errors (identity fields missing or unreadable).
	ErrorMalformedResponse = errors.New("malformed server response")

	// Token lifecycle errors, detected locally before any network call.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrNoRefreshToken      = errors.New("no refresh token")
)
