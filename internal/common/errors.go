// Package common defines shared constants and sentinel errors used across
// the session layers of gophsession. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Lookup / input errors.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// Token codec errors.
	ErrMalformedToken = errors.New("malformed token")

	// Registry and login errors.
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Token lifecycle errors.
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrRefreshFailed  = errors.New("token refresh failed")

	// Transport-level failure, wrapped around the underlying cause.
	ErrNetwork = errors.New("network error")
)
