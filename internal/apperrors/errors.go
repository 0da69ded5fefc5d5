package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Wrong password or unknown login
	// Single error for both cases so callers can't enumerate accounts
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Account exists and password matched but email is not confirmed yet
	ErrAccountNotVerified = errors.New("account is not verified")

	// Bad signature, expired, malformed or issued for different purpose
	// Collapsed into single error so the failed check is not leaked to the caller
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenRevoked = errors.New("token is revoked")

	ErrCacheMiss = errors.New("cache key not found")

	ErrContactNotFound = errors.New("contact not found")
)
