package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("user is inactive")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")

	ErrMissingHeader   = errors.New("missing authorization header")
	ErrMalformedHeader = errors.New("invalid authorization header format")

	// ErrInvalidToken is the umbrella for every "untrusted token" outcome.
	// Callers must not branch on anything finer than this.
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrInvalidSignature  = fmt.Errorf("signature invalid: %w", ErrInvalidToken)
	ErrTokenExpired      = fmt.Errorf("token expired: %w", ErrInvalidToken)
	ErrTokenTypeMismatch = errors.New("token type mismatch")
	ErrMalformedSubject  = errors.New("token subject is malformed")

	// ErrUnknownOrInactive covers both a missing and a disabled identity.
	ErrUnknownOrInactive = errors.New("user not found or inactive")

	ErrForbidden    = errors.New("insufficient permissions")
	ErrInvalidInput = errors.New("invalid input")

	ErrNotFound         = errors.New("not found")
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrLogNotFound      = fmt.Errorf("operation log %w", ErrNotFound)
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)

	ErrConflict    = errors.New("resource conflict")
	ErrUserExists  = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)
)
