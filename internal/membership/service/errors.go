package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to a caller wraps exactly one of
// these, so the transport layer maps by kind instead of by message.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrTransport    = errors.New("transport error")
	ErrConfig       = errors.New("configuration error")
)

var kinds = []error{
	ErrValidation,
	ErrUnauthorized,
	ErrNotFound,
	ErrConflict,
	ErrExpired,
	ErrAlreadyUsed,
	ErrInvalidState,
	ErrTransport,
	ErrConfig,
}

// kindError is a specific, user-facing error tagged with its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Kind returns the taxonomy kind err belongs to, or nil for unclassified
// (internal) errors.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password")
	ErrAccountInactive    = newError(ErrUnauthorized, "account is not active")
	ErrEmailTaken         = newError(ErrConflict, "email is already registered")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrUnknownRole        = newError(ErrValidation, "unknown role")
	ErrInvalidPhone       = newError(ErrValidation, "invalid phone number")
	ErrInvalidTransition  = newError(ErrInvalidState, "status transition not allowed")

	ErrTokenMalformed = newError(ErrUnauthorized, "malformed token")
	ErrTokenInvalid   = newError(ErrUnauthorized, "invalid token")
	ErrTokenExpired   = newError(ErrUnauthorized, "token expired")
	ErrTokenConfig    = newError(ErrConfig, "token signing is not configured")

	ErrInvalidPurpose    = newError(ErrValidation, "invalid otp purpose")
	ErrOTPNotFound       = newError(ErrNotFound, "otp not found")
	ErrOTPExpired        = newError(ErrExpired, "otp expired")
	ErrOTPAlreadyUsed    = newError(ErrAlreadyUsed, "otp already used")
	ErrOTPNotVerified    = newError(ErrInvalidState, "otp has not been verified")
	ErrResetNotFound     = newError(ErrNotFound, "reset key not found")
	ErrResetExpired      = newError(ErrExpired, "reset key expired")
	ErrResetAlreadyUsed  = newError(ErrAlreadyUsed, "reset key already used")
	ErrMailDelivery      = newError(ErrTransport, "failed to deliver mail")
	ErrInviteNotFound    = newError(ErrNotFound, "invitation not found")
	ErrInviteExpired     = newError(ErrExpired, "invitation expired")
	ErrInviteAlreadyUsed = newError(ErrAlreadyUsed, "invitation already accepted")
	ErrInviteNotActive   = newError(ErrInvalidState, "invitation is no longer active")
	ErrInviteNotVerified = newError(ErrInvalidState, "invitation has not been verified")
	ErrInviteEmail       = newError(ErrValidation, "email does not match the invitation")

	ErrBootstrapAlready      = newError(ErrConflict, "system already bootstrapped")
	ErrBootstrapUnauthorized = newError(ErrUnauthorized, "unauthorized bootstrap attempt")
)
